/*
Copyright 2025 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package script

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/kubeflow/yarn-launcher/pkg/common"
)

// Executor executes the statements of a script and returns its output lines.
type Executor interface {
	Execute(ctx context.Context, text string) ([]string, error)
}

// queryPrefixes are the statement keywords that return rows.
var queryPrefixes = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "PRAGMA", "VALUES"}

// SQLExecutor executes scripts over a database/sql connection.
type SQLExecutor struct {
	db *sql.DB
	// backslashEscapes is set for drivers whose string literals use backslash escapes.
	backslashEscapes bool
}

var _ Executor = &SQLExecutor{}

// NewSQLExecutor returns an executor over db, which was opened with driver.
func NewSQLExecutor(db *sql.DB, driver string) *SQLExecutor {
	return &SQLExecutor{db: db, backslashEscapes: driver == common.DriverMySQL}
}

// OpenDB opens and pings a connection with one of the supported drivers.
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case common.DriverMySQL, common.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver %q, expected %s or %s", driver, common.DriverMySQL, common.DriverSQLite)
	}
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %v", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %v", driver, err)
	}
	return db, nil
}

// Execute runs every statement of text in order. Statements returning rows add one
// tab-separated line per row to the output.
func (e *SQLExecutor) Execute(ctx context.Context, text string) ([]string, error) {
	var output []string
	for _, stmt := range SplitStatements(text, e.backslashEscapes) {
		if !isQuery(stmt) {
			if _, err := e.db.ExecContext(ctx, stmt); err != nil {
				return nil, fmt.Errorf("failed to execute statement %q: %v", stmt, err)
			}
			continue
		}

		lines, err := e.query(ctx, stmt)
		if err != nil {
			return nil, err
		}
		output = append(output, lines...)
	}
	return output, nil
}

func (e *SQLExecutor) query(ctx context.Context, stmt string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query %q: %v", stmt, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var lines []string
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to read result of %q: %v", stmt, err)
		}
		fields := make([]string, len(values))
		for i, value := range values {
			fields[i] = formatValue(value)
		}
		lines = append(lines, strings.Join(fields, "\t"))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result of %q: %v", stmt, err)
	}
	return lines, nil
}

func isQuery(stmt string) bool {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return false
	}
	keyword := strings.ToUpper(fields[0])
	for _, prefix := range queryPrefixes {
		if keyword == prefix {
			return true
		}
	}
	return false
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
