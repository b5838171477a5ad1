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

package script_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/yarn-launcher/internal/script"
)

var _ = Describe("SplitStatements", func() {
	It("Should split on semicolons and drop empty statements", func() {
		Expect(script.SplitStatements("SELECT 1; ;SELECT 2;\n", false)).To(Equal([]string{"SELECT 1", "SELECT 2"}))
	})

	It("Should keep a trailing statement without semicolon", func() {
		Expect(script.SplitStatements("SET a=1;\nSELECT 2", false)).To(Equal([]string{"SET a=1", "SELECT 2"}))
	})

	It("Should ignore semicolons in quotes and comments", func() {
		text := "-- header; comment\nINSERT INTO t VALUES ('a;b', \"c;d\");\nSELECT 'it''s;';"
		Expect(script.SplitStatements(text, false)).To(Equal([]string{
			"INSERT INTO t VALUES ('a;b', \"c;d\")",
			"SELECT 'it''s;'",
		}))
	})

	DescribeTable("Should keep every statement",
		func(text string, backslashEscapes bool, expected []string) {
			Expect(script.SplitStatements(text, backslashEscapes)).To(Equal(expected))
		},
		Entry("double dash directly after an operand",
			"SELECT 5--3; SELECT 2;", false, []string{"SELECT 5--3", "SELECT 2"}),
		Entry("double dash after whitespace ends the line",
			"SELECT 1 -- one; two\n; SELECT 2;", false, []string{"SELECT 1", "SELECT 2"}),
		Entry("backslash at the end of a literal without escapes",
			"SELECT 'C:\\'; SELECT 1;", false, []string{"SELECT 'C:\\'", "SELECT 1"}),
		Entry("backslash escaped quote with escapes",
			"SELECT 'it\\'s;'; SELECT 1;", true, []string{"SELECT 'it\\'s;'", "SELECT 1"}),
		Entry("semicolons in a block comment",
			"/* a; b */ SELECT 1; SELECT /* c; */ 2;", false, []string{"SELECT 1", "SELECT   2"}),
		Entry("unterminated block comment",
			"SELECT 1; /* trailing", false, []string{"SELECT 1"}),
	)
})

var _ = Describe("Script", func() {
	It("Should substitute known placeholders only", func() {
		s := script.Script{
			Inline:    "SELECT * FROM ${table} WHERE day = '${day}' AND x = '${unknown}'",
			Arguments: map[string]string{"table": "events", "day": "2025-01-01"},
		}
		text, err := s.Text()
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("SELECT * FROM events WHERE day = '2025-01-01' AND x = '${unknown}'"))
	})

	It("Should read scripts from a location", func() {
		s := script.Script{Location: "testdata/events.sql", Arguments: map[string]string{"table": "events"}}
		text, err := s.Text()
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("CREATE TABLE events"))
		Expect(s.String()).To(Equal("testdata/events.sql"))
	})

	It("Should require exactly one source", func() {
		_, err := script.Script{}.Text()
		Expect(err).To(HaveOccurred())

		_, err = script.Script{Location: "a.sql", Inline: "SELECT 1"}.Text()
		Expect(err).To(HaveOccurred())
	})

	It("Should fail on a missing file", func() {
		_, err := script.Script{Location: "testdata/missing.sql"}.Text()
		Expect(err).To(MatchError(ContainSubstring("failed to read script")))
	})
})
