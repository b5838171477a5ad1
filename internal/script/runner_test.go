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
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubeflow/yarn-launcher/api/v1alpha1"
	"github.com/kubeflow/yarn-launcher/internal/deferred"
	"github.com/kubeflow/yarn-launcher/internal/script"
	"github.com/kubeflow/yarn-launcher/pkg/common"
)

// countingExecutor delegates to an SQLExecutor and counts calls.
type countingExecutor struct {
	delegate script.Executor
	calls    atomic.Int32
}

func (e *countingExecutor) Execute(ctx context.Context, text string) ([]string, error) {
	e.calls.Add(1)
	return e.delegate.Execute(ctx, text)
}

type countingRecorder struct {
	executions atomic.Int32
}

func (r *countingRecorder) ObserveExecution(string, time.Duration, error) { r.executions.Add(1) }
func (r *countingRecorder) ObserveCacheHit(string)                        {}
func (r *countingRecorder) ObserveHook(string, string)                    {}

var _ = Describe("Runner", func() {
	var (
		ctx      context.Context
		db       *sql.DB
		executor *countingExecutor
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = script.OpenDB(ctx, common.DriverSQLite, filepath.Join(GinkgoT().TempDir(), "warehouse.db"))
		Expect(err).NotTo(HaveOccurred())
		executor = &countingExecutor{delegate: script.NewSQLExecutor(db, common.DriverSQLite)}
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	Context("When scripts are run", func() {
		It("Should execute them once and return their rows", func() {
			runner := script.NewRunner("events", executor, []script.Script{
				{Location: "testdata/events.sql", Arguments: map[string]string{"table": "events"}},
				{Inline: "SELECT id, name FROM events ORDER BY id;"},
			})
			Expect(runner.Name()).To(Equal("events"))

			rows, err := runner.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal([]string{"1\tstart; of day", "2\tNULL"}))

			again, err := runner.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(rows))
			Expect(executor.calls.Load()).To(Equal(int32(2)))
		})

		It("Should fail and not retry when a statement fails", func() {
			runner := script.NewRunner("broken", executor, []script.Script{{Inline: "SELECT * FROM missing_table;"}})

			_, err := runner.Results(ctx)
			Expect(err).To(MatchError(ContainSubstring("missing_table")))

			_, err = runner.Results(ctx)
			Expect(errors.Is(err, deferred.ErrPreviouslyFailed)).To(BeTrue())
			Expect(executor.calls.Load()).To(Equal(int32(1)))
		})
	})

	Context("When built from a manifest", func() {
		var manifest *v1alpha1.ScriptRunner

		BeforeEach(func() {
			manifest = &v1alpha1.ScriptRunner{
				ObjectMeta: metav1.ObjectMeta{Name: "report"},
				Spec: v1alpha1.ScriptRunnerSpec{
					PreActions:  []string{"prepare"},
					PostActions: []string{"audit"},
					Scripts: []v1alpha1.ScriptSpec{
						{Inline: "INSERT INTO log VALUES ('report'); SELECT entry FROM log ORDER BY rowid;"},
					},
					Hooks: []v1alpha1.HookSpec{
						{
							Name:    "prepare",
							Scripts: []v1alpha1.ScriptSpec{{Inline: "CREATE TABLE log (entry TEXT); INSERT INTO log VALUES ('prepare');"}},
						},
						{
							Name:    "audit",
							Scripts: []v1alpha1.ScriptSpec{{Inline: "INSERT INTO log VALUES ('audit');"}},
						},
					},
				},
			}
		})

		It("Should run hook runners around the scripts", func() {
			recorder := &countingRecorder{}
			runner, err := script.NewRunnerFromManifest(manifest, executor, recorder)
			Expect(err).NotTo(HaveOccurred())

			rows, err := runner.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal([]string{"prepare", "report"}))

			var entries []string
			result, err := db.QueryContext(ctx, "SELECT entry FROM log ORDER BY rowid")
			Expect(err).NotTo(HaveOccurred())
			defer result.Close()
			for result.Next() {
				var entry string
				Expect(result.Scan(&entry)).To(Succeed())
				entries = append(entries, entry)
			}
			Expect(entries).To(Equal([]string{"prepare", "report", "audit"}))
			Expect(recorder.executions.Load()).To(Equal(int32(3)))
		})

		It("Should run at startup when configured", func() {
			manifest.Spec.RunAtStartup = ptr.To(true)
			runner, err := script.NewRunnerFromManifest(manifest, executor, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(runner.Init(ctx)).To(Succeed())
			calls := executor.calls.Load()
			Expect(calls).To(BeNumerically(">", 0))

			_, err = runner.Results(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(executor.calls.Load()).To(Equal(calls))
		})

		It("Should fail when a hook is not defined", func() {
			manifest.Spec.PreActions = []string{"undefined"}
			runner, err := script.NewRunnerFromManifest(manifest, executor, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = runner.Results(ctx)
			Expect(errors.Is(err, deferred.ErrHookNotFound)).To(BeTrue())
			Expect(executor.calls.Load()).To(BeZero())
		})

		It("Should reject invalid manifests", func() {
			manifest.Spec.Hooks = append(manifest.Spec.Hooks,
				v1alpha1.HookSpec{Name: "prepare", Command: []string{"true"}},
				v1alpha1.HookSpec{Name: "both", Command: []string{"true"}, Scripts: manifest.Spec.Scripts},
				v1alpha1.HookSpec{Name: "none"},
			)
			manifest.Spec.Scripts = append(manifest.Spec.Scripts, v1alpha1.ScriptSpec{})

			_, err := script.NewRunnerFromManifest(manifest, executor, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Duplicate value"))
			Expect(err.Error()).To(ContainSubstring("only one of command and scripts"))
			Expect(err.Error()).To(ContainSubstring("one of command and scripts is required"))
			Expect(err.Error()).To(ContainSubstring("spec.scripts[1]"))
		})
	})
})

var _ = Describe("OpenDB", func() {
	It("Should reject unsupported drivers", func() {
		_, err := script.OpenDB(context.Background(), "postgres", "dsn")
		Expect(err).To(MatchError(ContainSubstring("unsupported driver")))
	})

	It("Should require a dsn", func() {
		_, err := script.OpenDB(context.Background(), common.DriverSQLite, "")
		Expect(err).To(MatchError("dsn is required"))
	})
})
