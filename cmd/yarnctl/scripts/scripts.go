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

package scripts

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	yarnlauncher "github.com/kubeflow/yarn-launcher"
	"github.com/kubeflow/yarn-launcher/api/v1alpha1"
	"github.com/kubeflow/yarn-launcher/internal/metrics"
	"github.com/kubeflow/yarn-launcher/internal/script"
	"github.com/kubeflow/yarn-launcher/pkg/common"
	"github.com/kubeflow/yarn-launcher/pkg/util"
)

var (
	logger = log.Log.WithName("scripts")
)

var (
	File           string
	Schedule       string
	PushgatewayURL string
	PushJobName    string
	MetricsPrefix  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Work with ScriptRunner manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newRunCommand())
	return cmd
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scripts of a ScriptRunner with its pre and post actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if File == "" {
				return fmt.Errorf("must specify a YAML file of a ScriptRunner")
			}

			manifest, err := util.LoadScriptRunnerFromFile(File)
			if err != nil {
				return fmt.Errorf("failed to read ScriptRunner from file %s: %v", File, err)
			}

			if err := script.ValidateManifest(manifest); err != nil {
				return fmt.Errorf("invalid ScriptRunner %s: %w", manifest.Name, err)
			}

			job := newScriptRun(manifest, viper.GetString("driver"), viper.GetString("dsn"))
			out := cmd.OutOrStdout()

			if Schedule == "" {
				return job.runAndPush(cmd.Context(), out)
			}

			schedule, err := cron.ParseStandard(Schedule)
			if err != nil {
				return fmt.Errorf("failed to parse cron schedule %s: %v", Schedule, err)
			}
			return runOnSchedule(ctrl.SetupSignalHandler(), out, schedule, job)
		},
	}

	cmd.Flags().StringVarP(&File, "file", "f", "", "the YAML file of the ScriptRunner")
	cmd.Flags().String("driver", common.DriverSQLite, "the database driver, one of mysql or sqlite")
	cmd.Flags().String("dsn", "", "the data source name of the database")
	_ = viper.BindPFlag("driver", cmd.Flags().Lookup("driver"))
	_ = viper.BindPFlag("dsn", cmd.Flags().Lookup("dsn"))
	cmd.Flags().StringVar(&Schedule, "schedule", "", "a cron schedule on which the runner is repeated, each time from a fresh state")
	cmd.Flags().StringVar(&PushgatewayURL, "pushgateway-url", "", "the Prometheus Pushgateway to push metrics to after each run")
	cmd.Flags().StringVar(&PushJobName, "push-job-name", "yarnctl_scripts", "the job name of pushed metrics")
	cmd.Flags().StringVar(&MetricsPrefix, "metrics-prefix", "", "Prefix for the metrics.")

	return cmd
}

// scriptRun runs a ScriptRunner manifest. Metrics accumulate over all runs of one scriptRun.
type scriptRun struct {
	manifest *v1alpha1.ScriptRunner
	driver   string
	dsn      string

	registry      *prometheus.Registry
	actionMetrics *metrics.DeferredActionMetrics
}

func newScriptRun(manifest *v1alpha1.ScriptRunner, driver, dsn string) *scriptRun {
	registry := prometheus.NewRegistry()
	actionMetrics := metrics.NewDeferredActionMetrics(MetricsPrefix, nil)
	actionMetrics.RegisterWith(registry)
	return &scriptRun{
		manifest:      manifest,
		driver:        driver,
		dsn:           dsn,
		registry:      registry,
		actionMetrics: actionMetrics,
	}
}

// runOnSchedule runs job on every tick of schedule until ctx is done.
// Each tick builds a new runner so that every run executes its hooks and scripts again.
func runOnSchedule(ctx context.Context, out io.Writer, schedule cron.Schedule, job *scriptRun) error {
	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		if err := job.runAndPush(ctx, out); err != nil {
			logger.Error(err, "Scheduled run failed", "name", job.manifest.Name)
		}
	}))

	logger.Info("Starting scheduled runs", "name", job.manifest.Name, "version", yarnlauncher.GetVersion().Version)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Stopped scheduled runs", "name", job.manifest.Name)
	return nil
}

func (j *scriptRun) runAndPush(ctx context.Context, out io.Writer) error {
	runErr := j.run(ctx, out)

	if PushgatewayURL != "" {
		if err := metrics.Push(ctx, PushgatewayURL, PushJobName, j.registry); err != nil {
			logger.Error(err, "Failed to push metrics", "name", j.manifest.Name)
		}
	}
	return runErr
}

func (j *scriptRun) run(ctx context.Context, out io.Writer) error {
	db, err := script.OpenDB(ctx, j.driver, j.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	runner, err := script.NewRunnerFromManifest(j.manifest, script.NewSQLExecutor(db, j.driver), j.actionMetrics)
	if err != nil {
		return fmt.Errorf("failed to build runner %s: %w", j.manifest.Name, err)
	}

	if err := runner.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize runner %s: %w", j.manifest.Name, err)
	}

	results, err := runner.Results(ctx)
	if err != nil {
		return fmt.Errorf("runner %s failed: %w", j.manifest.Name, err)
	}

	for _, line := range results {
		fmt.Fprintln(out, line)
	}
	return nil
}
