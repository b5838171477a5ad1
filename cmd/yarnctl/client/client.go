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


package client

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/yarn-launcher/internal/metrics"
	"github.com/kubeflow/yarn-launcher/internal/yarn"
	"github.com/kubeflow/yarn-launcher/pkg/util"
)

var (
	logger = log.Log.WithName("client")
)

var (
	File           string
	MetricsPrefix  string
	PushgatewayURL string
	PushJobName    string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Print the YARN client configuration of a YarnApplication",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if File == "" {
				return fmt.Errorf("must specify a YAML file of a YarnApplication")
			}

			app, err := util.LoadYarnApplicationFromFile(File)
			if err != nil {
				return fmt.Errorf("failed to read YarnApplication from file %s: %v", File, err)
			}

			registry := prometheus.NewRegistry()
			launchMetrics := metrics.NewLaunchCommandMetrics(MetricsPrefix)
			launchMetrics.RegisterWith(registry)

			config, err := yarn.BuildClientConfig(app, launchMetrics)

			// Rejected applications are pushed too, under the unresolved strategy.
			if PushgatewayURL != "" {
				if pushErr := metrics.Push(cmd.Context(), PushgatewayURL, PushJobName, registry); pushErr != nil {
					logger.Error(pushErr, "Failed to push metrics", "name", app.Name)
				}
			}

			if err != nil {
				return fmt.Errorf("failed to build YARN client configuration of %s: %w", app.Name, err)
			}

			data, err := yaml.Marshal(config)
			if err != nil {
				return fmt.Errorf("failed to render YARN client configuration: %v", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&File, "file", "f", "", "the YAML file of the YarnApplication")
	cmd.Flags().StringVar(&MetricsPrefix, "metrics-prefix", "", "Prefix for the metrics.")
	cmd.Flags().StringVar(&PushgatewayURL, "pushgateway-url", "", "the Prometheus Pushgateway to push the launch strategy metric to")
	cmd.Flags().StringVar(&PushJobName, "push-job-name", "yarnctl_client", "the job name of pushed metrics")

	return cmd
}
