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


package version

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	yarnlauncher "github.com/kubeflow/yarn-launcher"
)

var (
	short  bool
	output string
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case "":
				yarnlauncher.PrintVersion(cmd.OutOrStdout(), short)
				return nil
			case "yaml":
				data, err := yaml.Marshal(yarnlauncher.GetVersion())
				if err != nil {
					return fmt.Errorf("failed to render version: %v", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			default:
				return fmt.Errorf("unsupported output format %q", output)
			}
		},
	}
	command.Flags().BoolVar(&short, "short", false, "Print just the version string.")
	command.Flags().StringVarP(&output, "output", "o", "", "Output format. One of: yaml.")
	return command
}
