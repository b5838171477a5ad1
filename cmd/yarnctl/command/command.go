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

package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeflow/yarn-launcher/internal/launch"
	"github.com/kubeflow/yarn-launcher/internal/yarn"
	"github.com/kubeflow/yarn-launcher/pkg/common"
	"github.com/kubeflow/yarn-launcher/pkg/util"
)

var (
	File        string
	IncludeJava bool
	OnePerLine  bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "command",
		Short: "Print the application master launch command of a YarnApplication",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if File == "" {
				return fmt.Errorf("must specify a YAML file of a YarnApplication")
			}

			app, err := util.LoadYarnApplicationFromFile(File)
			if err != nil {
				return fmt.Errorf("failed to read YarnApplication from file %s: %v", File, err)
			}

			if err := yarn.ValidateYarnApplication(app); err != nil {
				return fmt.Errorf("invalid YarnApplication %s: %w", app.Name, err)
			}

			command, err := launch.BuildMasterCommand(yarn.LaunchSpec(app))
			if err != nil {
				return fmt.Errorf("failed to build launch command of %s: %w", app.Name, err)
			}
			if IncludeJava {
				command = append(launch.Command{common.JavaExecutable}, command...)
			}

			out := cmd.OutOrStdout()
			if OnePerLine {
				for _, token := range command {
					fmt.Fprintln(out, token)
				}
				return nil
			}
			fmt.Fprintln(out, command.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&File, "file", "f", "", "the YAML file of the YarnApplication")
	cmd.Flags().BoolVar(&IncludeJava, "java", false, "prefix the command with the java executable")
	cmd.Flags().BoolVar(&OnePerLine, "tokens", false, "print one command token per line")

	return cmd
}
