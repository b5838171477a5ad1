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

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	logzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/kubeflow/yarn-launcher/cmd/yarnctl/client"
	"github.com/kubeflow/yarn-launcher/cmd/yarnctl/command"
	"github.com/kubeflow/yarn-launcher/cmd/yarnctl/scripts"
	"github.com/kubeflow/yarn-launcher/cmd/yarnctl/version"
	"github.com/kubeflow/yarn-launcher/pkg/common"
)

var (
	zapOptions = logzap.Options{}
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yarnctl",
		Short: "yarnctl is the command-line tool for launching applications on YARN",
		Long: `yarnctl is the command-line tool for launching applications on YARN.
It renders application master launch commands and YARN client configurations from
YarnApplication manifests, and runs ScriptRunner manifests against a SQL database.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLog(viper.GetBool("development"))
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("development", false, "Enable development mode for the logger.")
	_ = viper.BindPFlag("development", cmd.PersistentFlags().Lookup("development"))

	viper.SetEnvPrefix(common.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flagSet := flag.NewFlagSet("yarnctl", flag.ExitOnError)
	zapOptions.BindFlags(flagSet)
	cmd.PersistentFlags().AddGoFlagSet(flagSet)

	cmd.AddCommand(command.NewCommand())
	cmd.AddCommand(client.NewCommand())
	cmd.AddCommand(scripts.NewCommand())
	cmd.AddCommand(version.NewCommand())

	return cmd
}

// setupLog Configures the logging system
func setupLog(development bool) {
	ctrl.SetLogger(logzap.New(
		logzap.UseFlagOptions(&zapOptions),
		func(o *logzap.Options) {
			o.Development = development
			o.DestWriter = os.Stderr
		}, func(o *logzap.Options) {
			o.ZapOpts = append(o.ZapOpts, zap.AddCaller())
		}, func(o *logzap.Options) {
			var config zapcore.EncoderConfig
			if !development {
				config = zap.NewProductionEncoderConfig()
			} else {
				config = zap.NewDevelopmentEncoderConfig()
				config.EncodeLevel = zapcore.CapitalColorLevelEncoder
			}
			config.EncodeTime = zapcore.ISO8601TimeEncoder
			config.EncodeCaller = zapcore.ShortCallerEncoder
			if !development {
				o.Encoder = zapcore.NewJSONEncoder(config)
			} else {
				o.Encoder = zapcore.NewConsoleEncoder(config)
			}
		}),
	)
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
