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

// Package yarn assembles the YARN client configuration of an application from its manifest.
package yarn

import (
	"errors"
	"fmt"
	"path"

	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/yarn-launcher/api/v1alpha1"
	"github.com/kubeflow/yarn-launcher/internal/launch"
	"github.com/kubeflow/yarn-launcher/pkg/common"
)

var (
	logger = log.Log.WithName("yarn")
)

// ClientConfig is everything the YARN client needs to submit an application.
type ClientConfig struct {
	Config      HadoopConfig      `json:"config"`
	Localizer   LocalizerConfig   `json:"localizer"`
	Environment EnvironmentConfig `json:"environment"`
	Client      ClientSettings    `json:"client"`
}

type HadoopConfig struct {
	FsURI                  string `json:"fsUri"`
	ResourceManagerAddress string `json:"rmAddress"`
	SchedulerAddress       string `json:"schedulerAddress"`
}

type LocalizerConfig struct {
	StagingDirectory string `json:"stagingDirectory"`
	// CopyDestination is where Files and RawFileContents are written.
	CopyDestination string `json:"copyDestination"`
	// Staging is true when files are copied into the staging directory.
	Staging         bool              `json:"staging"`
	Files           []string          `json:"files,omitempty"`
	RawFileContents map[string]string `json:"rawFileContents,omitempty"`
	Resources       []LocalResource   `json:"resources,omitempty"`
}

type EnvironmentConfig struct {
	IncludeSystemEnv        bool     `json:"includeSystemEnv"`
	IncludeBaseDirectory    bool     `json:"includeBaseDirectory"`
	DefaultYarnAppClasspath bool     `json:"defaultYarnAppClasspath"`
	Delimiter               string   `json:"delimiter"`
	Classpath               []string `json:"classpath,omitempty"`
}

type ClientSettings struct {
	AppName        string   `json:"appName"`
	AppType        string   `json:"appType"`
	Priority       int32    `json:"priority"`
	Queue          string   `json:"queue"`
	Memory         string   `json:"memory"`
	VirtualCores   int32    `json:"virtualCores"`
	LaunchStrategy string   `json:"launchStrategy"`
	MasterCommands []string `json:"masterCommands"`
}

// StrategyObserver is notified of the launch strategy chosen for an application.
type StrategyObserver interface {
	ObserveStrategy(strategy string)
}

// BuildClientConfig validates app and assembles its client configuration. app must have
// defaults applied. observer may be nil; it sees the strategy of every application, including
// the ones rejected for having none.
func BuildClientConfig(app *v1alpha1.YarnApplication, observer StrategyObserver) (*ClientConfig, error) {
	if app == nil {
		return nil, errors.New("yarn application is nil")
	}

	launchSpec := LaunchSpec(app)
	strategy := launch.Classify(launchSpec)
	if observer != nil {
		observer.ObserveStrategy(string(strategy))
	}

	if err := ValidateYarnApplication(app); err != nil {
		return nil, err
	}

	spec := app.Spec
	client := spec.Client

	command, err := launch.BuildMasterCommand(launchSpec)
	if err != nil {
		return nil, err
	}

	config := &ClientConfig{
		Config: HadoopConfig{
			FsURI:                  spec.Cluster.FsURI,
			ResourceManagerAddress: spec.Cluster.ResourceManagerAddress,
			SchedulerAddress:       spec.Cluster.SchedulerAddress,
		},
		Localizer:   buildLocalizerConfig(app),
		Environment: buildEnvironmentConfig(client),
		Client: ClientSettings{
			AppName:        spec.AppName,
			AppType:        spec.AppType,
			Priority:       deref(client.Priority, common.DefaultPriority),
			Queue:          client.Queue,
			Memory:         client.Memory,
			VirtualCores:   deref(client.VirtualCores, common.DefaultVirtualCores),
			LaunchStrategy: string(strategy),
			MasterCommands: append([]string{common.JavaExecutable}, command...),
		},
	}

	logger.Info("Assembled YARN client configuration", "name", app.Name, "strategy", strategy, "queue", config.Client.Queue)
	return config, nil
}

// LaunchSpec returns the launch spec of the application master of app.
func LaunchSpec(app *v1alpha1.YarnApplication) launch.Spec {
	client := app.Spec.Client
	return launch.Spec{
		ArtifactFile: client.AppmasterFile,
		RunnerClass:  client.MasterRunner,
		Arguments:    client.Arguments,
		Options:      client.Options,
		Stdout:       common.DefaultAppmasterStdout,
		Stderr:       common.DefaultAppmasterStderr,
	}
}

func buildLocalizerConfig(app *v1alpha1.YarnApplication) LocalizerConfig {
	spec := app.Spec
	client := spec.Client

	// Without an application directory, files go to the staging directory.
	staging := spec.ApplicationDir == nil || *spec.ApplicationDir == ""
	destination := spec.Cluster.StagingDirectory
	selectDir := "/"
	if !staging {
		destination = *spec.ApplicationDir
		selectDir = *spec.ApplicationDir
	}

	selector := NewResourceSelector()
	if client.Localizer.ZipPattern != "" {
		selector.SetZipArchivePattern(client.Localizer.ZipPattern)
	}
	if client.Localizer.PropertiesNames != nil {
		selector.SetPropertiesNames(client.Localizer.PropertiesNames)
	}
	if client.Localizer.PropertiesSuffixes != nil {
		selector.SetPropertiesSuffixes(client.Localizer.PropertiesSuffixes)
	}
	selector.AddPatterns(client.Localizer.Patterns...)

	return LocalizerConfig{
		StagingDirectory: spec.Cluster.StagingDirectory,
		CopyDestination:  path.Clean(destination),
		Staging:          staging,
		Files:            client.Files,
		RawFileContents:  client.RawFileContents,
		Resources:        selector.Select(selectDir),
	}
}

func buildEnvironmentConfig(client v1alpha1.ClientSpec) EnvironmentConfig {
	env := client.Environment
	classpath := append([]string(nil), env.Classpath...)
	if entry := launch.ExplodedClasspathEntry(client.AppmasterFile); entry != "" {
		classpath = append(classpath, entry)
	}
	return EnvironmentConfig{
		IncludeSystemEnv:        deref(env.IncludeSystemEnv, true),
		IncludeBaseDirectory:    deref(env.IncludeBaseDirectory, true),
		DefaultYarnAppClasspath: deref(env.DefaultYarnAppClasspath, true),
		Delimiter:               env.Delimiter,
		Classpath:               classpath,
	}
}

// ValidateYarnApplication checks the fields the client cannot default.
func ValidateYarnApplication(app *v1alpha1.YarnApplication) error {
	if app == nil {
		return errors.New("yarn application is nil")
	}

	var allErrs field.ErrorList
	clientPath := field.NewPath("spec", "client")

	if app.Spec.AppName == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("spec", "appName"), "application name is required"))
	}
	if p := app.Spec.Client.Priority; p != nil && *p < 0 {
		allErrs = append(allErrs, field.Invalid(clientPath.Child("priority"), *p, "must not be negative"))
	}
	if v := app.Spec.Client.VirtualCores; v != nil && *v <= 0 {
		allErrs = append(allErrs, field.Invalid(clientPath.Child("virtualCores"), *v, "must be positive"))
	}
	launchErr := launch.Validate(LaunchSpec(app))
	if launchErr != nil {
		allErrs = append(allErrs, field.Invalid(clientPath.Child("appmasterFile"), app.Spec.Client.AppmasterFile,
			"must be a .jar or .zip file unless masterRunner is set"))
	}

	if allErrs == nil {
		return nil
	}
	agg := allErrs.ToAggregate()
	if launchErr != nil {
		return fmt.Errorf("%w: %v", launch.ErrConfigurationIncomplete, agg)
	}
	return agg
}

func deref[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
