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

package v1alpha1

import (
	"k8s.io/utils/ptr"

	"github.com/kubeflow/yarn-launcher/pkg/common"
)

// SetYarnApplicationDefaults sets default values for certain fields of a YarnApplication.
func SetYarnApplicationDefaults(app *YarnApplication) {
	if app == nil {
		return
	}

	if app.Spec.AppName == "" {
		app.Spec.AppName = app.Name
	}

	if app.Spec.AppType == "" {
		app.Spec.AppType = common.DefaultAppType
	}

	setClusterSpecDefaults(&app.Spec.Cluster)
	setClientSpecDefaults(&app.Spec.Client)
}

func setClusterSpecDefaults(spec *ClusterSpec) {
	if spec.FsURI == "" {
		spec.FsURI = common.DefaultFsURI
	}

	if spec.ResourceManagerAddress == "" {
		spec.ResourceManagerAddress = common.DefaultResourceManagerAddress
	}

	if spec.SchedulerAddress == "" {
		spec.SchedulerAddress = common.DefaultSchedulerAddress
	}

	if spec.StagingDirectory == "" {
		spec.StagingDirectory = common.DefaultStagingDirectory
	}
}

func setClientSpecDefaults(spec *ClientSpec) {
	if spec.Priority == nil {
		spec.Priority = ptr.To[int32](common.DefaultPriority)
	}

	if spec.Queue == "" {
		spec.Queue = common.DefaultQueue
	}

	if spec.Memory == "" {
		spec.Memory = common.DefaultMemory
	}

	if spec.VirtualCores == nil {
		spec.VirtualCores = ptr.To[int32](common.DefaultVirtualCores)
	}

	if spec.Localizer.ZipPattern == "" {
		spec.Localizer.ZipPattern = common.DefaultLocalizerZipPattern
	}

	if spec.Localizer.PropertiesNames == nil {
		spec.Localizer.PropertiesNames = []string{common.DefaultLocalizerPropertiesName}
	}

	if spec.Localizer.PropertiesSuffixes == nil {
		spec.Localizer.PropertiesSuffixes = append([]string(nil), common.DefaultLocalizerPropertiesSuffixes...)
	}

	env := &spec.Environment
	if env.IncludeSystemEnv == nil {
		env.IncludeSystemEnv = ptr.To(true)
	}

	if env.IncludeBaseDirectory == nil {
		env.IncludeBaseDirectory = ptr.To(true)
	}

	if env.DefaultYarnAppClasspath == nil {
		env.DefaultYarnAppClasspath = ptr.To(true)
	}

	if env.Delimiter == "" {
		env.Delimiter = common.DefaultClasspathDelimiter
	}
}

// SetScriptRunnerDefaults sets default values for certain fields of a ScriptRunner.
func SetScriptRunnerDefaults(runner *ScriptRunner) {
	if runner == nil {
		return
	}

	if runner.Spec.RunAtStartup == nil {
		runner.Spec.RunAtStartup = ptr.To(false)
	}
}
