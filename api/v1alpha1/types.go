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

// Package v1alpha1 contains the manifest types read by yarnctl.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	GroupVersion = "yarn.kubeflow.org/v1alpha1"

	KindYarnApplication = "YarnApplication"

	KindScriptRunner = "ScriptRunner"
)

// YarnApplication describes how a YARN application and its application master are launched.
type YarnApplication struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec YarnApplicationSpec `json:"spec"`
}

// YarnApplicationSpec carries every piece of information the YARN client builder takes.
type YarnApplicationSpec struct {
	// AppName is the YARN application name. Defaults to the manifest name.
	// +optional
	AppName string `json:"appName,omitempty"`
	// AppType is the YARN application type.
	// +optional
	AppType string `json:"appType,omitempty"`
	// ApplicationDir is the HDFS directory holding the application files. When unset, files are
	// staged under the staging directory instead.
	// +optional
	ApplicationDir *string `json:"applicationDir,omitempty"`
	// Cluster holds the addresses of the file system and the resource manager.
	// +optional
	Cluster ClusterSpec `json:"cluster,omitempty"`
	// Client holds the application master settings used by the client.
	Client ClientSpec `json:"client"`
}

// ClusterSpec holds Hadoop cluster endpoints.
type ClusterSpec struct {
	// +optional
	FsURI string `json:"fsUri,omitempty"`
	// +optional
	ResourceManagerAddress string `json:"rmAddress,omitempty"`
	// +optional
	SchedulerAddress string `json:"schedulerAddress,omitempty"`
	// +optional
	StagingDirectory string `json:"stagingDirectory,omitempty"`
}

// ClientSpec describes the application master container and how it is launched.
type ClientSpec struct {
	// AppmasterFile is the artifact started as the application master, either a jar or a zip.
	// +optional
	AppmasterFile string `json:"appmasterFile,omitempty"`
	// MasterRunner is the fully-qualified runner class of the application master.
	// +optional
	MasterRunner string `json:"masterRunner,omitempty"`
	// Arguments are passed to the application master as key=value tokens.
	// +optional
	Arguments map[string]string `json:"arguments,omitempty"`
	// Options are JVM options passed to the application master.
	// +optional
	Options []string `json:"options,omitempty"`
	// +optional
	Priority *int32 `json:"priority,omitempty"`
	// +optional
	Queue string `json:"queue,omitempty"`
	// Memory is the application master container memory, e.g. "64M".
	// +optional
	Memory string `json:"memory,omitempty"`
	// +optional
	VirtualCores *int32 `json:"virtualCores,omitempty"`
	// Files are local files copied to HDFS before the application is submitted.
	// +optional
	Files []string `json:"files,omitempty"`
	// RawFileContents maps file names to contents written to HDFS before submission.
	// +optional
	RawFileContents map[string]string `json:"rawFileContents,omitempty"`
	// +optional
	Localizer LocalizerSpec `json:"localizer,omitempty"`
	// +optional
	Environment EnvironmentSpec `json:"environment,omitempty"`
}

// LocalizerSpec controls which HDFS files are localized into the application master container.
type LocalizerSpec struct {
	// +optional
	ZipPattern string `json:"zipPattern,omitempty"`
	// +optional
	PropertiesNames []string `json:"propertiesNames,omitempty"`
	// +optional
	PropertiesSuffixes []string `json:"propertiesSuffixes,omitempty"`
	// +optional
	Patterns []string `json:"patterns,omitempty"`
}

// EnvironmentSpec controls the application master container environment.
type EnvironmentSpec struct {
	// +optional
	IncludeSystemEnv *bool `json:"includeSystemEnv,omitempty"`
	// +optional
	IncludeBaseDirectory *bool `json:"includeBaseDirectory,omitempty"`
	// +optional
	DefaultYarnAppClasspath *bool `json:"defaultYarnAppClasspath,omitempty"`
	// +optional
	Delimiter string `json:"delimiter,omitempty"`
	// +optional
	Classpath []string `json:"classpath,omitempty"`
}

// ScriptRunner describes a set of scripts that are run once, bracketed by named hooks.
type ScriptRunner struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ScriptRunnerSpec `json:"spec"`
}

// ScriptRunnerSpec defines the scripts, their hooks and the hooks available for lookup.
type ScriptRunnerSpec struct {
	// Scripts are executed in order.
	Scripts []ScriptSpec `json:"scripts"`
	// PreActions are hook names invoked before the scripts run.
	// +optional
	PreActions []string `json:"preActions,omitempty"`
	// PostActions are hook names invoked after the scripts run.
	// +optional
	PostActions []string `json:"postActions,omitempty"`
	// RunAtStartup runs the scripts while the runner is initialized instead of on first use.
	// +optional
	RunAtStartup *bool `json:"runAtStartup,omitempty"`
	// Hooks are the named actions that PreActions and PostActions refer to.
	// +optional
	Hooks []HookSpec `json:"hooks,omitempty"`
}

// ScriptSpec is a single script given either by location or inline.
type ScriptSpec struct {
	// +optional
	Location string `json:"location,omitempty"`
	// +optional
	Inline string `json:"inline,omitempty"`
	// Arguments replace ${name} placeholders in the script text.
	// +optional
	Arguments map[string]string `json:"arguments,omitempty"`
}

// HookSpec is a named action. Exactly one of Command or Scripts is set.
type HookSpec struct {
	Name string `json:"name"`
	// Command is an external command and its arguments.
	// +optional
	Command []string `json:"command,omitempty"`
	// Scripts are run once, the first time the hook is invoked.
	// +optional
	Scripts []ScriptSpec `json:"scripts,omitempty"`
}
