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

package launch

import (
	"strings"

	"github.com/kubeflow/yarn-launcher/pkg/common"
)

// Strategy is the mechanism used to start the application master.
type Strategy string

const (
	// StrategyJar runs the main class of the artifact jar.
	StrategyJar Strategy = "jar"
	// StrategyRunner runs an explicitly configured runner class.
	StrategyRunner Strategy = "runner"
	// StrategyBootstrap runs the bootstrap launcher over a self-extracting zip artifact.
	StrategyBootstrap Strategy = "bootstrap"
	// StrategyUnresolved means no launch strategy matched the Spec.
	StrategyUnresolved Strategy = "unresolved"
)

// Classify selects the launch strategy for spec. The first matching rule wins:
// a ".jar" artifact, then a runner class, then a ".zip" artifact.
func Classify(spec Spec) Strategy {
	switch {
	case spec.ArtifactFile != "" && strings.HasSuffix(spec.ArtifactFile, common.JarFileSuffix):
		return StrategyJar
	case strings.TrimSpace(spec.RunnerClass) != "":
		return StrategyRunner
	case isZip(spec.ArtifactFile):
		return StrategyBootstrap
	default:
		return StrategyUnresolved
	}
}

// ExplodedClasspathEntry returns the classpath entry of an artifact that must be extracted
// before the application master starts, or an empty string if the artifact is not a zip.
func ExplodedClasspathEntry(artifact string) string {
	if !isZip(artifact) {
		return ""
	}
	return "./" + artifact
}

func isZip(artifact string) bool {
	return artifact != "" && strings.HasSuffix(strings.ToLower(artifact), common.ZipFileSuffix)
}
