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

package util

import (
	"fmt"
	"os"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/yarn-launcher/api/v1alpha1"
)

// LoadYarnApplicationFromFile reads a YarnApplication manifest and applies defaults.
func LoadYarnApplicationFromFile(path string) (*v1alpha1.YarnApplication, error) {
	app := &v1alpha1.YarnApplication{}
	if err := loadManifest(path, v1alpha1.KindYarnApplication, app); err != nil {
		return nil, err
	}
	v1alpha1.SetYarnApplicationDefaults(app)
	return app, nil
}

// LoadScriptRunnerFromFile reads a ScriptRunner manifest and applies defaults.
func LoadScriptRunnerFromFile(path string) (*v1alpha1.ScriptRunner, error) {
	runner := &v1alpha1.ScriptRunner{}
	if err := loadManifest(path, v1alpha1.KindScriptRunner, runner); err != nil {
		return nil, err
	}
	v1alpha1.SetScriptRunnerDefaults(runner)
	return runner, nil
}

func loadManifest(path string, kind string, obj interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %v", path, err)
	}

	// Kind first; the strict decode rejects the fields of any other kind.
	typeMeta := metav1.TypeMeta{}
	if err := yaml.Unmarshal(content, &typeMeta); err != nil {
		return fmt.Errorf("failed to parse %s: %v", path, err)
	}
	// An empty kind is accepted so that bare specs can be used in tests and scripts.
	if typeMeta.Kind != "" && typeMeta.Kind != kind {
		return fmt.Errorf("unexpected kind %q in %s, expected %q", typeMeta.Kind, path, kind)
	}

	if err := yaml.UnmarshalStrict(content, obj); err != nil {
		return fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return nil
}
