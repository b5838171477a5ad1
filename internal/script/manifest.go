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

package script

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/kubeflow/yarn-launcher/api/v1alpha1"
	"github.com/kubeflow/yarn-launcher/internal/deferred"
	"github.com/kubeflow/yarn-launcher/internal/hook"
)

// NewRunnerFromManifest builds a runner and the registry of its hooks from a manifest.
// Script hooks become runners of their own and run once, the first time they are invoked.
// recorder may be nil.
func NewRunnerFromManifest(manifest *v1alpha1.ScriptRunner, executor Executor, recorder deferred.Recorder) (*Runner, error) {
	if err := ValidateManifest(manifest); err != nil {
		return nil, err
	}

	registry := hook.NewRegistry()
	for _, spec := range manifest.Spec.Hooks {
		var h deferred.Hook
		if len(spec.Command) > 0 {
			commandHook, err := hook.NewCommandHook(spec.Name, spec.Command)
			if err != nil {
				return nil, err
			}
			h = commandHook
		} else {
			h = NewRunner(spec.Name, executor, FromSpecs(spec.Scripts), runnerOptions(recorder)...)
		}
		if err := registry.Register(spec.Name, h); err != nil {
			return nil, err
		}
	}

	logger.V(1).Info("Registered hooks", "runner", manifest.Name, "hooks", registry.Names())

	opts := append(runnerOptions(recorder),
		deferred.WithResolver[[]string](registry),
		deferred.WithPreActions[[]string](manifest.Spec.PreActions...),
		deferred.WithPostActions[[]string](manifest.Spec.PostActions...),
	)
	if manifest.Spec.RunAtStartup != nil {
		opts = append(opts, deferred.WithRunAtStartup[[]string](*manifest.Spec.RunAtStartup))
	}
	return NewRunner(manifest.Name, executor, FromSpecs(manifest.Spec.Scripts), opts...), nil
}

func runnerOptions(recorder deferred.Recorder) []deferred.Option[[]string] {
	if recorder == nil {
		return nil
	}
	return []deferred.Option[[]string]{deferred.WithRecorder[[]string](recorder)}
}

// ValidateManifest checks scripts and hooks of a ScriptRunner.
func ValidateManifest(manifest *v1alpha1.ScriptRunner) error {
	if manifest == nil {
		return fmt.Errorf("script runner manifest is nil")
	}

	var allErrs field.ErrorList
	specPath := field.NewPath("spec")

	if manifest.Name == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("metadata", "name"), "runner name is required"))
	}
	if len(manifest.Spec.Scripts) == 0 {
		allErrs = append(allErrs, field.Required(specPath.Child("scripts"), "at least one script is required"))
	}
	allErrs = append(allErrs, validateScripts(specPath.Child("scripts"), manifest.Spec.Scripts)...)

	names := make(map[string]bool, len(manifest.Spec.Hooks))
	for i, spec := range manifest.Spec.Hooks {
		hookPath := specPath.Child("hooks").Index(i)
		switch {
		case spec.Name == "":
			allErrs = append(allErrs, field.Required(hookPath.Child("name"), "hook name is required"))
		case names[spec.Name]:
			allErrs = append(allErrs, field.Duplicate(hookPath.Child("name"), spec.Name))
		case spec.Name == manifest.Name:
			allErrs = append(allErrs, field.Invalid(hookPath.Child("name"), spec.Name, "hook must not have the runner name"))
		}
		names[spec.Name] = true

		switch {
		case len(spec.Command) > 0 && len(spec.Scripts) > 0:
			allErrs = append(allErrs, field.Invalid(hookPath, spec.Name, "only one of command and scripts may be set"))
		case len(spec.Command) == 0 && len(spec.Scripts) == 0:
			allErrs = append(allErrs, field.Required(hookPath, "one of command and scripts is required"))
		}
		allErrs = append(allErrs, validateScripts(hookPath.Child("scripts"), spec.Scripts)...)
	}

	if allErrs != nil {
		return allErrs.ToAggregate()
	}
	return nil
}

func validateScripts(path *field.Path, specs []v1alpha1.ScriptSpec) field.ErrorList {
	var allErrs field.ErrorList
	for i, s := range FromSpecs(specs) {
		if err := s.Validate(); err != nil {
			allErrs = append(allErrs, field.Invalid(path.Index(i), s.String(), err.Error()))
		}
	}
	return allErrs
}
