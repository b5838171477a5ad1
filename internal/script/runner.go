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

// Package script runs SQL scripts once at startup or on first use, bracketed by named
// pre and post hooks, and keeps their output.
package script

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/yarn-launcher/internal/deferred"
)

var (
	logger = log.Log.WithName("script")
)

// Runner runs its scripts at most once and caches their combined output.
// A Runner is also a deferred.Hook, so it can be a pre or post action of another runner.
type Runner struct {
	name     string
	scripts  []Script
	executor Executor
	action   *deferred.Action[[]string]
}

var _ deferred.Hook = &Runner{}

// NewRunner creates a runner. Options configure hooks, run-at-startup, logging and metrics.
func NewRunner(name string, executor Executor, scripts []Script, opts ...deferred.Option[[]string]) *Runner {
	r := &Runner{
		name:     name,
		scripts:  append([]Script(nil), scripts...),
		executor: executor,
	}
	r.action = deferred.New(name, r.run, opts...)
	return r
}

// Name returns the runner name.
func (r *Runner) Name() string {
	return r.name
}

// Init runs the scripts if the runner is configured to run at startup.
func (r *Runner) Init(ctx context.Context) error {
	return r.action.Init(ctx)
}

// Results returns the script output, running the scripts on first call.
func (r *Runner) Results(ctx context.Context) ([]string, error) {
	return r.action.Obtain(ctx)
}

// Invoke implements deferred.Hook.
func (r *Runner) Invoke(ctx context.Context) error {
	_, err := r.action.Obtain(ctx)
	return err
}

func (r *Runner) run(ctx context.Context) ([]string, error) {
	runID := uuid.New().String()
	runLogger := logger.WithValues("runner", r.name, "runID", runID)

	var output []string
	for _, s := range r.scripts {
		text, err := s.Text()
		if err != nil {
			return nil, fmt.Errorf("runner %s: %w", r.name, err)
		}

		runLogger.Info("Executing script", "script", s.String())
		lines, err := r.executor.Execute(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("runner %s: script %s: %w", r.name, s, err)
		}
		output = append(output, lines...)
	}
	runLogger.Info("Finished scripts", "scripts", len(r.scripts), "lines", len(output))
	return output, nil
}
