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

package deferred

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrHookNotFound is wrapped by resolvers that do not know a hook name.
	ErrHookNotFound = errors.New("hook not found")

	// ErrPreviouslyFailed is returned by Obtain after the first execution failed.
	ErrPreviouslyFailed = errors.New("action previously failed and is not retried")

	// ErrPanicked is the failure recorded when the computation or a hook panics.
	ErrPanicked = errors.New("action panicked")
)

// Hook is a named action invoked before or after the primary computation.
type Hook interface {
	Invoke(ctx context.Context) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context) error

func (f HookFunc) Invoke(ctx context.Context) error {
	return f(ctx)
}

// Resolver looks up hooks by name.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Hook, error)
}

// HookError reports a pre or post hook that could not be resolved or failed.
type HookError struct {
	Phase string
	Name  string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook %q failed: %v", e.Phase, e.Name, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
