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

// Package deferred provides an action that runs at most once, bracketed by named hooks,
// and caches its result.
package deferred

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/yarn-launcher/pkg/common"
)

// State is the lifecycle state of an Action.
type State string

const (
	// StateEmpty means the action has not been executed yet.
	StateEmpty State = "Empty"
	// StateExecuting means the first execution is in progress.
	StateExecuting State = "Executing"
	// StateDone means the result is cached.
	StateDone State = "Done"
	// StateFailed means the first execution failed or panicked. It is terminal.
	StateFailed State = "Failed"
)

// Recorder receives execution events. It is implemented by metrics.DeferredActionMetrics.
type Recorder interface {
	ObserveExecution(action string, duration time.Duration, err error)
	ObserveCacheHit(action string)
	ObserveHook(action string, phase string)
}

// Action runs its computation at most once and returns the cached result on every call.
// It is safe for concurrent use: callers arriving during the first execution wait for it.
type Action[R any] struct {
	name     string
	compute  func(ctx context.Context) (R, error)
	resolver Resolver
	recorder Recorder
	logger   logr.Logger

	mu           sync.Mutex
	preActions   []string
	postActions  []string
	runAtStartup bool
	state        State
	done         chan struct{}
	result       R
	err          error
}

// Option configures an Action.
type Option[R any] func(*Action[R])

// WithResolver sets the resolver used to look up pre and post hooks.
func WithResolver[R any](resolver Resolver) Option[R] {
	return func(a *Action[R]) {
		a.resolver = resolver
	}
}

// WithRecorder sets the recorder notified of executions, hooks and cache hits.
func WithRecorder[R any](recorder Recorder) Option[R] {
	return func(a *Action[R]) {
		a.recorder = recorder
	}
}

// WithLogger replaces the default logger.
func WithLogger[R any](logger logr.Logger) Option[R] {
	return func(a *Action[R]) {
		a.logger = logger
	}
}

// WithPreActions sets the hooks invoked in order before the computation.
func WithPreActions[R any](names ...string) Option[R] {
	return func(a *Action[R]) {
		a.preActions = slices.Clone(names)
	}
}

// WithPostActions sets the hooks invoked in order after the computation.
func WithPostActions[R any](names ...string) Option[R] {
	return func(a *Action[R]) {
		a.postActions = slices.Clone(names)
	}
}

// WithRunAtStartup makes Init execute the action.
func WithRunAtStartup[R any](runAtStartup bool) Option[R] {
	return func(a *Action[R]) {
		a.runAtStartup = runAtStartup
	}
}

// New creates an Action named name around compute.
func New[R any](name string, compute func(ctx context.Context) (R, error), opts ...Option[R]) *Action[R] {
	a := &Action[R]{
		name:    name,
		compute: compute,
		logger:  log.Log.WithName("deferred").WithValues("action", name),
		state:   StateEmpty,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the action name.
func (a *Action[R]) Name() string {
	return a.name
}

// SetPreActions replaces the hooks invoked before the computation.
func (a *Action[R]) SetPreActions(names ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.preActions = slices.Clone(names)
}

// SetPostActions replaces the hooks invoked after the computation.
func (a *Action[R]) SetPostActions(names ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.postActions = slices.Clone(names)
}

// SetRunAtStartup makes Init run the action instead of waiting for the first Obtain.
func (a *Action[R]) SetRunAtStartup(runAtStartup bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runAtStartup = runAtStartup
}

// State returns the current lifecycle state.
func (a *Action[R]) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Init completes the initialization phase. If run at startup is set, the action is executed
// and its error returned.
func (a *Action[R]) Init(ctx context.Context) error {
	a.mu.Lock()
	runAtStartup := a.runAtStartup
	a.mu.Unlock()

	if !runAtStartup {
		return nil
	}
	_, err := a.Obtain(ctx)
	return err
}

// Obtain returns the result of the action, executing it on the first call: pre hooks in
// order, the computation, then post hooks in order. A failure at any step is returned and
// every later call fails with ErrPreviouslyFailed wrapping the original error. A panic is
// re-raised to the executing caller and recorded as ErrPanicked for everyone else.
func (a *Action[R]) Obtain(ctx context.Context) (R, error) {
	for {
		a.mu.Lock()
		switch a.state {
		case StateDone:
			result := a.result
			a.mu.Unlock()
			if a.recorder != nil {
				a.recorder.ObserveCacheHit(a.name)
			}
			return result, nil
		case StateFailed:
			err := a.err
			a.mu.Unlock()
			var zero R
			return zero, fmt.Errorf("%w: %w", ErrPreviouslyFailed, err)
		case StateExecuting:
			done := a.done
			a.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				var zero R
				return zero, ctx.Err()
			}
		}

		a.state = StateExecuting
		a.done = make(chan struct{})
		pre := slices.Clone(a.preActions)
		post := slices.Clone(a.postActions)
		a.mu.Unlock()

		return a.run(ctx, pre, post)
	}
}

// run executes the action and publishes the outcome. A panic fails the action and releases
// the waiters before it is re-raised.
func (a *Action[R]) run(ctx context.Context, pre, post []string) (result R, err error) {
	start := time.Now()
	finished := false
	defer func() {
		if finished {
			return
		}
		r := recover()
		var zero R
		a.finish(zero, fmt.Errorf("%w: %v", ErrPanicked, r), time.Since(start))
		// A nil value means the goroutine is exiting through runtime.Goexit.
		if r != nil {
			panic(r)
		}
	}()

	result, err = a.execute(ctx, pre, post)
	finished = true
	a.finish(result, err, time.Since(start))
	return result, err
}

func (a *Action[R]) finish(result R, err error, duration time.Duration) {
	if a.recorder != nil {
		a.recorder.ObserveExecution(a.name, duration, err)
	}
	if err != nil {
		a.logger.Error(err, "Action failed", "duration", duration)
	} else {
		a.logger.Info("Action completed", "duration", duration)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.state = StateFailed
		a.err = err
	} else {
		a.state = StateDone
		a.result = result
	}
	close(a.done)
}

func (a *Action[R]) execute(ctx context.Context, pre, post []string) (R, error) {
	var zero R
	if err := a.invoke(ctx, common.HookPhasePre, pre); err != nil {
		return zero, err
	}

	a.logger.V(1).Info("Running action")
	result, err := a.compute(ctx)
	if err != nil {
		return zero, err
	}

	if err := a.invoke(ctx, common.HookPhasePost, post); err != nil {
		return zero, err
	}
	return result, nil
}

func (a *Action[R]) invoke(ctx context.Context, phase string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if a.resolver == nil {
		a.logger.Info("No resolver set, skipping hooks", "phase", phase, "hooks", names)
		return nil
	}

	for _, name := range names {
		hook, err := a.resolver.Resolve(ctx, name)
		if err != nil {
			return &HookError{Phase: phase, Name: name, Err: err}
		}
		a.logger.V(1).Info("Invoking hook", "phase", phase, "hook", name)
		if a.recorder != nil {
			a.recorder.ObserveHook(a.name, phase)
		}
		if err := hook.Invoke(ctx); err != nil {
			return &HookError{Phase: phase, Name: name, Err: err}
		}
	}
	return nil
}
