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

package deferred_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/yarn-launcher/internal/deferred"
)

// callLog records invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type mapResolver map[string]deferred.Hook

func (r mapResolver) Resolve(_ context.Context, name string) (deferred.Hook, error) {
	hook, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", deferred.ErrHookNotFound, name)
	}
	return hook, nil
}

func loggingHook(l *callLog, name string) deferred.Hook {
	return deferred.HookFunc(func(context.Context) error {
		l.add(name)
		return nil
	})
}

type fakeRecorder struct {
	executions atomic.Int32
	failures   atomic.Int32
	cacheHits  atomic.Int32
	hooks      atomic.Int32
}

func (r *fakeRecorder) ObserveExecution(_ string, _ time.Duration, err error) {
	r.executions.Add(1)
	if err != nil {
		r.failures.Add(1)
	}
}

func (r *fakeRecorder) ObserveCacheHit(string) { r.cacheHits.Add(1) }

func (r *fakeRecorder) ObserveHook(string, string) { r.hooks.Add(1) }

var _ = Describe("Action", func() {
	var (
		ctx      context.Context
		calls    *callLog
		resolver mapResolver
		count    atomic.Int32
		compute  func(context.Context) (string, error)
	)

	BeforeEach(func() {
		ctx = context.Background()
		calls = &callLog{}
		resolver = mapResolver{
			"a": loggingHook(calls, "a"),
			"b": loggingHook(calls, "b"),
			"c": loggingHook(calls, "c"),
		}
		count.Store(0)
		compute = func(context.Context) (string, error) {
			count.Add(1)
			calls.add("primary")
			return "X", nil
		}
	})

	Context("When obtained repeatedly", func() {
		It("Should run hooks around the computation once and cache the result", func() {
			action := deferred.New("test", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithPreActions[string]("a"),
				deferred.WithPostActions[string]("b"),
			)
			Expect(action.State()).To(Equal(deferred.StateEmpty))

			result, err := action.Obtain(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("X"))
			Expect(calls.get()).To(Equal([]string{"a", "primary", "b"}))
			Expect(action.State()).To(Equal(deferred.StateDone))

			for i := 0; i < 5; i++ {
				result, err = action.Obtain(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal("X"))
			}
			Expect(count.Load()).To(Equal(int32(1)))
			Expect(calls.get()).To(Equal([]string{"a", "primary", "b"}))
		})

		It("Should return the identical cached value", func() {
			action := deferred.New("slice", func(context.Context) (*[]string, error) {
				v := []string{"row"}
				return &v, nil
			})
			first, err := action.Obtain(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := action.Obtain(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeIdenticalTo(first))
		})
	})

	Context("When several hooks are configured", func() {
		It("Should invoke them in declared order", func() {
			action := deferred.New("ordered", compute, deferred.WithResolver[string](resolver))
			action.SetPreActions("c", "a")
			action.SetPostActions("b", "c")

			_, err := action.Obtain(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls.get()).To(Equal([]string{"c", "a", "primary", "b", "c"}))
		})

		It("Should replace previously configured hooks", func() {
			action := deferred.New("replaced", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithPreActions[string]("a", "b"),
			)
			action.SetPreActions("c")

			_, err := action.Obtain(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls.get()).To(Equal([]string{"c", "primary"}))
		})
	})

	Context("When a pre hook cannot be resolved", func() {
		It("Should fail before the computation and not retry", func() {
			action := deferred.New("missing-pre", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithPreActions[string]("a", "missing", "b"),
			)

			_, err := action.Obtain(ctx)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, deferred.ErrHookNotFound)).To(BeTrue())
			var hookErr *deferred.HookError
			Expect(errors.As(err, &hookErr)).To(BeTrue())
			Expect(hookErr.Phase).To(Equal("pre"))
			Expect(hookErr.Name).To(Equal("missing"))
			Expect(count.Load()).To(BeZero())
			Expect(calls.get()).To(Equal([]string{"a"}))
			Expect(action.State()).To(Equal(deferred.StateFailed))

			_, err = action.Obtain(ctx)
			Expect(errors.Is(err, deferred.ErrPreviouslyFailed)).To(BeTrue())
			Expect(errors.Is(err, deferred.ErrHookNotFound)).To(BeTrue())
			Expect(count.Load()).To(BeZero())
		})
	})

	Context("When a post hook cannot be resolved", func() {
		It("Should fail after the computation", func() {
			action := deferred.New("missing-post", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithPostActions[string]("missing"),
			)

			_, err := action.Obtain(ctx)
			Expect(errors.Is(err, deferred.ErrHookNotFound)).To(BeTrue())
			Expect(count.Load()).To(Equal(int32(1)))
			Expect(action.State()).To(Equal(deferred.StateFailed))
		})
	})

	Context("When a hook fails", func() {
		It("Should propagate the hook error", func() {
			boom := errors.New("boom")
			resolver["failing"] = deferred.HookFunc(func(context.Context) error { return boom })
			action := deferred.New("failing-hook", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithPreActions[string]("failing"),
			)

			_, err := action.Obtain(ctx)
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(count.Load()).To(BeZero())
		})
	})

	Context("When no resolver is set", func() {
		It("Should skip the hooks without failing", func() {
			action := deferred.New("no-resolver", compute,
				deferred.WithPreActions[string]("a"),
				deferred.WithPostActions[string]("b"),
			)

			result, err := action.Obtain(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("X"))
			Expect(calls.get()).To(Equal([]string{"primary"}))
		})
	})

	Context("When the computation fails", func() {
		It("Should not run post hooks and should not retry", func() {
			boom := errors.New("query failed")
			action := deferred.New("failing", func(context.Context) (string, error) {
				count.Add(1)
				return "", boom
			},
				deferred.WithResolver[string](resolver),
				deferred.WithPreActions[string]("a"),
				deferred.WithPostActions[string]("b"),
			)

			_, err := action.Obtain(ctx)
			Expect(err).To(MatchError(boom))

			_, err = action.Obtain(ctx)
			Expect(errors.Is(err, deferred.ErrPreviouslyFailed)).To(BeTrue())
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(count.Load()).To(Equal(int32(1)))
			Expect(calls.get()).To(Equal([]string{"a"}))
		})
	})

	Context("When the computation or a hook panics", func() {
		It("Should fail the action and release later callers", func() {
			recorder := &fakeRecorder{}
			action := deferred.New("panicking", func(context.Context) (string, error) {
				count.Add(1)
				panic("bad row")
			}, deferred.WithRecorder[string](recorder))

			Expect(func() { _, _ = action.Obtain(ctx) }).To(PanicWith("bad row"))
			Expect(action.State()).To(Equal(deferred.StateFailed))

			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_, err := action.Obtain(waitCtx)
			Expect(errors.Is(err, deferred.ErrPreviouslyFailed)).To(BeTrue())
			Expect(errors.Is(err, deferred.ErrPanicked)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("bad row")))
			Expect(count.Load()).To(Equal(int32(1)))
			Expect(recorder.failures.Load()).To(Equal(int32(1)))
		})

		It("Should release callers already waiting when a hook panics", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			resolver["boom"] = deferred.HookFunc(func(context.Context) error {
				close(entered)
				<-release
				panic("hook exploded")
			})
			action := deferred.New("panicking-hook", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithPreActions[string]("boom"),
			)

			panicked := make(chan any, 1)
			go func() {
				defer GinkgoRecover()
				defer func() { panicked <- recover() }()
				_, _ = action.Obtain(ctx)
			}()
			<-entered

			waiterErr := make(chan error, 1)
			go func() {
				_, err := action.Obtain(ctx)
				waiterErr <- err
			}()
			Eventually(action.State).Should(Equal(deferred.StateExecuting))
			close(release)

			Eventually(panicked).Should(Receive(Equal("hook exploded")))
			var err error
			Eventually(waiterErr).Should(Receive(&err))
			Expect(errors.Is(err, deferred.ErrPanicked)).To(BeTrue())
			Expect(count.Load()).To(BeZero())
		})
	})

	Context("When initialized", func() {
		It("Should run immediately if run at startup is set", func() {
			action := deferred.New("eager", compute, deferred.WithRunAtStartup[string](true))
			Expect(action.Init(ctx)).To(Succeed())
			Expect(count.Load()).To(Equal(int32(1)))
			Expect(action.State()).To(Equal(deferred.StateDone))

			_, err := action.Obtain(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count.Load()).To(Equal(int32(1)))
		})

		It("Should defer execution by default", func() {
			action := deferred.New("lazy", compute)
			Expect(action.Init(ctx)).To(Succeed())
			Expect(count.Load()).To(BeZero())
			Expect(action.State()).To(Equal(deferred.StateEmpty))
		})

		It("Should surface startup failures from Init", func() {
			action := deferred.New("eager-missing", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithPreActions[string]("missing"),
			)
			action.SetRunAtStartup(true)
			Expect(action.Init(ctx)).To(MatchError(ContainSubstring(`pre hook "missing" failed`)))
		})
	})

	Context("When obtained concurrently", func() {
		It("Should execute exactly once", func() {
			release := make(chan struct{})
			action := deferred.New("concurrent", func(context.Context) (string, error) {
				count.Add(1)
				<-release
				return "X", nil
			})

			const callers = 32
			var wg sync.WaitGroup
			results := make([]string, callers)
			errs := make([]error, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					results[i], errs[i] = action.Obtain(ctx)
				}(i)
			}

			Eventually(action.State).Should(Equal(deferred.StateExecuting))
			close(release)
			wg.Wait()

			Expect(count.Load()).To(Equal(int32(1)))
			for i := 0; i < callers; i++ {
				Expect(errs[i]).NotTo(HaveOccurred())
				Expect(results[i]).To(Equal("X"))
			}
		})

		It("Should let a waiting caller give up when its context is cancelled", func() {
			release := make(chan struct{})
			action := deferred.New("slow", func(context.Context) (string, error) {
				<-release
				return "X", nil
			})

			go func() {
				defer GinkgoRecover()
				_, _ = action.Obtain(ctx)
			}()
			Eventually(action.State).Should(Equal(deferred.StateExecuting))

			waitCtx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := action.Obtain(waitCtx)
			Expect(err).To(MatchError(context.Canceled))

			close(release)
			Eventually(action.State).Should(Equal(deferred.StateDone))
		})
	})

	Context("When a recorder is set", func() {
		It("Should record executions, hooks and cache hits", func() {
			recorder := &fakeRecorder{}
			action := deferred.New("recorded", compute,
				deferred.WithResolver[string](resolver),
				deferred.WithRecorder[string](recorder),
				deferred.WithPreActions[string]("a"),
				deferred.WithPostActions[string]("b"),
			)

			_, _ = action.Obtain(ctx)
			_, _ = action.Obtain(ctx)
			_, _ = action.Obtain(ctx)

			Expect(recorder.executions.Load()).To(Equal(int32(1)))
			Expect(recorder.failures.Load()).To(BeZero())
			Expect(recorder.hooks.Load()).To(Equal(int32(2)))
			Expect(recorder.cacheHits.Load()).To(Equal(int32(2)))
			Expect(action.Name()).To(Equal("recorded"))
		})
	})
})
