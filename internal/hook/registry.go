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

package hook

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/yarn-launcher/internal/deferred"
)

var (
	logger = log.Log.WithName("hook")
)

// Registry is a registry of named hooks. It implements deferred.Resolver.
type Registry struct {
	hooks map[string]deferred.Hook

	mu sync.RWMutex
}

var _ deferred.Resolver = &Registry{}

func NewRegistry() *Registry {
	return &Registry{
		hooks: make(map[string]deferred.Hook),
	}
}

// Register registers a hook under name.
func (r *Registry) Register(name string, hook deferred.Hook) error {
	if name == "" {
		return fmt.Errorf("hook name must not be empty")
	}
	if hook == nil {
		return fmt.Errorf("hook %s is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hooks[name]; ok {
		return fmt.Errorf("hook %s is already registered", name)
	}

	r.hooks[name] = hook
	logger.V(1).Info("Registered hook", "name", name)
	return nil
}

// Resolve implements deferred.Resolver.
func (r *Registry) Resolve(_ context.Context, name string) (deferred.Hook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hook, ok := r.hooks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %s)", deferred.ErrHookNotFound, name, strings.Join(r.sortedNames(), ", "))
	}
	return hook, nil
}

// Names returns the registered hook names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
