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
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kubeflow/yarn-launcher/internal/deferred"
)

// CommandHook runs an external command each time it is invoked.
type CommandHook struct {
	name string
	args []string
}

var _ deferred.Hook = &CommandHook{}

// NewCommandHook returns a hook running command with args.
func NewCommandHook(name string, command []string) (*CommandHook, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, fmt.Errorf("hook %s has an empty command", name)
	}
	return &CommandHook{
		name: name,
		args: append([]string(nil), command...),
	}, nil
}

// Invoke implements deferred.Hook.
func (h *CommandHook) Invoke(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, h.args[0], h.args[1:]...)
	logger.Info("Running hook command", "name", h.name, "command", h.args)
	output, err := cmd.Output()
	if err != nil {
		var errorMsg string
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			errorMsg = strings.TrimSpace(string(exitErr.Stderr))
		}
		if errorMsg != "" {
			return fmt.Errorf("failed to run hook command %s: %s", h.name, errorMsg)
		}
		return fmt.Errorf("failed to run hook command %s: %v", h.name, err)
	}
	logger.V(1).Info("Hook command finished", "name", h.name, "output", strings.TrimSpace(string(output)))
	return nil
}
