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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kubeflow/yarn-launcher/pkg/common"
)

// ErrConfigurationIncomplete is returned when no launch strategy matches a spec.
var ErrConfigurationIncomplete = errors.New("configuration incomplete: no launch strategy matched")

// Spec includes the information needed to build an application master launch command.
type Spec struct {
	// ArtifactFile is the jar or zip file started as the application master.
	ArtifactFile string
	// RunnerClass is the fully-qualified class name used instead of the jar main class.
	RunnerClass string
	// Arguments are rendered as key=value tokens.
	Arguments map[string]string
	// Options are rendered as-is, in order.
	Options []string
	// Stdout and Stderr are the redirection targets. Empty values use the log directory defaults.
	Stdout string
	Stderr string
}

// Command is an ordered process invocation.
type Command []string

// String renders the command as a single line the way the container launcher executes it.
func (c Command) String() string {
	return strings.Join(c, " ")
}

type commandOptionFunc func(Spec, Strategy) []string

// BuildCommand builds the launch command for spec. It does not fail: when no strategy matches,
// the command has no primary directive and callers should use Validate or BuildMasterCommand.
func BuildCommand(spec Spec) Command {
	optionFuncs := []commandOptionFunc{
		directiveOption,
		argumentsOption,
		optionsOption,
		stdoutOption,
		stderrOption,
	}

	strategy := Classify(spec)
	var command Command
	for _, optionFunc := range optionFuncs {
		command = append(command, optionFunc(spec, strategy)...)
	}
	return command
}

// Validate returns an error wrapping ErrConfigurationIncomplete if spec matches no strategy.
func Validate(spec Spec) error {
	if Classify(spec) == StrategyUnresolved {
		return fmt.Errorf("%w (appmaster file %q, runner class %q)", ErrConfigurationIncomplete, spec.ArtifactFile, spec.RunnerClass)
	}
	return nil
}

// HasDirective reports whether the command built for spec starts the application master.
func HasDirective(spec Spec) bool {
	return Classify(spec) != StrategyUnresolved
}

// BuildMasterCommand validates spec and builds its launch command.
func BuildMasterCommand(spec Spec) (Command, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	strategy := Classify(spec)
	command := BuildCommand(spec)
	logger.V(1).Info("Built application master command", "strategy", strategy, "command", command)
	return command, nil
}

func directiveOption(spec Spec, strategy Strategy) []string {
	switch strategy {
	case StrategyJar:
		return []string{common.JarOption, spec.ArtifactFile}
	case StrategyRunner:
		return []string{strings.TrimSpace(spec.RunnerClass)}
	case StrategyBootstrap:
		return []string{common.BootstrapLauncherClass}
	}
	return nil
}

// argumentsOption renders arguments sorted by key.
func argumentsOption(spec Spec, _ Strategy) []string {
	if len(spec.Arguments) == 0 {
		return nil
	}
	keys := make([]string, 0, len(spec.Arguments))
	for key := range spec.Arguments {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	args := make([]string, 0, len(keys))
	for _, key := range keys {
		args = append(args, fmt.Sprintf("%s=%s", key, spec.Arguments[key]))
	}
	return args
}

func optionsOption(spec Spec, _ Strategy) []string {
	return slices.Clone(spec.Options)
}

func stdoutOption(spec Spec, _ Strategy) []string {
	target := spec.Stdout
	if target == "" {
		target = common.DefaultAppmasterStdout
	}
	return []string{common.StdoutRedirectPrefix + target}
}

func stderrOption(spec Spec, _ Strategy) []string {
	target := spec.Stderr
	if target == "" {
		target = common.DefaultAppmasterStderr
	}
	return []string{common.StderrRedirectPrefix + target}
}
