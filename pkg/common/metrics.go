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

package common

// Deferred action metric names.
const (
	MetricDeferredActionExecutionCount = "deferred_action_execution_count"

	MetricDeferredActionFailureCount = "deferred_action_failure_count"

	MetricDeferredActionCacheHitCount = "deferred_action_cache_hit_count"

	MetricDeferredActionExecutionTimeSeconds = "deferred_action_execution_time_seconds"

	MetricDeferredActionHookInvocationCount = "deferred_action_hook_invocation_count"
)

// Launch command metric names.
const (
	MetricLaunchCommandStrategyCount = "launch_command_strategy_count"
)

// Metric label names.
const (
	MetricLabelAction = "action"

	MetricLabelPhase = "phase"

	MetricLabelStrategy = "strategy"
)
