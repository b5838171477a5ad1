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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/yarn-launcher/pkg/common"
	"github.com/kubeflow/yarn-launcher/pkg/util"
)

var (
	logger = log.Log.WithName("")
)

type DeferredActionMetrics struct {
	prefix string

	executionCount      *prometheus.CounterVec
	failureCount        *prometheus.CounterVec
	cacheHitCount       *prometheus.CounterVec
	hookInvocationCount *prometheus.CounterVec

	executionTimeSeconds *prometheus.HistogramVec
}

func NewDeferredActionMetrics(prefix string, buckets []float64) *DeferredActionMetrics {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	actionLabels := []string{common.MetricLabelAction}

	return &DeferredActionMetrics{
		prefix: prefix,

		executionCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricDeferredActionExecutionCount),
				Help: "Total number of deferred action executions",
			},
			actionLabels,
		),
		failureCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricDeferredActionFailureCount),
				Help: "Total number of failed deferred action executions",
			},
			actionLabels,
		),
		cacheHitCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricDeferredActionCacheHitCount),
				Help: "Total number of deferred action results served from cache",
			},
			actionLabels,
		),
		hookInvocationCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricDeferredActionHookInvocationCount),
				Help: "Total number of pre and post hook invocations",
			},
			[]string{common.MetricLabelAction, common.MetricLabelPhase},
		),
		executionTimeSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    util.CreateValidMetricNameLabel(prefix, common.MetricDeferredActionExecutionTimeSeconds),
				Help:    "Execution time of deferred actions including hooks",
				Buckets: buckets,
			},
			actionLabels,
		),
	}
}

// RegisterWith registers the collectors with registerer.
func (m *DeferredActionMetrics) RegisterWith(registerer prometheus.Registerer) {
	for name, collector := range m.collectors() {
		if err := registerer.Register(collector); err != nil {
			logger.Error(err, "Failed to register deferred action metric", "name", name)
		}
	}
}

func (m *DeferredActionMetrics) collectors() map[string]prometheus.Collector {
	return map[string]prometheus.Collector{
		common.MetricDeferredActionExecutionCount:       m.executionCount,
		common.MetricDeferredActionFailureCount:         m.failureCount,
		common.MetricDeferredActionCacheHitCount:        m.cacheHitCount,
		common.MetricDeferredActionHookInvocationCount:  m.hookInvocationCount,
		common.MetricDeferredActionExecutionTimeSeconds: m.executionTimeSeconds,
	}
}

// ObserveExecution records a finished first execution of action.
func (m *DeferredActionMetrics) ObserveExecution(action string, duration time.Duration, err error) {
	labels := prometheus.Labels{common.MetricLabelAction: action}
	if counter, e := m.executionCount.GetMetricWith(labels); e != nil {
		logger.Error(e, "Failed to collect metric for deferred action", "name", action, "metric", common.MetricDeferredActionExecutionCount)
	} else {
		counter.Inc()
	}

	if err != nil {
		if counter, e := m.failureCount.GetMetricWith(labels); e != nil {
			logger.Error(e, "Failed to collect metric for deferred action", "name", action, "metric", common.MetricDeferredActionFailureCount)
		} else {
			counter.Inc()
		}
	}

	if histogram, e := m.executionTimeSeconds.GetMetricWith(labels); e != nil {
		logger.Error(e, "Failed to collect metric for deferred action", "name", action, "metric", common.MetricDeferredActionExecutionTimeSeconds)
	} else {
		histogram.Observe(duration.Seconds())
	}
}

// ObserveCacheHit records a call served from the cached result.
func (m *DeferredActionMetrics) ObserveCacheHit(action string) {
	counter, err := m.cacheHitCount.GetMetricWith(prometheus.Labels{common.MetricLabelAction: action})
	if err != nil {
		logger.Error(err, "Failed to collect metric for deferred action", "name", action, "metric", common.MetricDeferredActionCacheHitCount)
		return
	}
	counter.Inc()
}

// ObserveHook records a hook invocation in the given phase.
func (m *DeferredActionMetrics) ObserveHook(action string, phase string) {
	counter, err := m.hookInvocationCount.GetMetricWith(prometheus.Labels{
		common.MetricLabelAction: action,
		common.MetricLabelPhase:  phase,
	})
	if err != nil {
		logger.Error(err, "Failed to collect metric for deferred action", "name", action, "metric", common.MetricDeferredActionHookInvocationCount)
		return
	}
	counter.Inc()
}
