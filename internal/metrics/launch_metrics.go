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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kubeflow/yarn-launcher/pkg/common"
	"github.com/kubeflow/yarn-launcher/pkg/util"
)

type LaunchCommandMetrics struct {
	strategyCount *prometheus.CounterVec
}

func NewLaunchCommandMetrics(prefix string) *LaunchCommandMetrics {
	return &LaunchCommandMetrics{
		strategyCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricNameLabel(prefix, common.MetricLaunchCommandStrategyCount),
				Help: "Total number of application master launch commands by launch strategy",
			},
			[]string{common.MetricLabelStrategy},
		),
	}
}

// RegisterWith registers the collector with registerer.
func (m *LaunchCommandMetrics) RegisterWith(registerer prometheus.Registerer) {
	if err := registerer.Register(m.strategyCount); err != nil {
		logger.Error(err, "Failed to register launch command metric", "name", common.MetricLaunchCommandStrategyCount)
	}
}

// ObserveStrategy records the strategy selected for a launch command.
func (m *LaunchCommandMetrics) ObserveStrategy(strategy string) {
	counter, err := m.strategyCount.GetMetricWith(prometheus.Labels{common.MetricLabelStrategy: strategy})
	if err != nil {
		logger.Error(err, "Failed to collect metric for launch command", "strategy", strategy)
		return
	}
	counter.Inc()
}
