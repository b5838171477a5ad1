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
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push replaces the metrics of job on the Pushgateway at url with everything gatherer collects.
func Push(ctx context.Context, url, job string, gatherer prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics of job %s to %s: %v", job, url, err)
	}
	logger.V(1).Info("Pushed metrics", "url", url, "job", job)
	return nil
}
