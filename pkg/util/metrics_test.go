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

package util_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/yarn-launcher/pkg/util"
)

var _ = Describe("CreateValidMetricNameLabel", func() {
	It("Should keep valid names untouched", func() {
		Expect(util.CreateValidMetricNameLabel("yarn_", "deferred_action_count")).To(Equal("yarn_deferred_action_count"))
	})

	It("Should replace invalid characters with underscores", func() {
		Expect(util.CreateValidMetricNameLabel("my-prefix.", "app/name")).To(Equal("my_prefix_app_name"))
	})

	It("Should not start with a digit", func() {
		Expect(util.CreateValidMetricNameLabel("", "1st")).To(Equal("_1st"))
	})
})
