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

package yarn

import (
	"path"
	"strings"

	"github.com/kubeflow/yarn-launcher/pkg/common"
)

// LocalResource is an HDFS file localized into the application master container.
type LocalResource struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// ResourceSelector selects the HDFS resources localized for the application master.
// Entries matching the zip archive pattern are localized as archives, everything else as files.
type ResourceSelector struct {
	zipArchivePattern  string
	propertiesNames    []string
	propertiesSuffixes []string
	patterns           []string
}

// NewResourceSelector returns a selector with the application master defaults.
func NewResourceSelector() *ResourceSelector {
	return &ResourceSelector{
		zipArchivePattern:  common.DefaultLocalizerZipPattern,
		propertiesNames:    []string{common.DefaultLocalizerPropertiesName},
		propertiesSuffixes: append([]string(nil), common.DefaultLocalizerPropertiesSuffixes...),
		patterns:           append([]string(nil), common.DefaultAppmasterLocalizerPatterns...),
	}
}

func (s *ResourceSelector) SetZipArchivePattern(pattern string) {
	s.zipArchivePattern = pattern
}

func (s *ResourceSelector) SetPropertiesNames(names []string) {
	s.propertiesNames = append([]string(nil), names...)
}

func (s *ResourceSelector) SetPropertiesSuffixes(suffixes []string) {
	s.propertiesSuffixes = append([]string(nil), suffixes...)
}

// AddPatterns adds patterns to the default application master patterns.
func (s *ResourceSelector) AddPatterns(patterns ...string) {
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		s.patterns = append(s.patterns, pattern)
	}
}

// Select returns the resources under dir. Duplicate paths are returned once.
func (s *ResourceSelector) Select(dir string) []LocalResource {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	var candidates []string
	candidates = append(candidates, s.patterns...)
	for _, name := range s.propertiesNames {
		for _, suffix := range s.propertiesSuffixes {
			candidates = append(candidates, name+suffix)
		}
	}

	seen := make(map[string]bool, len(candidates))
	var resources []LocalResource
	for _, candidate := range candidates {
		p := dir + candidate
		if seen[p] {
			continue
		}
		seen[p] = true
		resources = append(resources, LocalResource{Path: p, Type: s.resourceType(candidate)})
	}
	return resources
}

func (s *ResourceSelector) resourceType(candidate string) string {
	if s.zipArchivePattern == "" {
		return common.LocalResourceTypeFile
	}
	if matched, err := path.Match(s.zipArchivePattern, candidate); err == nil && matched {
		return common.LocalResourceTypeArchive
	}
	return common.LocalResourceTypeFile
}
