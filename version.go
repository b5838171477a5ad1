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


package yarnlauncher

import (
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"
)

// VersionInfo describes the build of the running binary.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildDate    string `json:"buildDate"`
	GitCommit    string `json:"gitCommit,omitempty"`
	GitTag       string `json:"gitTag,omitempty"`
	GitTreeState string `json:"gitTreeState,omitempty"`
	GoVersion    string `json:"goVersion"`
	Compiler     string `json:"compiler"`
	Platform     string `json:"platform"`
}

// Set with -ldflags "-X github.com/kubeflow/yarn-launcher.<name>=<value>" at build time.
var (
	version      = "0.0.0"
	buildDate    = "1970-01-01T00:00:00Z"
	gitCommit    = ""
	gitTag       = ""
	gitTreeState = "" // clean or dirty
)

// GetVersion returns the build information of the running binary. The version is the git tag
// for a tagged clean tree, otherwise the base version with the short commit appended.
func GetVersion() VersionInfo {
	return VersionInfo{
		Version:      releaseVersion(),
		BuildDate:    buildDate,
		GitCommit:    gitCommit,
		GitTag:       gitTag,
		GitTreeState: gitTreeState,
		GoVersion:    runtime.Version(),
		Compiler:     runtime.Compiler,
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func releaseVersion() string {
	if gitCommit != "" && gitTag != "" && gitTreeState == "clean" {
		return gitTag
	}
	if len(gitCommit) < 7 {
		return version + "+unknown"
	}
	v := version + "+" + gitCommit[:7]
	if gitTreeState != "clean" {
		v += ".dirty"
	}
	return v
}

// PrintVersion writes the version to w, followed by the other build fields unless short is set.
func PrintVersion(w io.Writer, short bool) {
	v := GetVersion()
	if short {
		fmt.Fprintf(w, "YARN Launcher Version: %s\n", v.Version)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fields := [][2]string{
		{"YARN Launcher Version", v.Version},
		{"Build Date", v.BuildDate},
		{"Git Commit ID", v.GitCommit},
		{"Git Tag", v.GitTag},
		{"Git Tree State", v.GitTreeState},
		{"Go Version", v.GoVersion},
		{"Compiler", v.Compiler},
		{"Platform", v.Platform},
	}
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", field[0], field[1])
	}
	tw.Flush()
}
