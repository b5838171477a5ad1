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

// Environment variables.
const (
	EnvJavaHome = "JAVA_HOME"

	EnvHadoopConfDir = "HADOOP_CONF_DIR"

	// EnvPrefix is the prefix of environment variables bound to yarnctl flags.
	EnvPrefix = "YARN_LAUNCHER"
)

// Application master launch.
const (
	// JavaExecutable is the JVM launcher path as expanded by the NodeManager.
	JavaExecutable = "$JAVA_HOME/bin/java"

	// JarOption tells the JVM to run the main class of the given jar.
	JarOption = "-jar"

	// BootstrapLauncherClass is the runner class used for self-extracting zip artifacts.
	BootstrapLauncherClass = "org.springframework.boot.loader.PropertiesLauncher"

	// LogDirPlaceholder is expanded by the NodeManager to the container log directory.
	LogDirPlaceholder = "<LOG_DIR>"

	DefaultAppmasterStdout = LogDirPlaceholder + "/Appmaster.stdout"

	DefaultAppmasterStderr = LogDirPlaceholder + "/Appmaster.stderr"

	StdoutRedirectPrefix = "1>"

	StderrRedirectPrefix = "2>"

	JarFileSuffix = ".jar"

	ZipFileSuffix = ".zip"
)

// YARN configuration properties.
const (
	FsDefaultFS = "fs.defaultFS"

	YarnResourceManagerAddress = "yarn.resourcemanager.address"

	YarnResourceManagerSchedulerAddress = "yarn.resourcemanager.scheduler.address"
)

// YARN client defaults.
const (
	DefaultFsURI = "hdfs://localhost:8020"

	DefaultResourceManagerAddress = "localhost:8032"

	DefaultSchedulerAddress = "localhost:8030"

	DefaultStagingDirectory = "/"

	DefaultAppType = "YARN"

	DefaultQueue = "default"

	DefaultPriority = 0

	DefaultMemory = "64M"

	DefaultVirtualCores = 1

	DefaultClasspathDelimiter = ":"
)

// Local resource selection defaults for the application master.
const (
	DefaultLocalizerZipPattern = "*.zip"

	DefaultLocalizerPropertiesName = "application"
)

var (
	DefaultLocalizerPropertiesSuffixes = []string{".properties", ".yml"}

	DefaultAppmasterLocalizerPatterns = []string{"*appmaster*jar", "*appmaster*zip"}
)

// Local resource types understood by the NodeManager.
const (
	LocalResourceTypeFile = "FILE"

	LocalResourceTypeArchive = "ARCHIVE"
)

// Hook phases.
const (
	HookPhasePre = "pre"

	HookPhasePost = "post"
)

// Supported script database drivers.
const (
	DriverMySQL = "mysql"

	DriverSQLite = "sqlite"
)
