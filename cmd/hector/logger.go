// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agentrelay/agentrelay/logging"
)

// LogFileEnvVar is the environment variable checked when --log-file is unset.
const LogFileEnvVar = "LOG_FILE"

// LogLevelEnvVar is the environment variable checked when --log-level is unset.
const LogLevelEnvVar = "LOG_LEVEL"

// initLogger builds the process-wide logger from CLI flags, falling back to
// environment variables and finally defaults (CLI flag > env var > default).
// The other CLI inputs (agents dir, port, base URL) are read from flags only.
// The returned cleanup closes the log file, if one was opened; it is nil for
// stderr output.
func initLogger(cliLevel, cliFile string) (*slog.Logger, func(), error) {
	level := cliLevel
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	file := cliFile
	if file == "" {
		file = os.Getenv(LogFileEnvVar)
	}

	var out *os.File
	var cleanup func()
	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %q: %w", file, err)
		}
		out = f
		cleanup = func() { f.Close() }
	} else {
		out = os.Stderr
	}

	log := logging.New(level, out)
	slog.SetDefault(log)
	return log, cleanup, nil
}
