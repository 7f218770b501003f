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

	"github.com/agentrelay/agentrelay/config"
)

// ValidateCmd checks every agent config under --agents-dir against the
// invariants from spec §3 without starting the server or contacting any LLM
// or tool source.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	configs, err := config.LoadDirectory(cli.AgentsDir)
	if err != nil {
		return fmt.Errorf("loading %q: %w", cli.AgentsDir, err)
	}

	if len(configs) == 0 {
		fmt.Printf("no agent configs found in %s\n", cli.AgentsDir)
		return nil
	}

	for _, cfg := range configs {
		fmt.Printf("  ok   %-20s (%s)\n", cfg.Path, cfg.SourceFile)
	}
	fmt.Printf("\n%d agent config(s) valid\n", len(configs))
	return nil
}
