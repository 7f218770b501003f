// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/agentrelay/agentrelay/config"
)

// SchemaCmd generates the JSON Schema for one agent config file, the shape
// every file under --agents-dir must satisfy. A config-builder UI can use
// this to drive a form the way the teacher's web config builder did.
type SchemaCmd struct {
	Compact bool `short:"c" help:"Compact JSON output (no indentation)."`
}

func (c *SchemaCmd) Run(cli *CLI) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.AgentConfig{})
	schema.ID = "https://agentrelay.dev/schemas/agent.json"
	schema.Title = "Agent Configuration Schema"
	schema.Description = "Configuration schema for one agent's JSON config file"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	schema.Examples = []interface{}{
		map[string]interface{}{
			"id":           "assistant",
			"path":         "assistant",
			"name":         "Assistant",
			"provider":     "native",
			"model":        "claude-sonnet-4-20250514",
			"systemPrompt": "You are a helpful assistant.",
			"temperature":  0.7,
			"maxTokens":    4096,
			"providerConfig": map[string]interface{}{
				"apiKey": "${ANTHROPIC_API_KEY}",
			},
		},
	}

	encoder := json.NewEncoder(os.Stdout)
	if !c.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(schema); err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	return nil
}
