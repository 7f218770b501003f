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

// Command hector hosts the multi-tenant agent HTTP service.
//
// Usage:
//
//	hector serve --agents-dir ./agents --port 8080
//	hector validate --agents-dir ./agents
//	hector schema
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	hector "github.com/agentrelay/agentrelay"
)

// CLI is kong's root command set. Config, LogLevel and LogFile are global
// (spec's configuration inputs: listen port, public base URL, agent config
// directory, log level), available to every subcommand.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the agent hosting HTTP server."`
	Validate ValidateCmd `cmd:"" help:"Validate an agent config directory."`
	Schema   SchemaCmd   `cmd:"" help:"Generate JSON Schema for an agent config file."`

	AgentsDir string `name:"agents-dir" help:"Directory of per-agent JSON config files." default:"./agents" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)."`
	LogFile   string `name:"log-file" help:"Log file path (empty = stderr)."`
}

// VersionCmd prints build version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(hector.GetVersion().String())
	return nil
}

// versionString is the short form used in discovery cards (spec §4.6).
func versionString() string {
	return hector.Version
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("hector"),
		kong.Description("Multi-tenant agent hosting service"),
		kong.UsageOnError(),
	)

	_, cleanup, err := initLogger(cli.LogLevel, cli.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
