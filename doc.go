// Package hector (module github.com/agentrelay/agentrelay) hosts a
// multi-tenant AI agent service: each agent is declared in its own JSON
// config file, loaded into an in-process registry, and exposed over HTTP
// for chat and A2A task execution.
//
// # Quick Start
//
// Install the CLI:
//
//	go install github.com/agentrelay/agentrelay/cmd/hector@latest
//
// Write one agent config file under an agents directory, e.g.
// ./agents/assistant.json:
//
//	{
//	  "id": "assistant",
//	  "path": "assistant",
//	  "name": "Assistant",
//	  "provider": "native",
//	  "model": "claude-sonnet-4-20250514",
//	  "systemPrompt": "You are a helpful assistant."
//	}
//
// Start the server:
//
//	hector serve --agents-dir ./agents --port 8080
//
// # Using as a Go Library
//
// Import specific packages:
//
//	import (
//	    "github.com/agentrelay/agentrelay/agent"
//	    "github.com/agentrelay/agentrelay/a2a"
//	    "github.com/agentrelay/agentrelay/config"
//	    "github.com/agentrelay/agentrelay/httpapi"
//	)
//
// # Key Features
//
//   - Declarative per-agent JSON configuration, no code required
//   - A2A-shaped asynchronous task execution (create/poll/stream/cancel)
//   - Multi-agent delegation via sub-agent tool calls
//   - MCP tool sources over stdio, SSE, and streamable HTTP
//   - Retrieval-augmented generation against pluggable vector backends
//   - Service- and agent-level discovery cards
//
// # Architecture
//
//	Client → HTTP transport (httpapi) → Agent Registry → Agent (agent)
//	                                   ↘ A2A Executor (a2a) → Agent
//
// # License
//
// Apache-2.0.
package hector
