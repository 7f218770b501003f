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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentrelay/agentrelay/a2a"
	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/discovery"
	"github.com/agentrelay/agentrelay/httpapi"
)

// ServeCmd starts the HTTP server exposing every agent found under
// --agents-dir (spec §6).
type ServeCmd struct {
	Port        int    `help:"Port to listen on." default:"8080"`
	BaseURL     string `name:"base-url" help:"Public base URL advertised in discovery cards." default:"http://localhost:8080"`
	ServiceName string `name:"service-name" help:"Service name advertised in the discovery card." default:"agentrelay"`
	Description string `help:"Service description advertised in the discovery card."`

	// TaskRetention bounds how long completed/failed A2A tasks are kept
	// before the background sweep reaps them (spec §4.5).
	TaskRetention time.Duration `name:"task-retention" help:"How long to retain finished A2A tasks." default:"1h"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	registry := agent.NewAgentRegistry()
	if err := registry.LoadDirectory(cli.AgentsDir); err != nil {
		return fmt.Errorf("loading agent configs from %q: %w", cli.AgentsDir, err)
	}
	defer registry.ShutdownAll()

	configs := registry.List()
	slog.Info("agents loaded", "count", len(configs), "dir", cli.AgentsDir)

	executor := a2a.NewExecutor(registry)
	go c.reapLoop(ctx, executor)

	gen := discovery.NewGenerator(registry, c.ServiceName, c.Description, versionString(), c.BaseURL)
	srv := httpapi.NewServer(registry, executor, gen, slog.Default())

	addr := fmt.Sprintf(":%d", c.Port)
	httpServer := &http.Server{Addr: addr, Handler: srv.Router()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr, "baseUrl", c.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// reapLoop periodically clears finished A2A tasks older than the configured
// retention window, so a long-running server doesn't accumulate task
// history forever (spec §4.5 leaves retention to the host).
func (c *ServeCmd) reapLoop(ctx context.Context, executor *a2a.Executor) {
	retention := c.TaskRetention
	if retention <= 0 {
		retention = a2a.DefaultTaskRetention
	}
	ticker := time.NewTicker(retention / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := executor.CleanupOldTasks(retention); n > 0 {
				slog.Debug("reaped finished tasks", "count", n)
			}
		}
	}
}
