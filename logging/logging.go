// Package logging configures the service's structured logger, grounded on
// the teacher's pkg/logger package: a New constructor built on log/slog, a
// ParseLevel helper for CLI/env wiring, and a filtering handler that, unless
// the level is debug, drops every record logged from outside this module so
// operators see the service's own logs first.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel converts a level name to a slog.Level. Unrecognized names fall
// back to Info rather than erroring, since this is most often fed operator
// configuration that we don't want to crash the process over.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a JSON slog.Logger writing to w (os.Stderr by default) at the
// given level, wrapped in a handler that, unless the level is debug, drops
// every record emitted by packages outside this module.
func New(levelName string, w *os.File) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(levelName)
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(&filteringHandler{handler: base, minLevel: level})
}

const modulePrefix = "github.com/agentrelay/agentrelay"

// filteringHandler suppresses logs from outside this module unless the
// configured level is Debug, so third-party library chatter (MCP clients,
// HTTP clients) doesn't drown out the service's own structured logs.
type filteringHandler struct {
	handler  slog.Handler
	minLevel slog.Level
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.minLevel <= slog.LevelDebug {
		return h.handler.Handle(ctx, record)
	}
	if h.isOwnPackage(record.PC) {
		return h.handler.Handle(ctx, record)
	}
	return nil
}

func (h *filteringHandler) isOwnPackage(pc uintptr) bool {
	if pc == 0 {
		return true
	}
	frames := callerFrames(pc)
	frame, _ := frames.Next()
	return strings.HasPrefix(frame.Function, modulePrefix)
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filteringHandler{handler: h.handler.WithAttrs(attrs), minLevel: h.minLevel}
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{handler: h.handler.WithGroup(name), minLevel: h.minLevel}
}
