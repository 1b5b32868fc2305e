// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging builds the structured loggers used by the accesstree
// CLI and the inspector service.
//
// Output goes to stderr so piped tree dumps on stdout stay clean. The
// format follows the destination: human-readable text on a terminal,
// JSON when stderr is redirected or when a machine-parseable stream is
// requested explicitly. An optional log directory adds a JSON file
// alongside stderr.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelDebug,
//	    Service: "inspect",
//	})
//	logger.Info("listening", "addr", addr)
//
// The returned logger is a plain *slog.Logger; pass it to
// tree.WithLogger and friends directly.
//
// # Thread Safety
//
// slog handlers are safe for concurrent use; loggers built here can be
// shared freely across goroutines.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
)

// Level names accepted by Config.Level and the --log-level flag.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// ParseLevel maps a level name to its slog.Level. Unknown names fall
// back to Info so a typo in a flag degrades noisily rather than
// silencing logs.
func ParseLevel(name string) slog.Level {
	switch name {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures logger construction. The zero value logs Info and
// above to stderr, picking text or JSON by terminal detection.
type Config struct {
	// Level is the minimum level name (see ParseLevel).
	Level string

	// Service is attached to every record as the "service" attribute,
	// so inspector and replay logs stay distinguishable when
	// aggregated.
	Service string

	// JSON forces JSON output on stderr. When false, JSON is still
	// used if stderr is not a terminal.
	JSON bool

	// Quiet drops the stderr destination. Combined with LogDir it
	// gives file-only logging for daemonized use.
	Quiet bool

	// LogDir, when set, adds a JSON log file named
	// {service}_{YYYY-MM-DD}.log in the directory, creating the
	// directory as needed. Supports a leading ~.
	LogDir string
}

// New builds a logger from the config. Construction never fails: if the
// log file cannot be opened the file destination is skipped and the
// condition is reported on the logger itself.
func New(config Config) *slog.Logger {
	logger, closer := newWithCloser(config, os.Stderr)
	// The file handle (if any) lives for the process; leak it
	// intentionally rather than making every caller manage a closer.
	_ = closer
	return logger
}

// newWithCloser is the testable core: destination writers are explicit
// and the optional file handle is returned for cleanup.
func newWithCloser(config Config, stderr *os.File) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(config.Level)}

	var handlers []slog.Handler
	if !config.Quiet {
		handlers = append(handlers, stderrHandler(config, stderr, opts))
	}

	var closer io.Closer
	var fileErr error
	if config.LogDir != "" {
		file, err := openLogFile(config)
		if err == nil {
			closer = file
			handlers = append(handlers, slog.NewJSONHandler(file, opts))
		} else {
			fileErr = err
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}
	logger := slog.New(handler)
	if fileErr != nil {
		logger.Warn("file logging disabled", "error", fileErr)
	}
	return logger, closer
}

func stderrHandler(config Config, stderr *os.File, opts *slog.HandlerOptions) slog.Handler {
	if config.JSON || !isatty.IsTerminal(stderr.Fd()) {
		return slog.NewJSONHandler(stderr, opts)
	}
	return slog.NewTextHandler(stderr, opts)
}

func openLogFile(config Config) (*os.File, error) {
	dir := expandPath(config.LogDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	service := config.Service
	if service == "" {
		service = "accesstree"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// multiHandler fans one record out to several handlers, so stderr can
// stay human-readable while the file gets JSON.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
