// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/accesstree/tree"
)

// runReplay applies a scenario's steps in order, printing each resulting
// change-set as one JSON object per line on stdout. Under --watch it
// keeps running and replays the whole scenario each time the file
// changes.
func runReplay(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	if err := replayFile(ctx, path, os.Stdout); err != nil {
		return err
	}
	if !watchScenario {
		return nil
	}
	return watchAndReplay(ctx, path)
}

// replayFile loads the scenario and runs every step against a fresh
// tree. Output is a JSON line per step so the stream is greppable and
// jq-able.
func replayFile(ctx context.Context, path string, out *os.File) error {
	scenario, err := LoadScenario(path)
	if err != nil {
		return err
	}
	slog.Info("replaying scenario", "name", scenario.Name, "steps", len(scenario.Steps))

	tr := tree.NewDeferred(nil, nil)
	encoder := json.NewEncoder(out)

	for i, step := range scenario.Steps {
		update, err := step.TreeUpdate()
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		changes, err := tr.Apply(ctx, update)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Label, err)
		}

		snap, err := tr.Snapshot(ctx)
		if err != nil {
			return err
		}
		line := replayLine{
			Step:      i,
			Label:     step.Label,
			Changes:   changes,
			LiveNodes: snap.Len(),
		}
		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("write change-set: %w", err)
		}
	}
	return nil
}

type replayLine struct {
	Step      int             `json:"step"`
	Label     string          `json:"label,omitempty"`
	Changes   *tree.ChangeSet `json:"changes"`
	LiveNodes int             `json:"liveNodes"`
}

// watchAndReplay blocks, re-running the scenario on every write to the
// file. Editors save in bursts, so reloads go through a rate limiter
// instead of firing per event.
func watchAndReplay(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors typically replace the file, which
	// drops a watch set on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := rate.NewLimiter(rate.Limit(reloadPerSec), 1)
	target := filepath.Clean(path)
	slog.Info("watching scenario", "path", target, "reloads_per_second", reloadPerSec)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := replayFile(ctx, path, os.Stdout); err != nil {
				// Keep watching: a half-saved file parses badly once
				// and fine on the next write.
				slog.Warn("replay failed", "error", err)
			}
		}
	}
}
