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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/accesstree/schema"
	"github.com/AleutianAI/accesstree/tree"
)

// runInspect serves a live tree over HTTP until interrupted. The tree
// starts empty unless --scenario seeds it; further updates arrive via
// POST /v1/tree/updates.
func runInspect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := initTelemetry(ctx)
	if err != nil {
		return err
	}
	defer tel.cleanup(context.Background())

	// Actions have no real provider behind the inspector; log them so
	// the developer sees what an assistive technology would request.
	handler := tree.ActionHandlerFunc(func(_ context.Context, request schema.ActionRequest) {
		slog.Info("action requested",
			"action", request.Action.String(), "target", request.Target.String())
	})
	tr := tree.NewDeferred(nil, handler)

	if scenarioPath != "" {
		if err := seedFromScenario(ctx, tr, scenarioPath); err != nil {
			return err
		}
	}

	ins := newInspector(tr, tel.registry)
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           ins.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("inspector listening", "addr", listenAddr, "tree_id", tr.ID())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("inspector server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down inspector")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// seedFromScenario applies every step of the scenario so the inspector
// starts with a populated tree.
func seedFromScenario(ctx context.Context, tr *tree.Tree, path string) error {
	scenario, err := LoadScenario(path)
	if err != nil {
		return err
	}
	for i, step := range scenario.Steps {
		update, err := step.TreeUpdate()
		if err != nil {
			return fmt.Errorf("seed step %d: %w", i, err)
		}
		if _, err := tr.Apply(ctx, update); err != nil {
			return fmt.Errorf("seed step %d (%s): %w", i, step.Label, err)
		}
	}
	slog.Info("seeded tree from scenario", "name", scenario.Name, "steps", len(scenario.Steps))
	return nil
}
