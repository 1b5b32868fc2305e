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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/accesstree/pkg/logging"
)

// --- Global Command Variables ---
var (
	logLevel string
	logDir   string
	logJSON  bool
	quiet    bool

	// replay flags
	watchScenario bool
	reloadPerSec  float64

	// inspect flags
	listenAddr    string
	scenarioPath  string
	otlpEndpoint  string
	traceToStdout bool

	rootCmd = &cobra.Command{
		Use:   "accesstree",
		Short: "Developer tooling for the accessibility tree core",
		Long: `accesstree replays captured tree-update scenarios against the
reconciler and serves a live tree over HTTP for inspection.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.New(logging.Config{
				Level:   logLevel,
				LogDir:  logDir,
				Service: cmd.Name(),
				JSON:    logJSON,
				Quiet:   quiet,
			})
			slog.SetDefault(logger)
		},
	}

	replayCmd = &cobra.Command{
		Use:   "replay [scenario.yaml]",
		Short: "Apply a YAML scenario of tree updates and print each change-set",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay, // Defined in cmd_replay.go
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Serve a live tree over HTTP for inspection",
		RunE:  runInspect, // Defined in cmd_inspect.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.LevelInfo,
		"minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"also write JSON logs to this directory")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"force JSON log output on stderr")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false,
		"suppress stderr logging")

	replayCmd.Flags().BoolVar(&watchScenario, "watch", false,
		"re-apply the scenario whenever the file changes")
	replayCmd.Flags().Float64Var(&reloadPerSec, "reload-rate", 2,
		"maximum scenario reloads per second under --watch")

	inspectCmd.Flags().StringVar(&listenAddr, "addr", ":12280",
		"listen address for the inspector API")
	inspectCmd.Flags().StringVar(&scenarioPath, "scenario", "",
		"optional scenario to seed the tree with")
	inspectCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "",
		"OTLP gRPC collector endpoint for trace export")
	inspectCmd.Flags().BoolVar(&traceToStdout, "trace-stdout", false,
		"print spans to stdout instead of exporting")

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)
}
