// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command accesstree is the developer tooling for the accessibility tree
// core: it replays captured update scenarios and serves a live tree over
// HTTP for inspection.
//
// # Usage
//
//	# Apply a scenario and print each change-set
//	accesstree replay scenario.yaml
//
//	# Re-apply the scenario whenever the file changes
//	accesstree replay scenario.yaml --watch
//
//	# Serve a tree for inspection on :12280
//	accesstree inspect --scenario scenario.yaml
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
