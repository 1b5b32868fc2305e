// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tree maintains a shared, concurrently-readable snapshot of an
// application's accessibility tree and reconciles partial updates into it.
//
// # Ownership Model
//
// The tree stores pointers to schema.Node records but does NOT own them:
//   - Records MUST NOT be mutated after being handed to Apply()
//   - The tree does NOT copy records (structural sharing between snapshots)
//   - Successive snapshots share every record the update left untouched
//
// # Thread Safety
//
// A Tree is safe for concurrent use: any number of goroutines may read
// while one applies updates. A Snapshot obtained from a Tree is immutable;
// a reader may keep using it indefinitely after the Tree has moved on to
// newer snapshots, with no further synchronization.
//
// # Lifecycle
//
// A typical tree lifecycle:
//  1. Create with New() from an initial update carrying the root, or with
//     NewDeferred() to build the initial tree lazily on first read
//  2. Apply() incremental updates; each returns a ChangeSet
//  3. Hand each ChangeSet to the platform translator — after Apply has
//     returned, never while it runs (see ChangeSet docs)
//  4. Read through Snapshot() at any time, from any goroutine
//
// # Error Semantics
//
// Every error below is a contract violation by the update's producer, not
// a transient condition. A rejected Apply leaves the previous snapshot
// fully authoritative; callers should treat rejection as a defect to fix,
// not an outcome to retry. Stale action targets are deliberately NOT an
// error — see Tree.RequestAction.
package tree

import "errors"

// Sentinel errors for reconciliation.
var (
	// ErrNoRoot is returned when an update is applied to an empty tree
	// without carrying tree-level data naming a root.
	ErrNoRoot = errors.New("tree has no root")

	// ErrRootMissing is returned when the root ID has no node record after
	// the update is overlaid.
	ErrRootMissing = errors.New("root node record missing")

	// ErrDanglingChild is returned when a reachable node lists a child ID
	// for which no record exists after the update is overlaid.
	ErrDanglingChild = errors.New("dangling child reference")

	// ErrCycle is returned when child lists make a node reachable through
	// two different paths — either a genuine cycle or a node claimed by
	// two parents. The structure must be a tree, not a DAG.
	ErrCycle = errors.New("node reachable through multiple paths")

	// ErrUnreachableNode is returned when an update introduces a new node
	// that is not reachable from the root once the update is applied.
	// Updates to pre-existing nodes that simultaneously become unreachable
	// are NOT an error; removal wins and the record is dropped.
	ErrUnreachableNode = errors.New("new node unreachable from root")

	// ErrInvalidFocus is returned when the focus ID — newly supplied, or
	// carried over from the previous snapshot — does not survive the
	// update's reachability pass.
	ErrInvalidFocus = errors.New("focus target not in tree")
)
