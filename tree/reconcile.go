// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tree

import (
	"fmt"
	"slices"

	"github.com/AleutianAI/accesstree/schema"
)

// reconcile applies one partial update to a prior snapshot and returns the
// next snapshot plus the change-set between the two. It never mutates
// prev; on error the caller keeps prev authoritative and nothing of the
// attempted apply is observable.
//
// The algorithm is a single overlay followed by a single reachability
// sweep from the (possibly new) root:
//
//  1. Overlay every (id, record) pair onto the prior mapping, later pairs
//     winning over earlier ones. Pairs structurally identical to the
//     current record keep the old pointer, so restating a node verbatim
//     reports no change.
//  2. Sweep from the root, computing each live node's parent and sibling
//     index in the same pass. Anything not reached is dropped — this one
//     pass implements both update and implicit removal. The sweep is
//     linear in live-node count.
//  3. Validate: root record present, no dangling children, no node
//     reachable twice, new nodes attached, focus target live.
func reconcile(prev *Snapshot, update schema.TreeUpdate) (*Snapshot, *ChangeSet, error) {
	records := make(map[schema.NodeID]*schema.Node, len(prev.nodes)+len(update.Nodes))
	for id, st := range prev.nodes {
		records[id] = st.data
	}
	for _, entry := range update.Nodes {
		if old, ok := records[entry.ID]; ok && old.Equal(entry.Node) {
			continue // keep the shared record; no update to report
		}
		records[entry.ID] = entry.Node
	}

	data := prev.data
	if update.Tree != nil {
		data = *update.Tree
	}
	root := data.Root
	if !root.IsValid() {
		return nil, nil, ErrNoRoot
	}
	if _, ok := records[root]; !ok {
		return nil, nil, fmt.Errorf("root %s: %w", root, ErrRootMissing)
	}

	next := &Snapshot{
		nodes: make(map[schema.NodeID]*nodeState, len(records)),
		data:  data,
	}

	type frame struct {
		id     schema.NodeID
		parent schema.NodeID
		index  int
	}
	stack := []frame{{id: root, parent: schema.InvalidNodeID}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := next.nodes[f.id]; seen {
			return nil, nil, fmt.Errorf("node %s: %w", f.id, ErrCycle)
		}
		rec := records[f.id]

		// Reuse the prior state value when nothing about the node moved;
		// downstream change detection then reduces to pointer compares.
		if pst, ok := prev.nodes[f.id]; ok &&
			pst.data == rec && pst.parent == f.parent && pst.index == f.index {
			next.nodes[f.id] = pst
		} else {
			next.nodes[f.id] = &nodeState{data: rec, parent: f.parent, index: f.index}
		}

		for i, child := range rec.Children {
			if _, ok := records[child]; !ok {
				return nil, nil, fmt.Errorf("node %s child %s: %w", f.id, child, ErrDanglingChild)
			}
			stack = append(stack, frame{id: child, parent: f.id, index: i})
		}
	}

	// A brand-new node the sweep never reached means the producer forgot
	// to attach it. Pre-existing nodes that became unreachable are the
	// implicit-removal case and have already been dropped.
	for _, entry := range update.Nodes {
		if _, live := next.nodes[entry.ID]; !live {
			if _, existed := prev.nodes[entry.ID]; !existed {
				return nil, nil, fmt.Errorf("node %s: %w", entry.ID, ErrUnreachableNode)
			}
		}
	}

	focus := prev.focus
	if update.Focus != nil {
		focus = *update.Focus
	}
	if focus.IsValid() {
		if _, ok := next.nodes[focus]; !ok {
			return nil, nil, fmt.Errorf("focus %s: %w", focus, ErrInvalidFocus)
		}
	}
	next.focus = focus

	return next, diffSnapshots(prev, next), nil
}

// diffSnapshots computes the change-set between two validated snapshots:
// added = new − old, removed = old − new, updated = intersection with a
// different record pointer. ID slices are sorted for determinism.
func diffSnapshots(prev, next *Snapshot) *ChangeSet {
	changes := &ChangeSet{}

	for id, st := range next.nodes {
		pst, ok := prev.nodes[id]
		switch {
		case !ok:
			changes.Added = append(changes.Added, id)
		case pst.data != st.data:
			changes.Updated = append(changes.Updated, id)
			if changes.UpdatedOld == nil {
				changes.UpdatedOld = make(map[schema.NodeID]*schema.Node)
			}
			changes.UpdatedOld[id] = pst.data
		}
	}
	for id, pst := range prev.nodes {
		if _, ok := next.nodes[id]; !ok {
			changes.Removed = append(changes.Removed, id)
			if changes.RemovedOld == nil {
				changes.RemovedOld = make(map[schema.NodeID]*schema.Node)
			}
			changes.RemovedOld[id] = pst.data
		}
	}

	slices.Sort(changes.Added)
	slices.Sort(changes.Updated)
	slices.Sort(changes.Removed)

	if prev.focus != next.focus {
		changes.FocusChange = &FocusChange{Old: prev.focus, New: next.focus}
	}
	return changes
}
