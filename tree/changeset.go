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
	"github.com/AleutianAI/accesstree/schema"
)

// FocusChange records a focus move between two snapshots. Either side may
// be InvalidNodeID, meaning "nothing in-tree had focus".
type FocusChange struct {
	Old schema.NodeID `json:"old"`
	New schema.NodeID `json:"new"`
}

// ChangeSet is the minimal description of what one Apply changed: which
// node IDs were added, updated, and removed, and whether focus moved. It
// is pure data with no side effects; platform translators consume it to
// decide which native notifications to fire.
//
// CRITICAL ordering contract: a ChangeSet must only be consumed after
// Apply has returned — never from inside any lock the core holds. Raising
// a native notification can synchronously trigger a re-entrant read on
// the same thread; consuming the ChangeSet outside the lock is what makes
// that re-entrancy deadlock-free. Apply already guarantees this by
// publishing the snapshot and releasing its lock before returning.
type ChangeSet struct {
	// Added, Updated, and Removed list affected node IDs in ascending
	// order, so repeated runs over the same updates produce identical
	// change-sets.
	Added   []schema.NodeID `json:"added,omitempty"`
	Updated []schema.NodeID `json:"updated,omitempty"`
	Removed []schema.NodeID `json:"removed,omitempty"`

	// UpdatedOld holds the prior record of every updated node, for
	// translators that diff old against new to pick property-change
	// notifications.
	UpdatedOld map[schema.NodeID]*schema.Node `json:"-"`

	// RemovedOld holds the final record of every removed node.
	RemovedOld map[schema.NodeID]*schema.Node `json:"-"`

	// FocusChange is non-nil when the focus moved, including moves to or
	// from "no in-tree focus".
	FocusChange *FocusChange `json:"focusChange,omitempty"`
}

// Empty reports whether the apply changed nothing: no node-set changes
// and no focus move. Applying an update structurally identical to the
// current snapshot yields an empty ChangeSet.
func (c *ChangeSet) Empty() bool {
	return len(c.Added) == 0 &&
		len(c.Updated) == 0 &&
		len(c.Removed) == 0 &&
		c.FocusChange == nil
}

// ChangeHandler receives an exploded view of a ChangeSet, one callback
// per change, resolved against the snapshot the changes produced. It is
// a convenience for translators that prefer callbacks over set
// arithmetic.
type ChangeHandler interface {
	// NodeAdded is called for each node that entered the tree.
	NodeAdded(id schema.NodeID, node *schema.Node)

	// NodeUpdated is called for each node whose record was replaced.
	NodeUpdated(id schema.NodeID, oldNode, newNode *schema.Node)

	// FocusMoved is called at most once, after node callbacks for added
	// and updated nodes, with InvalidNodeID for either side meaning "no
	// in-tree focus".
	FocusMoved(oldID, newID schema.NodeID)

	// NodeRemoved is called last, for each node dropped from the tree,
	// with the record it had before removal.
	NodeRemoved(id schema.NodeID, oldNode *schema.Node)
}

// ProcessChanges walks a ChangeSet against the snapshot that produced it,
// invoking the handler in a deterministic order: additions, updates,
// focus, removals.
//
// Call this only with a snapshot/change-set pair returned by the same
// Apply, and only after Apply has returned (see the ChangeSet ordering
// contract).
func ProcessChanges(snap *Snapshot, changes *ChangeSet, handler ChangeHandler) {
	for _, id := range changes.Added {
		if node, ok := snap.Node(id); ok {
			handler.NodeAdded(id, node)
		}
	}
	for _, id := range changes.Updated {
		newNode, ok := snap.Node(id)
		if !ok {
			continue
		}
		handler.NodeUpdated(id, changes.UpdatedOld[id], newNode)
	}
	if fc := changes.FocusChange; fc != nil {
		handler.FocusMoved(fc.Old, fc.New)
	}
	for _, id := range changes.Removed {
		handler.NodeRemoved(id, changes.RemovedOld[id])
	}
}
