// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors for shallow update validation. All of them indicate a
// contract violation by the provider, not a recoverable runtime condition.
var (
	// ErrZeroID is returned when an update contains the invalid zero ID,
	// either as an entry ID or inside a child list.
	ErrZeroID = errors.New("zero node id")

	// ErrDuplicateID is returned when the same ID appears in more than one
	// entry of a single update.
	ErrDuplicateID = errors.New("duplicate node id in update")

	// ErrDuplicateChild is returned when a node lists the same child ID
	// twice.
	ErrDuplicateChild = errors.New("duplicate child id")

	// ErrNilNode is returned when an update entry carries no record.
	ErrNilNode = errors.New("nil node record")

	// ErrInvalidRole is returned when a record carries a role outside the
	// closed enumeration.
	ErrInvalidRole = errors.New("invalid role")
)

// Validate checks the update for shallow well-formedness: non-zero IDs, no
// duplicate entry IDs, no nil records, and per-node child list sanity.
//
// Structural properties — that children resolve, that the tree stays
// acyclic, that the focus target exists — are validated by the reconciler,
// which has the previous snapshot to check against.
func (u *TreeUpdate) Validate() error {
	seen := make(map[NodeID]struct{}, len(u.Nodes))
	for i, entry := range u.Nodes {
		if !entry.ID.IsValid() {
			return fmt.Errorf("update entry %d: %w", i, ErrZeroID)
		}
		if entry.Node == nil {
			return fmt.Errorf("update entry %d (id %s): %w", i, entry.ID, ErrNilNode)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("update entry %d (id %s): %w", i, entry.ID, ErrDuplicateID)
		}
		seen[entry.ID] = struct{}{}

		if err := validateNode(entry.ID, entry.Node); err != nil {
			return err
		}
	}

	if u.Tree != nil && !u.Tree.Root.IsValid() {
		return fmt.Errorf("tree root: %w", ErrZeroID)
	}
	if u.Focus != nil && !u.Focus.IsValid() {
		return fmt.Errorf("focus: %w", ErrZeroID)
	}
	return nil
}

func validateNode(id NodeID, n *Node) error {
	if !n.Role.IsValid() {
		return fmt.Errorf("node %s: role %d: %w", id, n.Role, ErrInvalidRole)
	}
	seen := make(map[NodeID]struct{}, len(n.Children))
	for _, child := range n.Children {
		if !child.IsValid() {
			return fmt.Errorf("node %s: child: %w", id, ErrZeroID)
		}
		if _, dup := seen[child]; dup {
			return fmt.Errorf("node %s: child %s: %w", id, child, ErrDuplicateChild)
		}
		seen[child] = struct{}{}
	}
	return nil
}

// ValidateRequest checks an action request for shallow well-formedness.
func (r *ActionRequest) ValidateRequest() error {
	if !r.Target.IsValid() {
		return fmt.Errorf("action target: %w", ErrZeroID)
	}
	if !r.Action.IsValid() {
		return fmt.Errorf("action %d on node %s: unknown action kind", r.Action, r.Target)
	}
	return nil
}
