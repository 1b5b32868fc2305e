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

// Tree carries the root node identifier and rarely-changing metadata about
// the tree as a whole. It appears in a TreeUpdate only when the root or
// the metadata changes; most incremental updates omit it.
type Tree struct {
	// Root is the identifier of the tree's root node.
	Root NodeID `json:"root"`

	// AppName is the human-readable name of the application.
	AppName string `json:"appName,omitempty"`

	// ToolkitName is the name of the UI toolkit that authored the tree.
	ToolkitName string `json:"toolkitName,omitempty"`

	// ToolkitVersion is the version of that toolkit.
	ToolkitVersion string `json:"toolkitVersion,omitempty"`
}

// NewTree returns a Tree with the given root and no metadata.
func NewTree(root NodeID) *Tree {
	return &Tree{Root: root}
}

// NodeEntry is one (ID, record) pair in a TreeUpdate. Order within the
// update's Nodes slice is the tie-break order: if the same ID somehow
// appears twice, the later entry wins.
type NodeEntry struct {
	ID   NodeID `json:"id"`
	Node *Node  `json:"node"`
}

// TreeUpdate is the unit of change a provider hands to the tree core.
//
// An update is partial: IDs not mentioned keep their previous record
// unless they become unreachable from the root, in which case the
// reconciler garbage-collects them in the same apply. There is no explicit
// delete message — removal is always implicit, by dropping a child ID from
// its parent's child list.
//
// To add a child, the update must include both the child's record and an
// updated parent record listing the child's ID. To remove a subtree, the
// update includes only the updated parent with the child ID dropped.
type TreeUpdate struct {
	// Nodes is an ordered list of records to upsert. Each entry replaces
	// any existing record with the same ID wholesale.
	Nodes []NodeEntry `json:"nodes"`

	// Tree, when present, replaces the root and tree metadata. Required on
	// the initial update; omitted afterwards unless something changed.
	Tree *Tree `json:"tree,omitempty"`

	// Focus, when present, moves keyboard focus to the given node, which
	// must exist after the update is applied. Nil leaves focus unchanged.
	Focus *NodeID `json:"focus,omitempty"`
}

// ActionData is the optional payload of an action request. At most one
// field is set, matching what the action kind requires.
type ActionData struct {
	// Value is the payload for setValue and replaceSelectedText.
	Value *string `json:"value,omitempty"`

	// NumericValue is the payload for setValue on numeric controls.
	NumericValue *float64 `json:"numericValue,omitempty"`

	// TextSelection is the payload for setTextSelection.
	TextSelection *TextSelection `json:"textSelection,omitempty"`

	// ScrollToPoint is the payload for scrollToPoint.
	ScrollToPoint *Point `json:"scrollToPoint,omitempty"`
}

// ActionRequest asks the provider to perform an action on a target node.
// The core validates only that the target currently exists; action
// semantics are entirely the provider's business.
type ActionRequest struct {
	Action Action      `json:"action"`
	Target NodeID      `json:"target"`
	Data   *ActionData `json:"data,omitempty"`
}
