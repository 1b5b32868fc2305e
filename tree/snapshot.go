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

// nodeState is one node's entry in a snapshot: the shared record plus the
// derived parent/index data computed during the reachability pass.
type nodeState struct {
	data   *schema.Node
	parent schema.NodeID // InvalidNodeID for the root
	index  int           // position within the parent's child list
}

// Snapshot is one immutable, fully-validated version of the accessibility
// tree. All invariants hold: exactly one root, every child reference
// resolves, no cycles, and the focus (if any) exists.
//
// Snapshots are cheap to hold: consecutive snapshots share unchanged node
// records by reference. A Snapshot never changes after it is published, so
// reading it requires no synchronization.
type Snapshot struct {
	nodes map[schema.NodeID]*nodeState
	data  schema.Tree
	focus schema.NodeID // InvalidNodeID when nothing in-tree has focus
}

// emptySnapshot is the state before any update has been applied.
func emptySnapshot() *Snapshot {
	return &Snapshot{nodes: map[schema.NodeID]*nodeState{}}
}

// Root returns the root node's ID, or InvalidNodeID for an empty snapshot.
func (s *Snapshot) Root() schema.NodeID {
	return s.data.Root
}

// Tree returns the tree-level metadata.
func (s *Snapshot) Tree() schema.Tree {
	return s.data
}

// Len returns the number of live nodes.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// Has reports whether a node with the given ID is in the snapshot.
func (s *Snapshot) Has(id schema.NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// Node returns the record for the given ID. The returned record is shared
// and must not be mutated.
func (s *Snapshot) Node(id schema.NodeID) (*schema.Node, bool) {
	st, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	return st.data, true
}

// Parent returns the parent of the given node. The root has parent
// InvalidNodeID. The second result is false when the ID is not in the
// snapshot at all.
func (s *Snapshot) Parent(id schema.NodeID) (schema.NodeID, bool) {
	st, ok := s.nodes[id]
	if !ok {
		return schema.InvalidNodeID, false
	}
	return st.parent, true
}

// IndexInParent returns the node's position within its parent's child
// list. The root reports index 0.
func (s *Snapshot) IndexInParent(id schema.NodeID) (int, bool) {
	st, ok := s.nodes[id]
	if !ok {
		return 0, false
	}
	return st.index, true
}

// Children returns the child IDs of the given node in document order. The
// returned slice is shared with the node record and must not be mutated.
func (s *Snapshot) Children(id schema.NodeID) []schema.NodeID {
	st, ok := s.nodes[id]
	if !ok {
		return nil
	}
	return st.data.Children
}

// Focus returns the in-tree focus, or (InvalidNodeID, false) when no node
// has focus.
func (s *Snapshot) Focus() (schema.NodeID, bool) {
	if !s.focus.IsValid() {
		return schema.InvalidNodeID, false
	}
	return s.focus, true
}

// IsDescendantOf reports whether id lies in the subtree rooted at
// ancestor (a node is not its own descendant).
func (s *Snapshot) IsDescendantOf(id, ancestor schema.NodeID) bool {
	st, ok := s.nodes[id]
	for ok {
		if st.parent == ancestor {
			return true
		}
		st, ok = s.nodes[st.parent]
	}
	return false
}

// Serialize flattens the snapshot back into a full TreeUpdate that would
// rebuild it from scratch: every live record in depth-first order, the
// tree data, and the focus. Useful for handing a complete tree to a newly
// attached consumer.
func (s *Snapshot) Serialize() schema.TreeUpdate {
	update := schema.TreeUpdate{
		Nodes: make([]schema.NodeEntry, 0, len(s.nodes)),
	}
	if s.data.Root.IsValid() {
		data := s.data
		update.Tree = &data
		s.appendSubtree(&update, s.data.Root)
	}
	if s.focus.IsValid() {
		focus := s.focus
		update.Focus = &focus
	}
	return update
}

func (s *Snapshot) appendSubtree(update *schema.TreeUpdate, id schema.NodeID) {
	st := s.nodes[id]
	update.Nodes = append(update.Nodes, schema.NodeEntry{ID: id, Node: st.data})
	for _, child := range st.data.Children {
		s.appendSubtree(update, child)
	}
}
