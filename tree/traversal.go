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
	"iter"

	"github.com/AleutianAI/accesstree/schema"
)

// Filtered traversal exposes the tree as assistive technologies see it:
// nodes the filter excludes disappear, and the children of node-only
// exclusions are promoted one level. Every method returns a fresh
// sequence over one fixed Snapshot, so traversal never observes a tree
// mid-mutation and sequences are freely restartable.

// FilteredChildren returns the visible children of the given node in
// document order: included children directly, plus the visible children
// of any child the filter excludes node-only.
func (s *Snapshot) FilteredChildren(id schema.NodeID, filter Filter) iter.Seq[schema.NodeID] {
	return func(yield func(schema.NodeID) bool) {
		s.yieldFilteredChildren(id, filter, yield)
	}
}

func (s *Snapshot) yieldFilteredChildren(id schema.NodeID, filter Filter, yield func(schema.NodeID) bool) bool {
	st, ok := s.nodes[id]
	if !ok {
		return true
	}
	for _, child := range st.data.Children {
		switch filter(s, child) {
		case FilterInclude:
			if !yield(child) {
				return false
			}
		case FilterExcludeNode:
			if !s.yieldFilteredChildren(child, filter, yield) {
				return false
			}
		case FilterExcludeSubtree:
		}
	}
	return true
}

// FilteredParent returns the nearest ancestor the filter includes, or
// (InvalidNodeID, false) when every ancestor is excluded — which is the
// case for the root and for top-level visible nodes.
func (s *Snapshot) FilteredParent(id schema.NodeID, filter Filter) (schema.NodeID, bool) {
	st, ok := s.nodes[id]
	if !ok {
		return schema.InvalidNodeID, false
	}
	for p := st.parent; p.IsValid(); {
		if filter(s, p) == FilterInclude {
			return p, true
		}
		pst, ok := s.nodes[p]
		if !ok {
			break
		}
		p = pst.parent
	}
	return schema.InvalidNodeID, false
}

// visibleSiblings returns the filtered sibling level the node lives on:
// the filtered children of its filtered parent, or the filtered top level
// (the root plus anything promoted past it) when no ancestor is visible.
func (s *Snapshot) visibleSiblings(id schema.NodeID, filter Filter) iter.Seq[schema.NodeID] {
	if parent, ok := s.FilteredParent(id, filter); ok {
		return s.FilteredChildren(parent, filter)
	}
	// Top level: the root itself if visible, else its promoted children.
	return func(yield func(schema.NodeID) bool) {
		root := s.data.Root
		if !root.IsValid() {
			return
		}
		switch filter(s, root) {
		case FilterInclude:
			yield(root)
		case FilterExcludeNode:
			s.yieldFilteredChildren(root, filter, yield)
		case FilterExcludeSubtree:
		}
	}
}

// FollowingFilteredSiblings returns the visible siblings after the given
// node, in document order.
func (s *Snapshot) FollowingFilteredSiblings(id schema.NodeID, filter Filter) iter.Seq[schema.NodeID] {
	return func(yield func(schema.NodeID) bool) {
		seen := false
		for sib := range s.visibleSiblings(id, filter) {
			if seen && !yield(sib) {
				return
			}
			if sib == id {
				seen = true
			}
		}
	}
}

// PrecedingFilteredSiblings returns the visible siblings before the given
// node, closest first (reverse document order).
func (s *Snapshot) PrecedingFilteredSiblings(id schema.NodeID, filter Filter) iter.Seq[schema.NodeID] {
	return func(yield func(schema.NodeID) bool) {
		var preceding []schema.NodeID
		for sib := range s.visibleSiblings(id, filter) {
			if sib == id {
				break
			}
			preceding = append(preceding, sib)
		}
		for i := len(preceding) - 1; i >= 0; i-- {
			if !yield(preceding[i]) {
				return
			}
		}
	}
}

// DeepestFirstFilteredChild descends through first visible children as
// far as possible and returns the node it lands on, or false when the
// given node has no visible children.
func (s *Snapshot) DeepestFirstFilteredChild(id schema.NodeID, filter Filter) (schema.NodeID, bool) {
	return s.deepestFilteredChild(id, filter, false)
}

// DeepestLastFilteredChild is DeepestFirstFilteredChild over last visible
// children.
func (s *Snapshot) DeepestLastFilteredChild(id schema.NodeID, filter Filter) (schema.NodeID, bool) {
	return s.deepestFilteredChild(id, filter, true)
}

func (s *Snapshot) deepestFilteredChild(id schema.NodeID, filter Filter, last bool) (schema.NodeID, bool) {
	current := id
	descended := false
	for {
		var next schema.NodeID
		found := false
		for child := range s.FilteredChildren(current, filter) {
			next = child
			found = true
			if !last {
				break
			}
		}
		if !found {
			break
		}
		current = next
		descended = true
	}
	if !descended {
		return schema.InvalidNodeID, false
	}
	return current, true
}

// VisiblePosition returns the node's zero-based index among its visible
// siblings and the visible sibling count — the raw material for "item 3
// of 7" announcements. It returns ok=false when the filter does not
// include the node itself.
func (s *Snapshot) VisiblePosition(id schema.NodeID, filter Filter) (index, count int, ok bool) {
	if _, exists := s.nodes[id]; !exists || filter(s, id) != FilterInclude {
		return 0, 0, false
	}
	found := false
	for sib := range s.visibleSiblings(id, filter) {
		if sib == id {
			index = count
			found = true
		}
		count++
	}
	if !found {
		return 0, 0, false
	}
	return index, count, true
}
