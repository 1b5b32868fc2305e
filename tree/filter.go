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

// FilterResult decides how filtered traversal treats one node.
type FilterResult int

const (
	// FilterInclude exposes the node.
	FilterInclude FilterResult = iota

	// FilterExcludeNode hides the node but promotes its children into its
	// place, flattening one level.
	FilterExcludeNode

	// FilterExcludeSubtree hides the node and everything under it.
	FilterExcludeSubtree
)

// String returns the lowercase name of the result.
func (r FilterResult) String() string {
	switch r {
	case FilterInclude:
		return "include"
	case FilterExcludeNode:
		return "excludeNode"
	case FilterExcludeSubtree:
		return "excludeSubtree"
	default:
		return "unknown"
	}
}

// Filter decides, per node, what a filtered traversal exposes. Filters
// must be pure functions of the snapshot: traversal may evaluate a node
// any number of times.
type Filter func(s *Snapshot, id schema.NodeID) FilterResult

// CommonFilter is the default assistive-technology view of the tree:
//
//   - the focused node is always included, whatever its flags — users must
//     never lose track of where their focus is
//   - ignored nodes and generic containers are hidden with their children
//     promoted
//   - everything else is included
//
// Providers with platform-specific needs pass their own Filter instead.
func CommonFilter(s *Snapshot, id schema.NodeID) FilterResult {
	if focus, ok := s.Focus(); ok && focus == id {
		return FilterInclude
	}
	node, ok := s.Node(id)
	if !ok {
		return FilterExcludeSubtree
	}
	if node.Ignored || node.Role == schema.RoleGenericContainer {
		return FilterExcludeNode
	}
	return FilterInclude
}
