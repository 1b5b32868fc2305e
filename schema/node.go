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

// Live describes the politeness level with which assistive technologies
// should announce changes to a node's content.
type Live uint8

const (
	// LiveOff means changes are not announced.
	LiveOff Live = iota

	// LivePolite means changes are announced at the next graceful
	// opportunity.
	LivePolite

	// LiveAssertive means changes are announced immediately, interrupting
	// any in-progress speech.
	LiveAssertive
)

// String returns the lowercase name of the liveness level.
func (l Live) String() string {
	switch l {
	case LiveOff:
		return "off"
	case LivePolite:
		return "polite"
	case LiveAssertive:
		return "assertive"
	default:
		return "off"
	}
}

// TextSelection describes the selected text range within a node's value.
// Anchor is where the selection started; Focus is the moving end. Offsets
// are in UTF-8 bytes within the value of the referenced node.
type TextSelection struct {
	AnchorID     NodeID `json:"anchorId"`
	AnchorOffset int    `json:"anchorOffset"`
	FocusID      NodeID `json:"focusId"`
	FocusOffset  int    `json:"focusOffset"`
}

// Node is one accessible element: its role, its children in document
// order, the actions it supports, and a sparse set of optional attributes.
//
// A node record is replaced wholesale on update, never patched field by
// field: when a TreeUpdate carries a record for an ID, any previous record
// for that ID is discarded entirely, so unchanged attributes must be
// restated. This is what makes records safe to share by reference between
// consecutive snapshots.
//
// Child order is semantically meaningful — it is the document/visual order
// that traversal, "item N of M" positioning, and platform translators all
// rely on.
type Node struct {
	Role Role `json:"role"`

	// Children lists the node's direct children in document order. Every
	// ID listed here must resolve to a record in the same snapshot; the
	// reconciler rejects updates that would break that.
	Children []NodeID `json:"children,omitempty"`

	// Actions is the set of action requests the provider will honor for
	// this node.
	Actions ActionSet `json:"actions,omitempty"`

	// Name is the accessible label, e.g. a button caption.
	Name *string `json:"name,omitempty"`

	// Value is the current value of a control, e.g. text input content.
	Value *string `json:"value,omitempty"`

	// Bounds is the node's bounding rectangle, if it has one.
	Bounds *Rect `json:"bounds,omitempty"`

	// Numeric range attributes, for sliders, spin buttons, progress bars.
	NumericValue     *float64 `json:"numericValue,omitempty"`
	MinNumericValue  *float64 `json:"minNumericValue,omitempty"`
	MaxNumericValue  *float64 `json:"maxNumericValue,omitempty"`
	NumericValueStep *float64 `json:"numericValueStep,omitempty"`

	// TextSelection is the current selection, for text controls.
	TextSelection *TextSelection `json:"textSelection,omitempty"`

	// Live is the announcement urgency for content changes.
	Live Live `json:"live,omitempty"`

	// Ignored marks a node that is present in the tree but should not be
	// exposed to assistive technologies. Filtered traversal skips ignored
	// nodes and promotes their children.
	Ignored bool `json:"ignored,omitempty"`
}

// Clone returns a deep copy of the node. Providers use this to derive the
// next version of a record without mutating one already owned by the core.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]NodeID, len(n.Children))
		copy(c.Children, n.Children)
	}
	c.Name = cloneptr(n.Name)
	c.Value = cloneptr(n.Value)
	c.Bounds = cloneptr(n.Bounds)
	c.NumericValue = cloneptr(n.NumericValue)
	c.MinNumericValue = cloneptr(n.MinNumericValue)
	c.MaxNumericValue = cloneptr(n.MaxNumericValue)
	c.NumericValueStep = cloneptr(n.NumericValueStep)
	c.TextSelection = cloneptr(n.TextSelection)
	return &c
}

// Equal reports whether two records are structurally identical. The
// reconciler uses this to keep the old record (and report no change) when
// an update restates a node verbatim.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Role != other.Role ||
		n.Actions != other.Actions ||
		n.Live != other.Live ||
		n.Ignored != other.Ignored {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i, id := range n.Children {
		if other.Children[i] != id {
			return false
		}
	}
	return eqptr(n.Name, other.Name) &&
		eqptr(n.Value, other.Value) &&
		eqptr(n.Bounds, other.Bounds) &&
		eqptr(n.NumericValue, other.NumericValue) &&
		eqptr(n.MinNumericValue, other.MinNumericValue) &&
		eqptr(n.MaxNumericValue, other.MaxNumericValue) &&
		eqptr(n.NumericValueStep, other.NumericValueStep) &&
		eqptr(n.TextSelection, other.TextSelection)
}

func cloneptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eqptr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Ptr returns a pointer to v. Convenience for building sparse attributes:
//
//	node := &schema.Node{Role: schema.RoleButton, Name: schema.Ptr("OK")}
func Ptr[T any](v T) *T {
	return &v
}
