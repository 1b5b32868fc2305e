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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/accesstree/schema"
)

// window returns a window node with the given children.
func window(children ...schema.NodeID) *schema.Node {
	return &schema.Node{Role: schema.RoleWindow, Children: children}
}

// button returns a button node with the given name.
func button(name string) *schema.Node {
	return &schema.Node{
		Role:    schema.RoleButton,
		Actions: schema.NewActionSet(schema.ActionClick, schema.ActionFocus),
		Name:    schema.Ptr(name),
	}
}

func entry(id schema.NodeID, node *schema.Node) schema.NodeEntry {
	return schema.NodeEntry{ID: id, Node: node}
}

// newTestTree builds a tree rooted at node 1 with two button children.
func newTestTree(t *testing.T) *Tree {
	t.Helper()
	tr, err := New(schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window(2, 3)),
			entry(2, button("Press me")),
			entry(3, button("Cancel")),
		},
		Tree: schema.NewTree(1),
	}, nil)
	require.NoError(t, err)
	return tr
}

func TestApply_InitialTree(t *testing.T) {
	tr, err := New(schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window(2)),
			entry(2, button("Press me")),
		},
		Tree: schema.NewTree(1),
	}, nil)
	require.NoError(t, err)

	snap, err := tr.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, schema.NodeID(1), snap.Root())
	assert.Equal(t, 2, snap.Len())

	parent, ok := snap.Parent(2)
	require.True(t, ok)
	assert.Equal(t, schema.NodeID(1), parent)

	rootParent, ok := snap.Parent(1)
	require.True(t, ok)
	assert.Equal(t, schema.InvalidNodeID, rootParent)

	_, focused := snap.Focus()
	assert.False(t, focused)
}

func TestApply_EndToEndScenario(t *testing.T) {
	ctx := context.Background()

	tr := NewDeferred(nil, nil)
	changes, err := tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window(2)),
			entry(2, button("Press me")),
		},
		Tree: schema.NewTree(1),
	})
	require.NoError(t, err)
	assert.Equal(t, []schema.NodeID{1, 2}, changes.Added)
	assert.Empty(t, changes.Updated)
	assert.Empty(t, changes.Removed)
	assert.Nil(t, changes.FocusChange)

	focus := schema.NodeID(2)
	changes, err = tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(2, button("Clicked!"))},
		Focus: &focus,
	})
	require.NoError(t, err)
	assert.Empty(t, changes.Added)
	assert.Equal(t, []schema.NodeID{2}, changes.Updated)
	assert.Empty(t, changes.Removed)
	require.NotNil(t, changes.FocusChange)
	assert.Equal(t, schema.InvalidNodeID, changes.FocusChange.Old)
	assert.Equal(t, schema.NodeID(2), changes.FocusChange.New)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	node, ok := snap.Node(2)
	require.True(t, ok)
	assert.Equal(t, "Clicked!", *node.Name)
}

func TestApply_Idempotence(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	update := schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window(2, 3)),
			entry(2, button("Press me")),
			entry(3, button("Cancel")),
		},
		Tree: schema.NewTree(1),
	}

	changes, err := tr.Apply(ctx, update)
	require.NoError(t, err)
	assert.True(t, changes.Empty(), "re-applying identical state must yield an empty change-set")
}

func TestApply_ImplicitRemoval(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	// Dropping node 2 from the root's child list removes it without any
	// explicit delete message.
	changes, err := tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(1, window(3))},
	})
	require.NoError(t, err)

	assert.Equal(t, []schema.NodeID{2}, changes.Removed)
	assert.Equal(t, []schema.NodeID{1}, changes.Updated)
	assert.Empty(t, changes.Added)

	removed := changes.RemovedOld[2]
	require.NotNil(t, removed)
	assert.Equal(t, "Press me", *removed.Name)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	_, ok := snap.Node(2)
	assert.False(t, ok)
	assert.False(t, snap.Has(2))
}

func TestApply_ImplicitRemovalSweepsSubtree(t *testing.T) {
	ctx := context.Background()
	tr, err := New(schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window(2)),
			entry(2, &schema.Node{Role: schema.RoleGroup, Children: []schema.NodeID{3, 4}}),
			entry(3, button("a")),
			entry(4, button("b")),
		},
		Tree: schema.NewTree(1),
	}, nil)
	require.NoError(t, err)

	changes, err := tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(1, window())},
	})
	require.NoError(t, err)
	assert.Equal(t, []schema.NodeID{2, 3, 4}, changes.Removed)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Len())
}

func TestApply_ReintroducedIDIsFreshCreation(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	_, err := tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(1, window(3))},
	})
	require.NoError(t, err)

	// Bring 2 back with a different shape: plain creation, not an update.
	changes, err := tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window(2, 3)),
			entry(2, &schema.Node{Role: schema.RoleCheckBox}),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []schema.NodeID{2}, changes.Added)
	assert.NotContains(t, changes.Updated, schema.NodeID(2))
}

func TestApply_RootReplacement(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	changes, err := tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(10, window())},
		Tree:  schema.NewTree(10),
	})
	require.NoError(t, err)

	assert.Equal(t, []schema.NodeID{10}, changes.Added)
	assert.Equal(t, []schema.NodeID{1, 2, 3}, changes.Removed)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.NodeID(10), snap.Root())
	assert.Equal(t, 1, snap.Len())
}

func TestApply_RejectionPreservesPriorState(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	focus := schema.NodeID(2)
	_, err := tr.Apply(ctx, schema.TreeUpdate{Focus: &focus})
	require.NoError(t, err)

	// Removing node 2 while leaving focus on it must be rejected whole.
	_, err = tr.Apply(ctx, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(1, window(3))},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFocus)

	snap, snapErr := tr.Snapshot(ctx)
	require.NoError(t, snapErr)
	got, ok := snap.Focus()
	require.True(t, ok)
	assert.Equal(t, schema.NodeID(2), got)
	assert.True(t, snap.Has(2), "rejected apply must not be partially visible")
	assert.Equal(t, 3, snap.Len())
}

func TestApply_RejectsStructuralViolations(t *testing.T) {
	ctx := context.Background()
	badFocus := schema.NodeID(99)

	testCases := []struct {
		name    string
		update  schema.TreeUpdate
		wantErr error
	}{
		{
			name: "dangling child",
			update: schema.TreeUpdate{
				Nodes: []schema.NodeEntry{entry(1, window(2, 3, 4))},
			},
			wantErr: ErrDanglingChild,
		},
		{
			name: "new node never attached",
			update: schema.TreeUpdate{
				Nodes: []schema.NodeEntry{entry(50, button("orphan"))},
			},
			wantErr: ErrUnreachableNode,
		},
		{
			name: "focus outside tree",
			update: schema.TreeUpdate{
				Focus: &badFocus,
			},
			wantErr: ErrInvalidFocus,
		},
		{
			name: "node claimed by two parents",
			update: schema.TreeUpdate{
				Nodes: []schema.NodeEntry{
					entry(2, &schema.Node{Role: schema.RoleGroup, Children: []schema.NodeID{3}}),
				},
			},
			wantErr: ErrCycle,
		},
		{
			name: "cycle through descendant",
			update: schema.TreeUpdate{
				Nodes: []schema.NodeEntry{
					entry(2, &schema.Node{Role: schema.RoleGroup, Children: []schema.NodeID{1}}),
				},
			},
			wantErr: ErrCycle,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTestTree(t)
			_, err := tr.Apply(ctx, tc.update)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)

			// Whatever the violation, the prior snapshot stays intact.
			snap, snapErr := tr.Snapshot(ctx)
			require.NoError(t, snapErr)
			assert.Equal(t, 3, snap.Len())
		})
	}
}

func TestApply_EmptyTreeNeedsRoot(t *testing.T) {
	tr := NewDeferred(nil, nil)
	_, err := tr.Apply(context.Background(), schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(1, window())},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestApply_MissingRootRecord(t *testing.T) {
	tr := NewDeferred(nil, nil)
	_, err := tr.Apply(context.Background(), schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(2, button("x"))},
		Tree:  schema.NewTree(1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRootMissing)
}

// The schema layer rejects duplicate IDs before the reconciler sees them,
// but the reconciler itself must still resolve duplicates
// deterministically: the later pair wins.
func TestReconcile_DuplicateIDLaterPairWins(t *testing.T) {
	prev := emptySnapshot()
	update := schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window()),
			entry(1, &schema.Node{Role: schema.RoleWindow, Name: schema.Ptr("second")}),
		},
		Tree: schema.NewTree(1),
	}

	for range 10 {
		next, changes, err := reconcile(prev, update)
		require.NoError(t, err)
		node, ok := next.Node(1)
		require.True(t, ok)
		require.NotNil(t, node.Name)
		assert.Equal(t, "second", *node.Name)
		assert.Equal(t, []schema.NodeID{1}, changes.Added)
	}
}

func TestReconcile_StructuralSharing(t *testing.T) {
	first, _, err := reconcile(emptySnapshot(), schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			entry(1, window(2, 3)),
			entry(2, button("a")),
			entry(3, button("b")),
		},
		Tree: schema.NewTree(1),
	})
	require.NoError(t, err)

	// Touch only node 2; records and derived state for 3 must be shared
	// by reference with the previous snapshot.
	second, changes, err := reconcile(first, schema.TreeUpdate{
		Nodes: []schema.NodeEntry{entry(2, button("a2"))},
	})
	require.NoError(t, err)
	assert.Equal(t, []schema.NodeID{2}, changes.Updated)

	assert.Same(t, first.nodes[3], second.nodes[3])
	assert.Same(t, first.nodes[1], second.nodes[1])
	assert.NotSame(t, first.nodes[2], second.nodes[2])

	// The old snapshot still reads its own version.
	oldNode, _ := first.Node(2)
	newNode, _ := second.Node(2)
	assert.Equal(t, "a", *oldNode.Name)
	assert.Equal(t, "a2", *newNode.Name)
}

func TestApply_ReachabilityInvariant(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)

	updates := []schema.TreeUpdate{
		{Nodes: []schema.NodeEntry{
			entry(2, &schema.Node{Role: schema.RoleGroup, Children: []schema.NodeID{4}}),
			entry(4, button("nested")),
		}},
		{Nodes: []schema.NodeEntry{entry(1, window(2))}},
		{Nodes: []schema.NodeEntry{
			entry(1, window(2, 5)),
			entry(5, button("late")),
		}},
	}

	for _, update := range updates {
		_, err := tr.Apply(ctx, update)
		require.NoError(t, err)

		snap, err := tr.Snapshot(ctx)
		require.NoError(t, err)

		// Every node is reachable from the root, and every child
		// reference resolves.
		reached := map[schema.NodeID]bool{}
		var walk func(schema.NodeID)
		walk = func(id schema.NodeID) {
			reached[id] = true
			for _, child := range snap.Children(id) {
				require.True(t, snap.Has(child), "dangling child %s", child)
				walk(child)
			}
		}
		walk(snap.Root())
		assert.Equal(t, snap.Len(), len(reached))
	}
}

func TestSnapshot_Serialize(t *testing.T) {
	ctx := context.Background()
	tr := newTestTree(t)
	focus := schema.NodeID(3)
	_, err := tr.Apply(ctx, schema.TreeUpdate{Focus: &focus})
	require.NoError(t, err)

	snap, err := tr.Snapshot(ctx)
	require.NoError(t, err)
	full := snap.Serialize()

	// Rebuilding from the serialized form yields an identical tree.
	rebuilt, err := New(full, nil)
	require.NoError(t, err)
	snap2, err := rebuilt.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, snap.Len(), snap2.Len())
	assert.Equal(t, snap.Root(), snap2.Root())
	got, ok := snap2.Focus()
	require.True(t, ok)
	assert.Equal(t, focus, got)

	for _, e := range full.Nodes {
		node, ok := snap2.Node(e.ID)
		require.True(t, ok)
		assert.True(t, e.Node.Equal(node))
	}
}
