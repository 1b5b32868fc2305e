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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeUpdate_Validate(t *testing.T) {
	focus := NodeID(2)
	zeroFocus := InvalidNodeID

	testCases := []struct {
		name    string
		update  TreeUpdate
		wantErr error
	}{
		{
			name: "valid minimal update",
			update: TreeUpdate{
				Nodes: []NodeEntry{
					{ID: 1, Node: &Node{Role: RoleWindow, Children: []NodeID{2}}},
					{ID: 2, Node: &Node{Role: RoleButton}},
				},
				Tree:  NewTree(1),
				Focus: &focus,
			},
		},
		{
			name:   "empty update is valid",
			update: TreeUpdate{},
		},
		{
			name: "zero entry id",
			update: TreeUpdate{
				Nodes: []NodeEntry{{ID: 0, Node: &Node{Role: RoleButton}}},
			},
			wantErr: ErrZeroID,
		},
		{
			name: "nil node record",
			update: TreeUpdate{
				Nodes: []NodeEntry{{ID: 1, Node: nil}},
			},
			wantErr: ErrNilNode,
		},
		{
			name: "duplicate entry id",
			update: TreeUpdate{
				Nodes: []NodeEntry{
					{ID: 7, Node: &Node{Role: RoleButton}},
					{ID: 7, Node: &Node{Role: RoleCheckBox}},
				},
			},
			wantErr: ErrDuplicateID,
		},
		{
			name: "zero child id",
			update: TreeUpdate{
				Nodes: []NodeEntry{
					{ID: 1, Node: &Node{Role: RoleWindow, Children: []NodeID{0}}},
				},
			},
			wantErr: ErrZeroID,
		},
		{
			name: "duplicate child id",
			update: TreeUpdate{
				Nodes: []NodeEntry{
					{ID: 1, Node: &Node{Role: RoleWindow, Children: []NodeID{2, 2}}},
				},
			},
			wantErr: ErrDuplicateChild,
		},
		{
			name: "invalid role",
			update: TreeUpdate{
				Nodes: []NodeEntry{{ID: 1, Node: &Node{Role: Role(250)}}},
			},
			wantErr: ErrInvalidRole,
		},
		{
			name: "zero tree root",
			update: TreeUpdate{
				Tree: &Tree{Root: 0},
			},
			wantErr: ErrZeroID,
		},
		{
			name: "zero focus",
			update: TreeUpdate{
				Focus: &zeroFocus,
			},
			wantErr: ErrZeroID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.update.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestTreeUpdate_Validate_NamesOffendingID(t *testing.T) {
	update := TreeUpdate{
		Nodes: []NodeEntry{
			{ID: 3, Node: &Node{Role: RoleButton}},
			{ID: 3, Node: &Node{Role: RoleButton}},
		},
	}
	err := update.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id 3")
}

func TestActionRequest_ValidateRequest(t *testing.T) {
	valid := ActionRequest{Action: ActionClick, Target: 5}
	assert.NoError(t, valid.ValidateRequest())

	zeroTarget := ActionRequest{Action: ActionClick, Target: 0}
	assert.ErrorIs(t, zeroTarget.ValidateRequest(), ErrZeroID)

	badAction := ActionRequest{Action: Action(99), Target: 5}
	assert.Error(t, badAction.ValidateRequest())
}
