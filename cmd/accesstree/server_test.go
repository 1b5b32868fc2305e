// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/accesstree/schema"
	"github.com/AleutianAI/accesstree/tree"
)

func newTestInspector(t *testing.T) *inspector {
	t.Helper()

	name := "Press me"
	tr, err := tree.New(schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			{ID: 1, Node: &schema.Node{Role: schema.RoleWindow, Children: []schema.NodeID{2}}},
			{ID: 2, Node: &schema.Node{
				Role:    schema.RoleButton,
				Name:    &name,
				Actions: schema.NewActionSet(schema.ActionClick),
			}},
		},
		Tree: schema.NewTree(1),
	}, nil)
	require.NoError(t, err)

	return newInspector(tr, nil)
}

func doRequest(ins *inspector, method, path string, body []byte) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ins.router.ServeHTTP(recorder, req)
	return recorder
}

func TestInspector_Health(t *testing.T) {
	ins := newTestInspector(t)
	resp := doRequest(ins, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
}

func TestInspector_GetTree(t *testing.T) {
	ins := newTestInspector(t)
	resp := doRequest(ins, http.MethodGet, "/v1/tree", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		TreeID    string            `json:"treeId"`
		LiveNodes int               `json:"liveNodes"`
		Tree      schema.TreeUpdate `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.LiveNodes)
	assert.NotEmpty(t, body.TreeID)
	require.NotNil(t, body.Tree.Tree)
	assert.Equal(t, schema.NodeID(1), body.Tree.Tree.Root)
	assert.Len(t, body.Tree.Nodes, 2)
}

func TestInspector_GetNode(t *testing.T) {
	ins := newTestInspector(t)

	resp := doRequest(ins, http.MethodGet, "/v1/tree/nodes/2", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Node          *schema.Node  `json:"node"`
		Parent        schema.NodeID `json:"parent"`
		IndexInParent int           `json:"indexInParent"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotNil(t, body.Node)
	assert.Equal(t, schema.RoleButton, body.Node.Role)
	assert.Equal(t, schema.NodeID(1), body.Parent)
	assert.Equal(t, 0, body.IndexInParent)

	assert.Equal(t, http.StatusNotFound,
		doRequest(ins, http.MethodGet, "/v1/tree/nodes/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		doRequest(ins, http.MethodGet, "/v1/tree/nodes/banana", nil).Code)
}

func TestInspector_PostUpdate(t *testing.T) {
	ins := newTestInspector(t)

	events, unsubscribe := ins.hub.subscribe()
	defer unsubscribe()

	focus := schema.NodeID(2)
	update := schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			{ID: 2, Node: &schema.Node{
				Role:    schema.RoleButton,
				Name:    strptr("Clicked!"),
				Actions: schema.NewActionSet(schema.ActionClick),
			}},
		},
		Focus: &focus,
	}
	body, err := json.Marshal(update)
	require.NoError(t, err)

	resp := doRequest(ins, http.MethodPost, "/v1/tree/updates", body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result struct {
		Changes tree.ChangeSet `json:"changes"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, []schema.NodeID{2}, result.Changes.Updated)
	require.NotNil(t, result.Changes.FocusChange)
	assert.Equal(t, schema.NodeID(2), result.Changes.FocusChange.New)

	// The same change-set reached the websocket hub.
	select {
	case broadcast := <-events:
		assert.Equal(t, []schema.NodeID{2}, broadcast.Updated)
	default:
		t.Fatal("expected a broadcast change-set")
	}

	// Focus survives on the tree.
	snap, err := ins.tree.Snapshot(context.Background())
	require.NoError(t, err)
	got, ok := snap.Focus()
	require.True(t, ok)
	assert.Equal(t, schema.NodeID(2), got)
}

func TestInspector_PostUpdate_Rejected(t *testing.T) {
	ins := newTestInspector(t)

	// Root child 99 has no record: structural violation, 422.
	update := schema.TreeUpdate{
		Nodes: []schema.NodeEntry{
			{ID: 1, Node: &schema.Node{Role: schema.RoleWindow, Children: []schema.NodeID{2, 99}}},
		},
	}
	body, err := json.Marshal(update)
	require.NoError(t, err)

	resp := doRequest(ins, http.MethodPost, "/v1/tree/updates", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), "dangling")

	assert.Equal(t, http.StatusBadRequest,
		doRequest(ins, http.MethodPost, "/v1/tree/updates", []byte("not json")).Code)
}

func TestInspector_PostAction(t *testing.T) {
	ins := newTestInspector(t)

	body, err := json.Marshal(schema.ActionRequest{
		Action: schema.ActionClick,
		Target: 2,
	})
	require.NoError(t, err)

	resp := doRequest(ins, http.MethodPost, "/v1/tree/actions", body)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"outcome":"delivered"`)

	stale, err := json.Marshal(schema.ActionRequest{
		Action: schema.ActionClick,
		Target: 99,
	})
	require.NoError(t, err)
	resp = doRequest(ins, http.MethodPost, "/v1/tree/actions", stale)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"outcome":"stale_target"`)
}

func TestInspector_GetFocus(t *testing.T) {
	ins := newTestInspector(t)
	resp := doRequest(ins, http.MethodGet, "/v1/tree/focus", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"focused":false`)
}

func TestEventHub_DropsForSlowSubscribers(t *testing.T) {
	hub := newEventHub()
	events, unsubscribe := hub.subscribe()
	defer unsubscribe()

	for range 32 {
		hub.broadcast(&tree.ChangeSet{Added: []schema.NodeID{1}})
	}

	// The buffer caps at 16; everything beyond was dropped, nothing
	// blocked.
	count := 0
	for {
		select {
		case <-events:
			count++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 16, count)
}

func strptr(s string) *string { return &s }
