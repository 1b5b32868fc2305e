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
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/accesstree/schema"
	"github.com/AleutianAI/accesstree/tree"
)

// inspector serves one live tree over HTTP: reads of the current
// snapshot, update and action submission, and a websocket stream of
// change-sets.
type inspector struct {
	tree   *tree.Tree
	router *gin.Engine
	hub    *eventHub
}

func newInspector(tr *tree.Tree, registry *prometheus.Registry) *inspector {
	ins := &inspector{
		tree: tr,
		hub:  newEventHub(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("accesstree-inspect"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tree_id": tr.ID()})
	})
	if registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/tree", ins.getTree)
		v1.GET("/tree/nodes/:id", ins.getNode)
		v1.GET("/tree/focus", ins.getFocus)
		v1.POST("/tree/updates", ins.postUpdate)
		v1.POST("/tree/actions", ins.postAction)
		v1.GET("/tree/events", ins.streamEvents)
	}

	ins.router = router
	return ins
}

// getTree returns the whole current snapshot in TreeUpdate form, the
// same shape POST /tree/updates accepts.
func (ins *inspector) getTree(c *gin.Context) {
	snap, err := ins.tree.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"treeId":    ins.tree.ID(),
		"liveNodes": snap.Len(),
		"tree":      snap.Serialize(),
	})
}

func (ins *inspector) getNode(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "node id must be a positive integer"})
		return
	}
	snap, err := ins.tree.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	nodeID := schema.NodeID(id)
	node, ok := snap.Node(nodeID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "node not found", "id": nodeID.String()})
		return
	}
	parent, _ := snap.Parent(nodeID)
	index, _ := snap.IndexInParent(nodeID)
	c.JSON(http.StatusOK, gin.H{
		"id":            nodeID,
		"node":          node,
		"parent":        parent,
		"indexInParent": index,
	})
}

func (ins *inspector) getFocus(c *gin.Context) {
	snap, err := ins.tree.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	focus, ok := snap.Focus()
	c.JSON(http.StatusOK, gin.H{"focused": ok, "focus": focus})
}

// postUpdate applies one TreeUpdate and returns its change-set. The
// change-set also goes out on the websocket stream.
func (ins *inspector) postUpdate(c *gin.Context) {
	var update schema.TreeUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update body: " + err.Error()})
		return
	}

	changes, err := ins.tree.Apply(c.Request.Context(), update)
	if err != nil {
		// The update was parseable but violates the tree contract; the
		// previous snapshot is untouched.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	ins.hub.broadcast(changes)
	c.JSON(http.StatusOK, gin.H{"changes": changes})
}

func (ins *inspector) postAction(c *gin.Context) {
	var request schema.ActionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action body: " + err.Error()})
		return
	}

	outcome, err := ins.tree.RequestAction(c.Request.Context(), request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome.String()})
}

var upgrader = websocket.Upgrader{
	// The inspector is a local development tool; cross-origin pages on
	// the developer's machine are expected clients.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamEvents upgrades to a websocket and forwards every change-set
// applied after the subscription, one JSON message each.
func (ins *inspector) streamEvents(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket", "error", err)
		return
	}
	defer ws.Close()

	events, unsubscribe := ins.hub.subscribe()
	defer unsubscribe()
	slog.Info("event stream client connected", "remote", ws.RemoteAddr().String())

	// Reads only serve to detect disconnection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case changes, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteJSON(changes); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					slog.Info("event stream client disconnected", "error", err)
				}
				return
			}
		}
	}
}

// eventHub fans change-sets out to websocket subscribers. Slow
// subscribers lose events rather than stalling Apply callers.
type eventHub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan *tree.ChangeSet
}

func newEventHub() *eventHub {
	return &eventHub{subs: map[int]chan *tree.ChangeSet{}}
}

func (h *eventHub) subscribe() (<-chan *tree.ChangeSet, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan *tree.ChangeSet, 16)
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

func (h *eventHub) broadcast(changes *tree.ChangeSet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub <- changes:
		default: // drop for slow consumers
		}
	}
}
