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
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/accesstree/schema"
)

// ActionHandler is implemented by the provider to receive action requests
// that assistive technologies make against the tree. The core forwards
// requests unchanged and never mutates the tree in response to one;
// mutation only ever happens through a later Apply.
//
// Handlers may be invoked from operating-system callback threads. They
// must not call Apply synchronously; they should queue the work onto the
// provider's own thread.
type ActionHandler interface {
	HandleAction(ctx context.Context, request schema.ActionRequest)
}

// ActionHandlerFunc adapts a plain function to ActionHandler.
type ActionHandlerFunc func(ctx context.Context, request schema.ActionRequest)

// HandleAction implements ActionHandler.
func (f ActionHandlerFunc) HandleAction(ctx context.Context, request schema.ActionRequest) {
	f(ctx, request)
}

// ActionOutcome reports what happened to a dispatched action request.
type ActionOutcome int

const (
	// ActionDelivered means the target existed and the request was handed
	// to the provider's handler.
	ActionDelivered ActionOutcome = iota

	// ActionDroppedStaleTarget means the target no longer exists. This is
	// an expected outcome, not an error: assistive technologies routinely
	// act on nodes that were removed between their query and their
	// request.
	ActionDroppedStaleTarget
)

// String returns the snake_case name of the outcome, used as a metric
// attribute.
func (o ActionOutcome) String() string {
	switch o {
	case ActionDelivered:
		return "delivered"
	case ActionDroppedStaleTarget:
		return "stale_target"
	default:
		return "unknown"
	}
}

// ActivationFunc builds the initial tree on demand. Providers use this to
// avoid constructing a full accessibility tree for windows no assistive
// technology ever looks at.
type ActivationFunc func() schema.TreeUpdate

// Options configures a Tree.
type Options struct {
	// Logger receives structured diagnostics; rejected applies are logged
	// at Warn. Default: slog.Default().
	Logger *slog.Logger

	// InstanceID identifies this tree in logs, spans, and the inspector
	// API. Default: a new UUID v4.
	InstanceID string
}

// Option is a functional option for configuring a Tree.
type Option func(*Options)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithInstanceID overrides the generated tree instance ID.
func WithInstanceID(id string) Option {
	return func(o *Options) {
		o.InstanceID = id
	}
}

// Tree is the reconciler: it holds the current Snapshot behind a
// mutual-exclusion boundary, applies updates from the provider's
// thread(s), and serves reads from any thread, including re-entrant reads
// from operating-system callbacks.
//
// # Two-Phase Publication
//
// Apply computes the next snapshot and its change-set while holding the
// write lock, publishes the snapshot, releases the lock, and only then
// returns the change-set. Raising native notifications from a change-set
// can synchronously trigger a read on the same thread; because the lock
// is already released by the time the caller sees the change-set, that
// re-entrancy cannot deadlock. Callers must preserve this property: never
// consume a ChangeSet from code that still holds a lock the reader side
// might need.
type Tree struct {
	mu       sync.RWMutex
	snap     *Snapshot
	activate ActivationFunc // consumed by the first read; nil afterwards

	handler ActionHandler
	logger  *slog.Logger
	id      string
}

// New creates a tree from an initial update, which must carry tree-level
// data naming the root. The handler receives forwarded action requests
// and may be nil for consumers that never dispatch actions.
func New(initial schema.TreeUpdate, handler ActionHandler, opts ...Option) (*Tree, error) {
	t := newTree(handler, opts)
	if _, err := t.Apply(context.Background(), initial); err != nil {
		return nil, err
	}
	return t, nil
}

// NewDeferred creates a tree whose initial state is built by the
// activation callback the first time any reader asks for a snapshot.
// Until then the tree is empty and Apply calls are accepted as if the
// tree were freshly created.
func NewDeferred(activate ActivationFunc, handler ActionHandler, opts ...Option) *Tree {
	t := newTree(handler, opts)
	t.activate = activate
	return t
}

func newTree(handler ActionHandler, opts []Option) *Tree {
	options := Options{
		Logger:     slog.Default(),
		InstanceID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Tree{
		snap:    emptySnapshot(),
		handler: handler,
		logger:  options.Logger.With("tree_id", options.InstanceID),
		id:      options.InstanceID,
	}
}

// ID returns the tree's instance identifier.
func (t *Tree) ID() string {
	return t.id
}

// Apply reconciles one partial update into the tree and returns the
// change-set between the previous and new snapshots.
//
// On validation failure the previous snapshot remains authoritative and
// the error names the offending node; this is a fatal caller error, not a
// condition to retry. An update that restates the current state verbatim
// succeeds with an empty change-set.
//
// The returned ChangeSet is safe to translate into native notifications
// immediately: no internal lock is held once Apply returns.
func (t *Tree) Apply(ctx context.Context, update schema.TreeUpdate) (*ChangeSet, error) {
	ctx, span := startApplySpan(ctx, t.id, len(update.Nodes))
	defer span.End()
	start := time.Now()

	if err := update.Validate(); err != nil {
		recordApplyMetrics(ctx, time.Since(start), 0, 0, false)
		t.logger.Warn("rejected malformed tree update", "error", err)
		return nil, err
	}

	// Phase 1: compute and publish under the write lock.
	t.mu.Lock()
	next, changes, err := reconcile(t.snap, update)
	if err != nil {
		t.mu.Unlock()
		recordApplyMetrics(ctx, time.Since(start), 0, 0, false)
		t.logger.Warn("rejected tree update", "error", err)
		return nil, err
	}
	t.snap = next
	t.activate = nil // a real update supersedes any pending lazy activation
	nodeCount := len(next.nodes)
	t.mu.Unlock()

	// Phase 2: the lock is released; the caller may now raise events.
	setApplySpanResult(span, changes, nodeCount)
	recordApplyMetrics(ctx, time.Since(start),
		len(changes.Added)+len(changes.Updated)+len(changes.Removed), nodeCount, true)
	return changes, nil
}

// ApplyAndProcess applies an update and, if it succeeds, walks the
// resulting change-set through the handler — after the snapshot is
// published and the lock released, per the two-phase contract.
func (t *Tree) ApplyAndProcess(ctx context.Context, update schema.TreeUpdate, handler ChangeHandler) (*ChangeSet, error) {
	changes, err := t.Apply(ctx, update)
	if err != nil {
		return nil, err
	}
	snap, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ProcessChanges(snap, changes, handler)
	return changes, nil
}

// Snapshot returns the current snapshot. The returned value is immutable
// and remains valid indefinitely, even after newer snapshots are
// published.
//
// The first read of a deferred tree runs the activation callback; its
// update is applied exactly once. An invalid activation update is a
// provider defect: it is surfaced as an error on this and every later
// read until either the callback starts producing a valid update or an
// Apply establishes the tree. The callback runs while the tree's write
// lock is held and therefore must not call back into the tree.
func (t *Tree) Snapshot(ctx context.Context) (*Snapshot, error) {
	t.mu.RLock()
	snap, activate := t.snap, t.activate
	t.mu.RUnlock()
	if activate == nil {
		return snap, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.activate == nil { // another reader or Apply got here first
		return t.snap, nil
	}

	update := t.activate()
	if err := update.Validate(); err != nil {
		t.logger.Error("tree activation produced a malformed update", "error", err)
		return nil, err
	}
	next, _, err := reconcile(t.snap, update)
	if err != nil {
		t.logger.Error("tree activation produced an invalid update", "error", err)
		return nil, err
	}
	t.snap = next
	t.activate = nil
	return next, nil
}

// RequestAction validates that the target still exists and forwards the
// request unchanged to the provider's handler.
//
// A missing target is reported as ActionDroppedStaleTarget with a nil
// error — the node may legitimately have been removed since the query
// that produced the request. Errors are reserved for malformed requests.
func (t *Tree) RequestAction(ctx context.Context, request schema.ActionRequest) (ActionOutcome, error) {
	if err := request.ValidateRequest(); err != nil {
		return ActionDroppedStaleTarget, err
	}

	snap, err := t.Snapshot(ctx)
	if err != nil {
		return ActionDroppedStaleTarget, err
	}
	if !snap.Has(request.Target) {
		t.logger.Debug("dropping action for stale target",
			"action", request.Action.String(), "target", request.Target.String())
		recordActionMetrics(ctx, ActionDroppedStaleTarget)
		return ActionDroppedStaleTarget, nil
	}

	recordActionMetrics(ctx, ActionDelivered)
	if t.handler != nil {
		t.handler.HandleAction(ctx, request)
	}
	return ActionDelivered, nil
}

// Convenience dispatchers for the common action kinds. Each builds the
// request and goes through RequestAction's staleness check.

// SetFocus asks the provider to move keyboard focus to the target.
func (t *Tree) SetFocus(ctx context.Context, target schema.NodeID) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{Action: schema.ActionFocus, Target: target})
}

// Click asks the provider to perform the target's click/tap equivalent.
func (t *Tree) Click(ctx context.Context, target schema.NodeID) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{Action: schema.ActionClick, Target: target})
}

// SetValue asks the provider to replace the target's value.
func (t *Tree) SetValue(ctx context.Context, target schema.NodeID, value string) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{
		Action: schema.ActionSetValue,
		Target: target,
		Data:   &schema.ActionData{Value: &value},
	})
}

// SetNumericValue asks the provider to replace the target's numeric value.
func (t *Tree) SetNumericValue(ctx context.Context, target schema.NodeID, value float64) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{
		Action: schema.ActionSetValue,
		Target: target,
		Data:   &schema.ActionData{NumericValue: &value},
	})
}

// Increment asks the provider to step the target's numeric value up.
func (t *Tree) Increment(ctx context.Context, target schema.NodeID) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{Action: schema.ActionIncrement, Target: target})
}

// Decrement asks the provider to step the target's numeric value down.
func (t *Tree) Decrement(ctx context.Context, target schema.NodeID) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{Action: schema.ActionDecrement, Target: target})
}

// ScrollIntoView asks the provider to scroll the target visible.
func (t *Tree) ScrollIntoView(ctx context.Context, target schema.NodeID) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{Action: schema.ActionScrollIntoView, Target: target})
}

// ScrollToPoint asks the provider to scroll the target to a point in the
// tree's container.
func (t *Tree) ScrollToPoint(ctx context.Context, target schema.NodeID, point schema.Point) (ActionOutcome, error) {
	return t.RequestAction(ctx, schema.ActionRequest{
		Action: schema.ActionScrollToPoint,
		Target: target,
		Data:   &schema.ActionData{ScrollToPoint: &point},
	})
}
