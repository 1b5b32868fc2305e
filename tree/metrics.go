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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for tree operations.
var (
	tracer = otel.Tracer("accesstree.tree")
	meter  = otel.Meter("accesstree.tree")
)

// Metrics for apply and action-dispatch operations.
var (
	applyLatency metric.Float64Histogram
	applyTotal   metric.Int64Counter
	applyChanges metric.Int64Histogram
	liveNodes    metric.Int64Histogram
	actionTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		applyLatency, err = meter.Float64Histogram(
			"tree_apply_duration_seconds",
			metric.WithDescription("Duration of tree update applications"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		applyTotal, err = meter.Int64Counter(
			"tree_apply_total",
			metric.WithDescription("Total number of tree update applications"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		applyChanges, err = meter.Int64Histogram(
			"tree_apply_changes",
			metric.WithDescription("Nodes added, updated, or removed per apply"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		liveNodes, err = meter.Int64Histogram(
			"tree_live_nodes",
			metric.WithDescription("Live node count after each apply"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		actionTotal, err = meter.Int64Counter(
			"tree_action_requests_total",
			metric.WithDescription("Action requests dispatched, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordApplyMetrics records metrics for one apply.
func recordApplyMetrics(ctx context.Context, duration time.Duration, changeCount, nodeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))

	applyLatency.Record(ctx, duration.Seconds(), attrs)
	applyTotal.Add(ctx, 1, attrs)

	if success {
		applyChanges.Record(ctx, int64(changeCount))
		liveNodes.Record(ctx, int64(nodeCount))
	}
}

// recordActionMetrics records one dispatched action request.
func recordActionMetrics(ctx context.Context, outcome ActionOutcome) {
	if err := initMetrics(); err != nil {
		return
	}
	actionTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome.String())),
	)
}

// startApplySpan creates a span for one apply.
func startApplySpan(ctx context.Context, instanceID string, updateNodes int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Tree.Apply",
		trace.WithAttributes(
			attribute.String("tree.instance_id", instanceID),
			attribute.Int("tree.update_nodes", updateNodes),
		),
	)
}

// setApplySpanResult sets the result attributes on an apply span.
func setApplySpanResult(span trace.Span, changes *ChangeSet, nodeCount int) {
	span.SetAttributes(
		attribute.Int("tree.added", len(changes.Added)),
		attribute.Int("tree.updated", len(changes.Updated)),
		attribute.Int("tree.removed", len(changes.Removed)),
		attribute.Bool("tree.focus_changed", changes.FocusChange != nil),
		attribute.Int("tree.live_nodes", nodeCount),
	)
}
