// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dag

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for dag operations.
var (
	tracer = otel.Tracer("driveatlas.dag")
	meter  = otel.Meter("driveatlas.dag")
)

// Metrics for dag building operations.
var (
	buildLatency metric.Float64Histogram
	buildTotal   metric.Int64Counter
	nodesBuilt   metric.Int64Histogram
	edgesBuilt   metric.Int64Histogram
	queryLatency metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"dag_build_duration_seconds",
			metric.WithDescription("Duration of dag build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildTotal, err = meter.Int64Counter(
			"dag_build_total",
			metric.WithDescription("Total number of dag build operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesBuilt, err = meter.Int64Histogram(
			"dag_nodes_built",
			metric.WithDescription("Number of nodes per built snapshot"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesBuilt, err = meter.Int64Histogram(
			"dag_edges_built",
			metric.WithDescription("Number of edges per built snapshot"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		queryLatency, err = meter.Float64Histogram(
			"dag_query_duration_seconds",
			metric.WithDescription("Duration of dag traversal operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records metrics for a build operation.
func recordBuildMetrics(ctx context.Context, duration time.Duration, nodeCount, edgeCount int, acyclic bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("acyclic", acyclic))

	buildLatency.Record(ctx, duration.Seconds(), attrs)
	buildTotal.Add(ctx, 1, attrs)

	nodesBuilt.Record(ctx, int64(nodeCount))
	edgesBuilt.Record(ctx, int64(edgeCount))
}

// recordQueryMetrics records metrics for a traversal operation.
func recordQueryMetrics(ctx context.Context, queryType string, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}

	queryLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("query_type", queryType)),
	)
}

// startQuerySpan creates a span for a traversal operation.
func startQuerySpan(ctx context.Context, queryType, nodeID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "DriveDag."+queryType,
		trace.WithAttributes(
			attribute.String("dag.query_type", queryType),
			attribute.String("dag.node_id", nodeID),
		),
	)
}

// startBuildSpan creates a span for a build operation.
func startBuildSpan(ctx context.Context, itemCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Builder.Build",
		trace.WithAttributes(
			attribute.Int("dag.item_count", itemCount),
		),
	)
}

// setBuildSpanResult sets the result attributes on a build span.
func setBuildSpanResult(span trace.Span, nodeCount, edgeCount int, warnings Warnings) {
	span.SetAttributes(
		attribute.Int("dag.node_count", nodeCount),
		attribute.Int("dag.edge_count", edgeCount),
		attribute.Int("dag.missing_parent_refs", warnings.MissingParentRefs),
		attribute.Int("dag.duplicate_edges", warnings.DuplicateEdges),
		attribute.Bool("dag.cycle_detected", warnings.CycleDetected),
	)
}
