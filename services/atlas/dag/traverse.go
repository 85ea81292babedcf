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
	"time"
)

// traverseOptions holds the caps applied to one traversal call.
type traverseOptions struct {
	maxNodes   int
	maxEdges   int
	maxHops    int
	maxPaths   int
	maxPathLen int
}

func defaultTraverseOptions() traverseOptions {
	return traverseOptions{
		maxNodes:   DefaultMaxVisitNodes,
		maxEdges:   DefaultMaxSubgraphEdges,
		maxHops:    DefaultMaxHops,
		maxPaths:   DefaultMaxPaths,
		maxPathLen: DefaultMaxPathLen,
	}
}

// TraverseOption is a functional option capping one traversal call.
//
// Omitting a cap leaves it at a generous internal default; an explicit
// value of zero or less is clamped to one traversal step rather than
// rejected, so sliders wired straight into these options cannot produce a
// failing call.
type TraverseOption func(*traverseOptions)

// clampCap enforces the minimum of one step for explicit caps.
func clampCap(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// WithMaxNodes caps how many distinct nodes a traversal may visit.
func WithMaxNodes(n int) TraverseOption {
	return func(o *traverseOptions) {
		o.maxNodes = clampCap(n)
	}
}

// WithMaxEdges caps how many edges a returned subgraph may include.
func WithMaxEdges(n int) TraverseOption {
	return func(o *traverseOptions) {
		o.maxEdges = clampCap(n)
	}
}

// WithMaxHops caps how many edge-traversals from the start a traversal may
// expand.
func WithMaxHops(n int) TraverseOption {
	return func(o *traverseOptions) {
		o.maxHops = clampCap(n)
	}
}

// WithMaxPaths caps how many paths PathsToTarget reconstructs.
func WithMaxPaths(n int) TraverseOption {
	return func(o *traverseOptions) {
		o.maxPaths = clampCap(n)
	}
}

// WithMaxPathLen caps the length, in nodes, of one reconstructed path.
func WithMaxPathLen(n int) TraverseOption {
	return func(o *traverseOptions) {
		o.maxPathLen = clampCap(n)
	}
}

func applyTraverseOptions(opts []TraverseOption) traverseOptions {
	options := defaultTraverseOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// ReachabilityResult is the outcome of a ReachableFromRoots call.
type ReachabilityResult struct {
	// Reachable holds every id recorded before any cap was hit.
	Reachable map[string]struct{}

	// Truncated is true if a cap stopped the traversal early. The set is
	// then a conservative under-approximation: ids it contains are
	// certainly reachable, ids it lacks are unknown.
	Truncated bool

	// VisitedCount is the number of distinct nodes recorded.
	VisitedCount int
}

// ReachableFromRoots returns the ids reachable from the given roots along
// child edges.
//
// Description:
//
//	Multi-source breadth-first traversal strictly along child edges.
//	Ids absent from the snapshot are ignored. The usual consumer is
//	orphan detection: set-difference the result against all node ids.
//	Truncation never claims an unreachable node is reachable.
//
// Inputs:
//
//	ctx - Context for tracing.
//	rootIDs - Starting ids; typically Roots(), but any set works.
//	opts - Caps (WithMaxNodes, WithMaxHops).
func (d *DriveDag) ReachableFromRoots(ctx context.Context, rootIDs []string, opts ...TraverseOption) ReachabilityResult {
	ctx, span := startQuerySpan(ctx, "ReachableFromRoots", "")
	defer span.End()
	start := time.Now()
	defer func() { recordQueryMetrics(ctx, "reachable_from_roots", time.Since(start)) }()

	options := applyTraverseOptions(opts)

	result := ReachabilityResult{
		Reachable: make(map[string]struct{}),
	}

	type queueItem struct {
		id   string
		hops int
	}
	queue := make([]queueItem, 0, len(rootIDs))

	for _, id := range rootIDs {
		if _, ok := d.nodes[id]; !ok {
			continue
		}
		if _, seen := result.Reachable[id]; seen {
			continue
		}
		if len(result.Reachable) >= options.maxNodes {
			result.Truncated = true
			break
		}
		result.Reachable[id] = struct{}{}
		queue = append(queue, queueItem{id, 0})
	}

	for len(queue) > 0 && !result.Truncated {
		item := queue[0]
		queue = queue[1:]

		for _, child := range d.children[item.id] {
			if _, seen := result.Reachable[child]; seen {
				continue
			}
			if item.hops+1 > options.maxHops {
				result.Truncated = true
				continue
			}
			if len(result.Reachable) >= options.maxNodes {
				result.Truncated = true
				break
			}
			result.Reachable[child] = struct{}{}
			queue = append(queue, queueItem{child, item.hops + 1})
		}
	}

	result.VisitedCount = len(result.Reachable)
	return result
}

// SubgraphResult is the outcome of a SubgraphAround call.
type SubgraphResult struct {
	// NodeIDs are the discovered ids in breadth-first discovery order,
	// starting with the center.
	NodeIDs []string

	// Edges are the directed edges of the full graph with both endpoints
	// inside NodeIDs, capped by WithMaxEdges.
	Edges []Edge

	// Truncated is true if a node or edge cap stopped discovery early.
	Truncated bool

	// VisitedNodes is len(NodeIDs).
	VisitedNodes int

	// IncludedEdges is len(Edges).
	IncludedEdges int
}

// SubgraphAround extracts the local neighborhood of one node.
//
// Description:
//
//	Discovery treats the graph as undirected, expanding along both parent
//	and child adjacency breadth-first from centerID, bounded by hops and
//	WithMaxNodes. The returned edge list is then the subset of directed
//	edges whose endpoints both fall inside the discovered set, bounded by
//	WithMaxEdges. With hops=0 the result is exactly the center and no
//	edges. An unknown centerID yields an empty result.
//
// Inputs:
//
//	ctx - Context for tracing.
//	centerID - The node to explore around.
//	hops - Neighborhood radius in edge-traversals. Negative is treated
//	    as zero.
//	opts - Caps (WithMaxNodes, WithMaxEdges).
func (d *DriveDag) SubgraphAround(ctx context.Context, centerID string, hops int, opts ...TraverseOption) SubgraphResult {
	ctx, span := startQuerySpan(ctx, "SubgraphAround", centerID)
	defer span.End()
	start := time.Now()
	defer func() { recordQueryMetrics(ctx, "subgraph_around", time.Since(start)) }()

	options := applyTraverseOptions(opts)

	var result SubgraphResult
	if _, ok := d.nodes[centerID]; !ok {
		return result
	}
	if hops < 0 {
		hops = 0
	}

	inSet := make(map[string]struct{})
	type queueItem struct {
		id   string
		hops int
	}

	inSet[centerID] = struct{}{}
	result.NodeIDs = append(result.NodeIDs, centerID)
	queue := []queueItem{{centerID, 0}}

	for len(queue) > 0 && !result.Truncated {
		item := queue[0]
		queue = queue[1:]

		if item.hops >= hops {
			continue
		}

		// Children first, then parents, matching edge direction out of
		// and into the node.
		neighbors := make([]string, 0, len(d.children[item.id])+len(d.parents[item.id]))
		neighbors = append(neighbors, d.children[item.id]...)
		neighbors = append(neighbors, d.parents[item.id]...)

		for _, next := range neighbors {
			if _, seen := inSet[next]; seen {
				continue
			}
			if len(inSet) >= options.maxNodes {
				result.Truncated = true
				break
			}
			inSet[next] = struct{}{}
			result.NodeIDs = append(result.NodeIDs, next)
			queue = append(queue, queueItem{next, item.hops + 1})
		}
	}

	// Induced directed edges over the discovered set.
	for _, id := range result.NodeIDs {
		for _, child := range d.children[id] {
			if _, ok := inSet[child]; !ok {
				continue
			}
			if len(result.Edges) >= options.maxEdges {
				result.Truncated = true
				break
			}
			result.Edges = append(result.Edges, Edge{ParentID: id, ChildID: child})
		}
		if result.Truncated && len(result.Edges) >= options.maxEdges {
			break
		}
	}

	result.VisitedNodes = len(result.NodeIDs)
	result.IncludedEdges = len(result.Edges)
	return result
}

// DescendantResult is the outcome of a CountDescendants call.
type DescendantResult struct {
	// DescendantCount is the number of distinct nodes below the start,
	// excluding the start itself.
	DescendantCount int

	// Truncated is true if a cap stopped the traversal early; the count
	// is then a lower bound.
	Truncated bool

	// VisitedNodes is the number of distinct nodes visited, including the
	// start.
	VisitedNodes int
}

// CountDescendants counts the nodes reachable from startID along child
// edges.
//
// The start node is visited but excluded from the count, so for a known id
// DescendantCount is always VisitedNodes-1. An unknown startID yields the
// zero result. Used to rank hub nodes by how much of the graph hangs
// beneath them.
func (d *DriveDag) CountDescendants(ctx context.Context, startID string, opts ...TraverseOption) DescendantResult {
	ctx, span := startQuerySpan(ctx, "CountDescendants", startID)
	defer span.End()

	var result DescendantResult
	if _, ok := d.nodes[startID]; !ok {
		return result
	}

	reach := d.ReachableFromRoots(ctx, []string{startID}, opts...)
	result.Truncated = reach.Truncated
	result.VisitedNodes = reach.VisitedCount
	if result.VisitedNodes > 0 {
		result.DescendantCount = result.VisitedNodes - 1
	}
	return result
}

// MultiParentIDs returns the ids with more than one resolvable parent, in
// listing order.
//
// These are the graph's genuine shared items, the reason the structure is
// a DAG and not a tree, and the seed set for hub ranking and the path
// explorer.
func (d *DriveDag) MultiParentIDs() []string {
	var ids []string
	for _, id := range d.order {
		if len(d.nodes[id].ParentIDs) > 1 {
			ids = append(ids, id)
		}
	}
	return ids
}
