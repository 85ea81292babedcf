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
	"fmt"
	"time"

	"github.com/AleutianAI/DriveAtlas/services/atlas/inventory"
)

// BuilderOptions configures Builder behavior.
type BuilderOptions struct {
	// MaxItems is the maximum listing size accepted by a build. Items
	// beyond the limit are dropped and the drop is noted in Warnings.
	// Default: 1,000,000
	MaxItems int
}

// DefaultBuilderOptions returns sensible defaults.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		MaxItems: DefaultMaxItems,
	}
}

// BuilderOption is a functional option for configuring Builder.
type BuilderOption func(*BuilderOptions)

// WithMaxItems sets the maximum listing size a build accepts.
func WithMaxItems(n int) BuilderOption {
	return func(o *BuilderOptions) {
		o.MaxItems = n
	}
}

// Builder constructs DriveDag snapshots from item listings.
//
// The builder is stateless and can be reused across builds; each Build()
// call produces an independent snapshot.
//
// Thread Safety:
//
//	Builder is safe for concurrent use.
type Builder struct {
	options BuilderOptions
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts ...BuilderOption) *Builder {
	options := DefaultBuilderOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxItems <= 0 {
		options.MaxItems = DefaultMaxItems
	}
	return &Builder{options: options}
}

// Build constructs a snapshot with a default Builder.
func Build(ctx context.Context, items []inventory.Item) *DriveDag {
	return NewBuilder().Build(ctx, items)
}

// Build constructs a DriveDag snapshot from the given listing.
//
// Description:
//
//	Runs in one pass over the items plus one pass over their parent
//	references (O(items + edges)), with no per-node recursion, so deep or
//	cyclic inputs cannot overflow the stack. Malformed data never fails
//	the build: dangling parent references, duplicate edges and cycles are
//	counted into the snapshot's Warnings and construction continues.
//
// Inputs:
//
//	ctx - Context for tracing/metrics only. The build always runs to
//	    completion; per-call work is bounded by the listing size.
//	items - The listing. Ids are expected to be unique (see inventory
//	    .ValidateListing); a repeated id keeps its first occurrence and
//	    the collision is noted in Warnings.
//
// Outputs:
//
//	*DriveDag - The immutable snapshot. Never nil.
//
// Build Phases:
//
//  1. INDEX: map ids to nodes; this index defines "resolvable"
//  2. LINK: create deduplicated edges, count dangling refs and duplicates
//  3. ORDER: Kahn's algorithm; cycle remainder appended in listing order
//  4. DEPTH: longest-path propagation along the topological order
func (b *Builder) Build(ctx context.Context, items []inventory.Item) *DriveDag {
	ctx, span := startBuildSpan(ctx, len(items))
	defer span.End()
	start := time.Now()

	var droppedOverflow int
	if len(items) > b.options.MaxItems {
		droppedOverflow = len(items) - b.options.MaxItems
		items = items[:b.options.MaxItems]
	}

	d := &DriveDag{
		nodes:    make(map[string]*Node, len(items)),
		order:    make([]string, 0, len(items)),
		edges:    make([]Edge, 0, len(items)),
		children: make(map[string][]string, len(items)),
		parents:  make(map[string][]string, len(items)),
		depth:    make(map[string]int, len(items)),
	}

	// Phase 1: index items by id.
	var duplicateIDs int
	for _, it := range items {
		if it.ID == "" {
			duplicateIDs++ // unusable record, counted with collisions
			continue
		}
		if _, exists := d.nodes[it.ID]; exists {
			duplicateIDs++
			continue
		}
		// Detach from the caller's backing array so later mutation of the
		// input cannot reach into the snapshot.
		it.ParentIDs = append([]string(nil), it.ParentIDs...)
		d.nodes[it.ID] = &Node{Item: it}
		d.order = append(d.order, it.ID)
	}

	// Phase 2: resolve parent references into deduplicated edges.
	type edgeKey struct{ parent, child string }
	seenEdges := make(map[edgeKey]struct{}, len(items))
	for _, childID := range d.order {
		node := d.nodes[childID]
		for _, parentID := range node.Item.ParentIDs {
			parentNode, ok := d.nodes[parentID]
			if !ok {
				d.warnings.MissingParentRefs++
				continue
			}
			key := edgeKey{parentID, childID}
			if _, dup := seenEdges[key]; dup {
				d.warnings.DuplicateEdges++
				continue
			}
			seenEdges[key] = struct{}{}

			d.edges = append(d.edges, Edge{ParentID: parentID, ChildID: childID})
			node.ParentIDs = append(node.ParentIDs, parentID)
			parentNode.ChildIDs = append(parentNode.ChildIDs, childID)
		}
	}
	for _, id := range d.order {
		n := d.nodes[id]
		d.children[id] = n.ChildIDs
		d.parents[id] = n.ParentIDs
	}

	// Roots: empty resolvable-parent set. An item whose only parent was
	// dangling lands here on purpose; the reference is already counted.
	for _, id := range d.order {
		if len(d.nodes[id].ParentIDs) == 0 {
			d.roots = append(d.roots, id)
		}
	}

	b.linearize(d)
	b.computeDepths(d)
	b.summarize(d, duplicateIDs, droppedOverflow)
	d.builtAtMilli = time.Now().UnixMilli()

	setBuildSpanResult(span, len(d.nodes), len(d.edges), d.warnings)
	recordBuildMetrics(ctx, time.Since(start), len(d.nodes), len(d.edges), !d.warnings.CycleDetected)
	return d
}

// linearize fills topoOrder via Kahn's algorithm over the deduplicated
// edges. The queue is seeded and drained in listing order so the result is
// stable for identical inputs. Nodes left with non-zero in-degree form the
// cyclic remainder and are appended in listing order, keeping the
// invariant len(topoOrder) == NodeCount for every input.
func (b *Builder) linearize(d *DriveDag) {
	indeg := make(map[string]int, len(d.nodes))
	for _, id := range d.order {
		indeg[id] = len(d.nodes[id].ParentIDs)
	}

	queue := make([]string, 0, len(d.roots))
	queue = append(queue, d.roots...)

	d.topoOrder = make([]string, 0, len(d.nodes))
	placed := make(map[string]struct{}, len(d.nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		d.topoOrder = append(d.topoOrder, id)
		placed[id] = struct{}{}

		for _, child := range d.nodes[id].ChildIDs {
			indeg[child]--
			if indeg[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(d.topoOrder) < len(d.nodes) {
		d.warnings.CycleDetected = true
		d.warnings.CycleNodeCount = len(d.nodes) - len(d.topoOrder)
		for _, id := range d.order {
			if _, ok := placed[id]; !ok {
				d.topoOrder = append(d.topoOrder, id)
			}
		}
	}
}

// computeDepths propagates longest-path depth along the Kahn-placed prefix
// of topoOrder.
//
// Roots start at 0 and every edge pushes depth[child] to at least
// depth[parent]+1. Only the Kahn-placed prefix is a valid linearization;
// the cyclic remainder appended after it is not, so propagation never
// enters it and every cycle participant keeps DepthUndefined, even when a
// root has an edge into the cycle. MaxDepth therefore covers defined
// depths only.
func (b *Builder) computeDepths(d *DriveDag) {
	for _, id := range d.order {
		d.depth[id] = DepthUndefined
	}
	for _, id := range d.roots {
		d.depth[id] = 0
	}

	placedLen := len(d.topoOrder) - d.warnings.CycleNodeCount
	placed := make(map[string]struct{}, placedLen)
	for _, id := range d.topoOrder[:placedLen] {
		placed[id] = struct{}{}
	}

	d.maxDepth = 0
	for _, id := range d.topoOrder[:placedLen] {
		from := d.depth[id]
		if from > d.maxDepth {
			d.maxDepth = from
		}
		for _, child := range d.nodes[id].ChildIDs {
			if _, ok := placed[child]; !ok {
				continue
			}
			if next := from + 1; next > d.depth[child] {
				d.depth[child] = next
			}
		}
	}
}

// summarize assembles the display-ready warning notes.
func (b *Builder) summarize(d *DriveDag, duplicateIDs, droppedOverflow int) {
	w := &d.warnings
	if w.MissingParentRefs > 0 {
		w.Notes = append(w.Notes, fmt.Sprintf("%d parent %s pointed at items missing from the listing",
			w.MissingParentRefs, plural(w.MissingParentRefs, "reference", "references")))
	}
	if w.DuplicateEdges > 0 {
		w.Notes = append(w.Notes, fmt.Sprintf("%d duplicate parent/child %s collapsed",
			w.DuplicateEdges, plural(w.DuplicateEdges, "pair", "pairs")))
	}
	if w.CycleDetected {
		w.Notes = append(w.Notes, fmt.Sprintf("reference cycle detected involving %d %s",
			w.CycleNodeCount, plural(w.CycleNodeCount, "item", "items")))
	}
	if duplicateIDs > 0 {
		w.Notes = append(w.Notes, fmt.Sprintf("%d %s with empty or repeated ids ignored",
			duplicateIDs, plural(duplicateIDs, "item", "items")))
	}
	if droppedOverflow > 0 {
		w.Notes = append(w.Notes, fmt.Sprintf("listing truncated: %d %s beyond the configured maximum dropped",
			droppedOverflow, plural(droppedOverflow, "item", "items")))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
