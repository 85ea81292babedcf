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

// PathsResult is the outcome of a PathsToTarget call.
type PathsResult struct {
	// Paths holds one shortest root-to-target path per root that can
	// reach the target, each as an ordered id slice from root to target.
	Paths [][]string

	// Truncated is true if a cap cut the distance labeling, the number of
	// paths, or the length of a path.
	Truncated bool
}

// PathsToTarget reconstructs one shortest path from each given root to the
// target.
//
// Description:
//
//	Answers "how do I reach this item?" for the path explorer. A reverse
//	breadth-first pass from the target along parent edges labels every
//	node that can reach the target with its hop distance. Each root
//	carrying a label then yields one path by walking forward, always
//	stepping to a child whose distance is exactly one less than the
//	current node's. Ties pick the first child in adjacency order, so the
//	choice is deterministic for a given listing.
//
// Inputs:
//
//	ctx - Context for tracing.
//	targetID - The item paths should end at.
//	rootIDs - Candidate starting points; roots that cannot reach the
//	    target contribute nothing.
//	opts - Caps (WithMaxNodes for the labeling pass, WithMaxPaths,
//	    WithMaxPathLen).
//
// Outputs:
//
//	PathsResult - Paths in rootIDs order. An unknown target yields no
//	    paths.
func (d *DriveDag) PathsToTarget(ctx context.Context, targetID string, rootIDs []string, opts ...TraverseOption) PathsResult {
	ctx, span := startQuerySpan(ctx, "PathsToTarget", targetID)
	defer span.End()
	start := time.Now()
	defer func() { recordQueryMetrics(ctx, "paths_to_target", time.Since(start)) }()

	options := applyTraverseOptions(opts)

	var result PathsResult
	if _, ok := d.nodes[targetID]; !ok {
		return result
	}

	// Reverse BFS from the target: dist[id] is the hop count from id down
	// to the target along child edges.
	dist := map[string]int{targetID: 0}
	queue := []string{targetID}
	labelTruncated := false

	for len(queue) > 0 && !labelTruncated {
		id := queue[0]
		queue = queue[1:]

		for _, parent := range d.parents[id] {
			if _, seen := dist[parent]; seen {
				continue
			}
			if len(dist) >= options.maxNodes {
				labelTruncated = true
				break
			}
			dist[parent] = dist[id] + 1
			queue = append(queue, parent)
		}
	}
	if labelTruncated {
		result.Truncated = true
	}

	for _, root := range rootIDs {
		rootDist, ok := dist[root]
		if !ok {
			continue
		}
		if len(result.Paths) >= options.maxPaths {
			result.Truncated = true
			break
		}

		path := make([]string, 0, rootDist+1)
		onPath := make(map[string]struct{})
		current := root
		pathTruncated := false

		for {
			if len(path) >= options.maxPathLen {
				pathTruncated = true
				break
			}
			// A repeat means a cycle fed the labeling; abandon rather
			// than loop.
			if _, seen := onPath[current]; seen {
				pathTruncated = true
				break
			}
			path = append(path, current)
			onPath[current] = struct{}{}

			currentDist := dist[current]
			if currentDist == 0 {
				break
			}

			next := ""
			for _, child := range d.children[current] {
				if childDist, ok := dist[child]; ok && childDist == currentDist-1 {
					next = child
					break
				}
			}
			if next == "" {
				// Labeling was cut before this branch was fully
				// explored.
				pathTruncated = true
				break
			}
			current = next
		}

		if pathTruncated {
			result.Truncated = true
			continue
		}
		result.Paths = append(result.Paths, path)
	}

	return result
}
