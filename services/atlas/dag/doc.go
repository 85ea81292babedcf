// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dag builds and queries the directory graph of a storage account.
//
// A cloud-storage "directory tree" is not a tree: an item may list several
// parents (shared placement), parents that no longer exist (dangling
// references), or parents that form a cycle (malformed account data). The
// package models the listing as a directed graph and absorbs every one of
// those anomalies into counters instead of failing, because the input comes
// from an external provider and cannot be assumed well formed.
//
// # Anomalies Are Data
//
// Nothing in this package returns an error for any input shape. Structural
// problems found during a build are counted in the snapshot's Warnings;
// traversals that hit their caps report Truncated=true alongside a partial,
// conservative result. The only failure mode left is a programming error in
// the caller, which is out of this package's hands.
//
// # Ownership Model
//
// Build copies the item values it is given; mutating an input Item after a
// build has no effect on the snapshot. A built DriveDag is immutable.
// Accessors that return slices return internal storage for efficiency;
// callers must not modify them.
//
// # Thread Safety
//
// A DriveDag is frozen at construction and safe for concurrent read access
// from any number of goroutines. There is no mutation API; a changed
// listing produces a whole new snapshot, and readers mid-traversal on the
// old snapshot are unaffected.
//
// # Lifecycle
//
//  1. Obtain an item listing (inventory package)
//  2. Build a snapshot with Build() or Builder.Build()
//  3. Query with ReachableFromRoots, SubgraphAround, CountDescendants,
//     MultiParentIDs, PathsToTarget
//  4. Throw the snapshot away when the listing changes and build a new one
package dag
