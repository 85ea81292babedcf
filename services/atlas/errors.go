// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package atlas

import "errors"

// Sentinel errors for the Atlas service.
var (
	// ErrSnapshotNotFound indicates no snapshot exists for the given id.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotExpired indicates the cached snapshot has passed its TTL.
	ErrSnapshotExpired = errors.New("snapshot expired")

	// ErrListingTooLarge indicates the listing exceeds the configured item limit.
	ErrListingTooLarge = errors.New("listing exceeds item limit")

	// ErrEmptyListing indicates the request carried no items.
	ErrEmptyListing = errors.New("listing contains no items")

	// ErrNodeNotFound indicates the requested item id is not in the snapshot.
	ErrNodeNotFound = errors.New("item not found in snapshot")

	// ErrBuildInProgress indicates another build is already running for this listing name.
	ErrBuildInProgress = errors.New("build in progress")

	// ErrStoreUnavailable indicates no persistent store is configured.
	ErrStoreUnavailable = errors.New("persistent store not configured")
)
