// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package inventory provides the file/folder item model and item sources.
//
// An Item is one record from a cloud-storage account listing: a file or a
// folder, with zero or more parent-folder references. Unlike a conventional
// filesystem, an item may list more than one parent ("shared" placement),
// may list a parent that no longer exists (deleted folder), or may be part
// of a reference cycle in malformed account data. The inventory package
// makes no attempt to repair any of that; it only carries the records.
// Structural interpretation belongs to the dag package.
//
// # Ownership Model
//
// Items are value types. Sources return fresh slices on every call; callers
// may retain them indefinitely. The dag package copies what it needs during
// a build, so mutating an Item after handing it to a build has no effect on
// the resulting snapshot.
package inventory

import (
	"errors"
	"fmt"
)

// Sentinel errors for item validation and sources.
var (
	// ErrEmptyID is returned when an item has no ID.
	ErrEmptyID = errors.New("item has empty id")

	// ErrDuplicateID is returned when two items in one listing share an ID.
	ErrDuplicateID = errors.New("duplicate item id")

	// ErrSourceUnavailable is returned when an item source cannot be reached.
	ErrSourceUnavailable = errors.New("item source unavailable")
)

// Item is one file or folder record from a storage account listing.
//
// ParentIDs is the raw reference list as reported by the provider. It may
// be empty (root candidate), contain IDs absent from the listing (dangling
// reference), contain the same ID twice (duplicate edge), or contain more
// than one distinct ID (multi-parent item). "No parent" is always an empty
// slice, never a sentinel value.
type Item struct {
	// ID is the provider-assigned identifier, unique within one listing.
	ID string `json:"id"`

	// Name is the display name of the file or folder.
	Name string `json:"name"`

	// IsContainer is true for folders.
	IsContainer bool `json:"isContainer"`

	// SizeBytes is the item size. Zero for folders and items the provider
	// reports no size for.
	SizeBytes int64 `json:"sizeBytes,omitempty"`

	// ParentIDs lists the parent folder references, in provider order.
	ParentIDs []string `json:"parentIds"`
}

// Validate checks that the item is structurally usable.
//
// Only the ID is required; everything else, including malformed parent
// references, is handled downstream by the graph builder.
func (it Item) Validate() error {
	if it.ID == "" {
		return ErrEmptyID
	}
	return nil
}

// ValidateListing checks a full listing for the one guarantee the graph
// builder relies on: globally unique, non-empty IDs.
//
// Inputs:
//
//	items - The listing to check.
//
// Outputs:
//
//	error - Non-nil if any item has an empty or duplicated ID.
func ValidateListing(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("item[%d]: %w", i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item[%d]: %w: %s", i, ErrDuplicateID, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
