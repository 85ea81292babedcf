// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package inventory

import (
	"errors"
	"strings"
	"testing"
)

func TestItemValidate(t *testing.T) {
	t.Run("valid item", func(t *testing.T) {
		it := Item{ID: "a", Name: "notes.txt", ParentIDs: []string{"root"}}
		if err := it.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		it := Item{Name: "nameless"}
		if err := it.Validate(); !errors.Is(err, ErrEmptyID) {
			t.Fatalf("Validate() = %v, want ErrEmptyID", err)
		}
	})

	t.Run("dangling parents are not a validation error", func(t *testing.T) {
		it := Item{ID: "a", ParentIDs: []string{"gone", "gone"}}
		if err := it.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})
}

func TestValidateListing(t *testing.T) {
	t.Run("unique ids pass", func(t *testing.T) {
		items := []Item{
			{ID: "root", IsContainer: true, ParentIDs: []string{}},
			{ID: "a", ParentIDs: []string{"root"}},
		}
		if err := ValidateListing(items); err != nil {
			t.Fatalf("ValidateListing() = %v, want nil", err)
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		items := []Item{
			{ID: "a", ParentIDs: []string{}},
			{ID: "b", ParentIDs: []string{}},
			{ID: "a", ParentIDs: []string{}},
		}
		err := ValidateListing(items)
		if !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("ValidateListing() = %v, want ErrDuplicateID", err)
		}
		if !strings.Contains(err.Error(), "item[2]") {
			t.Errorf("error should name the offending index, got %q", err)
		}
	})

	t.Run("empty id rejected with index", func(t *testing.T) {
		items := []Item{
			{ID: "a", ParentIDs: []string{}},
			{ParentIDs: []string{}},
		}
		err := ValidateListing(items)
		if !errors.Is(err, ErrEmptyID) {
			t.Fatalf("ValidateListing() = %v, want ErrEmptyID", err)
		}
		if !strings.Contains(err.Error(), "item[1]") {
			t.Errorf("error should name the offending index, got %q", err)
		}
	})

	t.Run("empty listing passes", func(t *testing.T) {
		if err := ValidateListing(nil); err != nil {
			t.Fatalf("ValidateListing(nil) = %v, want nil", err)
		}
	})
}
