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
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadListing decodes a JSON item listing from r.
//
// Description:
//
//	The expected shape is a JSON array of Item objects. Items with a null
//	parentIds field are normalized to an empty slice so that "no parent"
//	has exactly one representation downstream.
//
// Inputs:
//
//	r - Reader positioned at the start of the JSON document.
//
// Outputs:
//
//	[]Item - The decoded listing.
//	error - Non-nil on malformed JSON or ID violations (ValidateListing).
func ReadListing(r io.Reader) ([]Item, error) {
	var items []Item
	dec := json.NewDecoder(r)
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode item listing: %w", err)
	}

	for i := range items {
		if items[i].ParentIDs == nil {
			items[i].ParentIDs = []string{}
		}
	}

	if err := ValidateListing(items); err != nil {
		return nil, err
	}
	return items, nil
}

// ReadListingFile reads a JSON item listing from the given path.
func ReadListingFile(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open item listing: %w", err)
	}
	defer f.Close()

	items, err := ReadListing(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// WriteListing encodes items as an indented JSON array to w.
//
// Used by the CLI to materialize listings fetched from remote sources so
// they can be inspected and replayed locally.
func WriteListing(w io.Writer, items []Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode item listing: %w", err)
	}
	return nil
}
