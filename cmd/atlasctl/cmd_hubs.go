// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var hubsLimit int

// hubsCmd lists items shared by multiple parents.
var hubsCmd = &cobra.Command{
	Use:   "hubs [LISTING]",
	Short: "List items with more than one parent",
	Long: `Find items referenced by more than one folder. These are the shared
hubs of the drive: a file or folder that shows up in several places at
once. Results are sorted by parent count, most shared first.

Examples:
  atlasctl hubs listing.json
  atlasctl hubs listing.json --limit 10 --json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHubs,
}

func init() {
	hubsCmd.Flags().IntVar(&hubsLimit, "limit", 20,
		"Maximum number of hubs to print")
	rootCmd.AddCommand(hubsCmd)
}

// hubEntry is one multi-parent item in the hubs output.
type hubEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ParentCount int      `json:"parentCount"`
	ParentIDs   []string `json:"parentIds"`
}

// runHubs enumerates multi-parent items, most shared first.
func runHubs(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	d, err := buildDag(ctx, args)
	if err != nil {
		fail("Failed to load listing", err)
	}

	var hubs []hubEntry
	for _, id := range d.MultiParentIDs() {
		n, ok := d.GetNode(id)
		if !ok {
			continue
		}
		hubs = append(hubs, hubEntry{
			ID:          id,
			Name:        n.Item.Name,
			ParentCount: len(n.ParentIDs),
			ParentIDs:   n.ParentIDs,
		})
	}
	sort.SliceStable(hubs, func(i, j int) bool {
		return hubs[i].ParentCount > hubs[j].ParentCount
	})
	if hubsLimit > 0 && len(hubs) > hubsLimit {
		hubs = hubs[:hubsLimit]
	}

	if jsonOutput {
		if err := outputJSON(hubs); err != nil {
			fail("Failed to encode JSON", err)
		}
		return
	}

	if len(hubs) == 0 {
		fmt.Println("No multi-parent items found.")
		return
	}
	fmt.Printf("Found %d shared item(s):\n", len(hubs))
	for _, h := range hubs {
		fmt.Printf("  %s  %s  (%d parents)\n", h.ID, h.Name, h.ParentCount)
	}
}
