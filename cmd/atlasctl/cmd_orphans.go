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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DriveAtlas/services/atlas/dag"
)

var orphansMaxNodes int

// orphansCmd lists items unreachable from any root.
var orphansCmd = &cobra.Command{
	Use:   "orphans [LISTING]",
	Short: "List items unreachable from any root",
	Long: `Find items that no root can reach. In a healthy listing every item
hangs off a root; orphans only appear when the listing contains cycles
with no entry point from the root set.

Examples:
  atlasctl orphans listing.json
  atlasctl orphans listing.json --json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runOrphans,
}

func init() {
	orphansCmd.Flags().IntVar(&orphansMaxNodes, "max-nodes", 0,
		"Cap on visited nodes during the reachability sweep (0 = default)")
	rootCmd.AddCommand(orphansCmd)
}

// orphansReport is the JSON shape of the orphans output.
type orphansReport struct {
	OrphanIDs      []string `json:"orphanIds"`
	ReachableCount int      `json:"reachableCount"`
	Truncated      bool     `json:"truncated"`
}

// runOrphans runs the reachability sweep and prints the unreachable set.
func runOrphans(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	d, err := buildDag(ctx, args)
	if err != nil {
		fail("Failed to load listing", err)
	}

	var opts []dag.TraverseOption
	if orphansMaxNodes > 0 {
		opts = append(opts, dag.WithMaxNodes(orphansMaxNodes))
	}
	reach := d.ReachableFromRoots(ctx, d.Roots(), opts...)

	report := orphansReport{
		ReachableCount: reach.VisitedCount,
		Truncated:      reach.Truncated,
	}
	for id := range d.Nodes() {
		if _, ok := reach.Reachable[id]; !ok {
			report.OrphanIDs = append(report.OrphanIDs, id)
		}
	}

	if jsonOutput {
		if err := outputJSON(report); err != nil {
			fail("Failed to encode JSON", err)
		}
		return
	}

	if len(report.OrphanIDs) == 0 {
		fmt.Printf("No orphans: all %d item(s) are reachable from a root.\n", report.ReachableCount)
	} else {
		fmt.Printf("Found %d orphan(s):\n", len(report.OrphanIDs))
		for _, id := range report.OrphanIDs {
			name := ""
			if n, ok := d.GetNode(id); ok {
				name = n.Item.Name
			}
			fmt.Printf("  %s  %s\n", id, name)
		}
	}
	if report.Truncated {
		fmt.Println("  (reachability sweep truncated; some items may be misreported)")
	}
}
