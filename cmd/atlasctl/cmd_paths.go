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
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/DriveAtlas/services/atlas/dag"
)

var (
	pathsMaxPaths   int
	pathsMaxPathLen int
)

// pathsCmd reconstructs root-to-item paths.
var pathsCmd = &cobra.Command{
	Use:   "paths [LISTING] TARGET",
	Short: "Show shortest paths from each root to an item",
	Long: `Reconstruct one shortest path from each root to the target item.
Roots that cannot reach the target are skipped.

Examples:
  atlasctl paths listing.json doc
  atlasctl paths listing.json doc --max-paths 3
  atlasctl paths doc --gcs-bucket my-drive-bucket`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runPaths,
}

func init() {
	pathsCmd.Flags().IntVar(&pathsMaxPaths, "max-paths", 0,
		"Maximum number of paths to return (0 = default)")
	pathsCmd.Flags().IntVar(&pathsMaxPathLen, "max-path-len", 0,
		"Maximum path length in nodes (0 = default)")
	rootCmd.AddCommand(pathsCmd)
}

// pathsReport is the JSON shape of the paths output.
type pathsReport struct {
	TargetID  string     `json:"targetId"`
	Paths     [][]string `json:"paths"`
	Truncated bool       `json:"truncated"`
}

// runPaths labels distances and walks one shortest path per root.
func runPaths(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	targetID := args[len(args)-1]
	listingArgs := args[:len(args)-1]

	d, err := buildDag(ctx, listingArgs)
	if err != nil {
		fail("Failed to load listing", err)
	}

	var opts []dag.TraverseOption
	if pathsMaxPaths > 0 {
		opts = append(opts, dag.WithMaxPaths(pathsMaxPaths))
	}
	if pathsMaxPathLen > 0 {
		opts = append(opts, dag.WithMaxPathLen(pathsMaxPathLen))
	}
	result := d.PathsToTarget(ctx, targetID, d.Roots(), opts...)

	report := pathsReport{
		TargetID:  targetID,
		Paths:     result.Paths,
		Truncated: result.Truncated,
	}

	if jsonOutput {
		if err := outputJSON(report); err != nil {
			fail("Failed to encode JSON", err)
		}
		return
	}

	if len(report.Paths) == 0 {
		fmt.Printf("No root reaches %s.\n", targetID)
	} else {
		fmt.Printf("Paths to %s:\n", targetID)
		for i, path := range report.Paths {
			fmt.Printf("Path %d (%d nodes):\n", i+1, len(path))
			fmt.Printf("  %s\n", strings.Join(path, " -> "))
		}
	}
	if report.Truncated {
		fmt.Println("  (results truncated; raise --max-paths or --max-path-len)")
	}
}
