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

// inspectCmd summarizes the structure of a listing.
var inspectCmd = &cobra.Command{
	Use:   "inspect [LISTING]",
	Short: "Summarize the structure of a drive listing",
	Long: `Build a graph from the listing and print structure statistics:
node and edge counts, roots, maximum depth, and any anomalies found
while building (dangling parent references, duplicate edges, cycles).

Examples:
  atlasctl inspect listing.json
  atlasctl inspect listing.json --json
  atlasctl inspect --gcs-bucket my-drive-bucket --gcs-prefix exports/`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// inspectReport is the JSON shape of the inspect output.
type inspectReport struct {
	NodeCount int          `json:"nodeCount"`
	EdgeCount int          `json:"edgeCount"`
	RootCount int          `json:"rootCount"`
	Roots     []string     `json:"roots"`
	MaxDepth  int          `json:"maxDepth"`
	Warnings  dag.Warnings `json:"warnings"`
}

// runInspect builds the graph and prints the summary.
func runInspect(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	d, err := buildDag(ctx, args)
	if err != nil {
		fail("Failed to load listing", err)
	}

	report := inspectReport{
		NodeCount: d.NodeCount(),
		EdgeCount: d.EdgeCount(),
		RootCount: len(d.Roots()),
		Roots:     d.Roots(),
		MaxDepth:  d.MaxDepth(),
		Warnings:  d.Warnings(),
	}

	if jsonOutput {
		if err := outputJSON(report); err != nil {
			fail("Failed to encode JSON", err)
		}
		return
	}

	fmt.Printf("Nodes:     %d\n", report.NodeCount)
	fmt.Printf("Edges:     %d\n", report.EdgeCount)
	fmt.Printf("Roots:     %d\n", report.RootCount)
	for _, id := range report.Roots {
		name := ""
		if n, ok := d.GetNode(id); ok {
			name = n.Item.Name
		}
		fmt.Printf("  %s  %s\n", id, name)
	}
	fmt.Printf("Max depth: %d\n", report.MaxDepth)

	w := report.Warnings
	if w.MissingParentRefs == 0 && w.DuplicateEdges == 0 && !w.CycleDetected && len(w.Notes) == 0 {
		fmt.Println("\nNo anomalies found.")
		return
	}
	fmt.Println("\nAnomalies:")
	if w.MissingParentRefs > 0 {
		fmt.Printf("  %d dangling parent reference(s)\n", w.MissingParentRefs)
	}
	if w.DuplicateEdges > 0 {
		fmt.Printf("  %d duplicate edge(s) collapsed\n", w.DuplicateEdges)
	}
	if w.CycleDetected {
		fmt.Printf("  cycle detected involving %d node(s)\n", w.CycleNodeCount)
	}
	for _, note := range w.Notes {
		fmt.Printf("  %s\n", note)
	}
}
