// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != LevelDebug {
		t.Error("debug not parsed")
	}
	if ParseLevel("warning") != LevelWarn {
		t.Error("warning not parsed")
	}
	if ParseLevel("bogus") != LevelInfo {
		t.Error("unknown level should default to info")
	}
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "atlasd",
		Quiet:   true,
	})
	logger.Info("snapshot built", "snapshot_id", "abc123", "node_count", 42)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	filename := "atlasd_" + time.Now().Format("2006-01-02") + ".log"
	content, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(content))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}

	if entry["msg"] != "snapshot built" {
		t.Errorf("msg = %v, want 'snapshot built'", entry["msg"])
	}
	if entry["service"] != "atlasd" {
		t.Errorf("service = %v, want atlasd", entry["service"])
	}
	if entry["snapshot_id"] != "abc123" {
		t.Errorf("snapshot_id = %v, want abc123", entry["snapshot_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "atlasd",
		Quiet:   true,
	})
	logger.Info("filtered out")
	logger.Warn("kept")
	logger.Close()

	filename := "atlasd_" + time.Now().Format("2006-01-02") + ".log"
	content, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	if strings.Contains(string(content), "filtered out") {
		t.Error("info message logged despite warn level")
	}
	if !strings.Contains(string(content), "kept") {
		t.Error("warn message missing")
	}
}

func TestWithAttributes(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "atlasd",
		Quiet:   true,
	})
	child := logger.With("request_id", "req-1")
	child.Info("handling request")
	logger.Close()

	filename := "atlasd_" + time.Now().Format("2006-01-02") + ".log"
	content, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "req-1") {
		t.Error("child logger attribute missing")
	}
}

func TestCloseWithoutFile(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("close without file: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("double close: %v", err)
	}
}
