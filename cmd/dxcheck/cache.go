// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/dxtools/dxcheck/toolcache"
	"github.com/dxtools/dxcheck/toolcache/objectstore/s3store"
)

// runCache implements "dxcheck cache <action> [--tool name]" for
// warm-start, clear, sync, pull, and stats.
func runCache(args []string, globals GlobalFlags) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "dxcheck cache: missing action (warm-start|clear|sync|pull|stats)")
		return 2
	}
	action, rest := args[0], args[1:]

	fs := flag.NewFlagSet("cache "+action, flag.ExitOnError)
	toolName := fs.String("tool", "cache", "tool-id to operate on")
	root := fs.String("path", ".", "workspace root")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	tool, ok := toolIDFromName(*toolName)
	if !ok {
		fmt.Fprintf(os.Stderr, "dxcheck cache: unknown tool %q\n", *toolName)
		return 2
	}

	cache, err := toolcache.Open(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dxcheck cache: %v\n", err)
		return 2
	}

	switch action {
	case "warm-start":
		report := cache.WarmStart(tool)
		cacheEntriesGauge.WithLabelValues(tool.FolderName()).Set(float64(report.EntryCount))
		fmt.Printf("tool=%s ready=%v entries=%d bytes=%d loaded_in=%s\n",
			tool.FolderName(), report.Ready, report.EntryCount, report.TotalBytes, report.LoadElapsed)
		return 0

	case "clear":
		if err := cache.ClearToolCache(tool); err != nil {
			fmt.Fprintf(os.Stderr, "dxcheck cache: %v\n", err)
			return 2
		}
		fmt.Printf("cleared tool=%s\n", tool.FolderName())
		return 0

	case "stats":
		stats := cache.Stats()
		cacheHitsTotal.WithLabelValues(tool.FolderName()).Add(float64(stats.Hits))
		cacheMissesTotal.WithLabelValues(tool.FolderName()).Add(float64(stats.Misses))
		fmt.Printf("hits=%d misses=%d hit_rate=%.2f\n", stats.Hits, stats.Misses, stats.HitRate())
		return 0

	case "sync":
		cfg, ok := s3store.FromEnv()
		if !ok {
			fmt.Fprintln(os.Stderr, "dxcheck cache sync: remote replication disabled (R2_* environment variables not set)")
			return 0
		}
		store, err := s3store.New(context.Background(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dxcheck cache: %v\n", err)
			return 2
		}
		summary := cache.SyncToR2(context.Background(), store, tool)
		fmt.Printf("uploaded=%d skipped=%d failed=%d\n", summary.Uploaded, summary.Skipped, len(summary.Failures))
		return 0

	case "pull":
		cfg, ok := s3store.FromEnv()
		if !ok {
			fmt.Fprintln(os.Stderr, "dxcheck cache pull: remote replication disabled (R2_* environment variables not set)")
			return 0
		}
		store, err := s3store.New(context.Background(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dxcheck cache: %v\n", err)
			return 2
		}
		summary := cache.PullFromR2(context.Background(), store, tool)
		fmt.Printf("downloaded=%d skipped=%d failed=%d\n", summary.Downloaded, summary.Skipped, len(summary.Failures))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "dxcheck cache: unknown action %q\n", action)
		return 2
	}
}

func toolIDFromName(name string) (toolcache.ToolID, bool) {
	for _, t := range toolcache.AllToolIDs() {
		if t.FolderName() == name {
			return t, true
		}
	}
	return 0, false
}
