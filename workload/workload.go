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

// Package workload tracks the running statistics the scheduler uses to
// plan a check: file count, byte totals, and a resident-memory estimate
// derived from buffers already read.
package workload

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of a Probe.
type Stats struct {
	FileCount     int64
	TotalBytes    int64
	MaxFileBytes  int64
	MemoryEstBytes int64
	Elapsed       time.Duration
}

// MeanFileBytes returns the average file size, or 0 when no files have
// been recorded yet.
func (s Stats) MeanFileBytes() int64 {
	if s.FileCount == 0 {
		return 0
	}
	return s.TotalBytes / s.FileCount
}

// Probe accumulates workload statistics under concurrent RecordFile calls.
// Counters are monotonic within a run, per spec.
type Probe struct {
	fileCount    int64
	totalBytes   int64
	maxFileBytes int64
	start        time.Time
}

// New starts a probe whose Elapsed clock begins now.
func New() *Probe {
	return &Probe{start: time.Now()}
}

// RecordFile registers one file's size. Safe for concurrent use: the
// collector may call this from multiple goroutines while discovering
// files.
func (p *Probe) RecordFile(sizeBytes int64) {
	atomic.AddInt64(&p.fileCount, 1)
	atomic.AddInt64(&p.totalBytes, sizeBytes)
	for {
		cur := atomic.LoadInt64(&p.maxFileBytes)
		if sizeBytes <= cur {
			break
		}
		if atomic.CompareAndSwapInt64(&p.maxFileBytes, cur, sizeBytes) {
			break
		}
	}
}

// Snapshot produces a Stats value. The memory estimate models "buffers
// already read held concurrently" as the running total of bytes seen so
// far — the same quantity the scheduler uses to decide whether streaming
// is required.
func (p *Probe) Snapshot() Stats {
	return Stats{
		FileCount:      atomic.LoadInt64(&p.fileCount),
		TotalBytes:     atomic.LoadInt64(&p.totalBytes),
		MaxFileBytes:   atomic.LoadInt64(&p.maxFileBytes),
		MemoryEstBytes: atomic.LoadInt64(&p.totalBytes),
		Elapsed:        time.Since(p.start),
	}
}
