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

// Package scheduler turns a workload.Stats snapshot into an execution
// Plan, then runs the fusion engine over a file set along one of three
// paths: single-threaded, parallel, or parallel-with-streaming. Which
// path runs never changes the diagnostics produced for any one file — only
// the order in which files across the set complete.
package scheduler

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dxtools/dxcheck/lintengine"
	"github.com/dxtools/dxcheck/workload"
	"github.com/dxtools/dxcheck/workspace"
)

// Plan is the scheduler's decision for one run. It is immutable once
// issued.
type Plan struct {
	UseParallel  bool
	WorkerCount  int
	BatchSize    int
	UseStreaming bool
}

// Config holds the tunable thresholds behind Plan. Exposed as fields
// rather than constants so callers (and tests) can force specific
// planning decisions without monkeypatching.
type Config struct {
	// LowCountThreshold: file counts below this run single-threaded.
	LowCountThreshold int
	// DefaultWorkerCount caps parallelism when non-zero; 0 means derive
	// from runtime.GOMAXPROCS(0).
	DefaultWorkerCount int
	// MemoryHighWaterMark: streaming kicks in when the workload's memory
	// estimate would exceed this many bytes.
	MemoryHighWaterMark int64
	// SmallFileBytes / LargeFileBytes bound the batch-size curve: files
	// averaging at or below SmallFileBytes batch at MaxBatchSize; at or
	// above LargeFileBytes they batch one at a time.
	SmallFileBytes int64
	LargeFileBytes int64
	MaxBatchSize   int
	// StreamingMaxBatchSize caps batch_size when streaming, per spec's
	// "implementer's cap" on batch_size under use_streaming.
	StreamingMaxBatchSize int
}

// DefaultConfig matches the teacher's resolver.go precedent of capping
// parallelism at 8 workers regardless of host core count.
func DefaultConfig() Config {
	return Config{
		LowCountThreshold:     8,
		DefaultWorkerCount:    0,
		MemoryHighWaterMark:   256 * 1024 * 1024,
		SmallFileBytes:        4 * 1024,
		LargeFileBytes:        256 * 1024,
		MaxBatchSize:          32,
		StreamingMaxBatchSize: 8,
	}
}

// Scheduler plans and runs checks over a file set.
type Scheduler struct {
	cfg Config
	// fixed, when non-nil, forces Plan to always return this value —
	// a test hook for forcing a specific execution path.
	fixed *Plan
}

// New builds a Scheduler from cfg.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// NewFixed returns a Scheduler whose Plan always returns p, regardless of
// workload. Used by tests asserting parallel-equivalence: the same
// diagnostics must come back whichever path runs.
func NewFixed(p Plan) *Scheduler {
	return &Scheduler{fixed: &p}
}

// Plan computes an OptimizationPlan from a workload snapshot.
func (s *Scheduler) Plan(stats workload.Stats) Plan {
	if s.fixed != nil {
		return *s.fixed
	}
	cfg := s.cfg

	if stats.FileCount < int64(cfg.LowCountThreshold) {
		return Plan{UseParallel: false, WorkerCount: 1, BatchSize: 1, UseStreaming: false}
	}

	workers := cfg.DefaultWorkerCount
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers > 8 {
			workers = 8
		}
	}
	if workers < 1 {
		workers = 1
	}

	batchSize := batchSizeFor(cfg, stats.MeanFileBytes())

	useStreaming := cfg.MemoryHighWaterMark > 0 && stats.MemoryEstBytes > cfg.MemoryHighWaterMark
	if useStreaming && cfg.StreamingMaxBatchSize > 0 && batchSize > cfg.StreamingMaxBatchSize {
		batchSize = cfg.StreamingMaxBatchSize
	}

	return Plan{
		UseParallel:  true,
		WorkerCount:  workers,
		BatchSize:    batchSize,
		UseStreaming: useStreaming,
	}
}

// batchSizeFor implements the "batch_size grows with mean file size"
// policy: small files batch in larger groups, large files dispatch one at
// a time, with linear interpolation in between.
func batchSizeFor(cfg Config, meanBytes int64) int {
	if meanBytes <= cfg.SmallFileBytes || cfg.SmallFileBytes >= cfg.LargeFileBytes {
		return max1(cfg.MaxBatchSize)
	}
	if meanBytes >= cfg.LargeFileBytes {
		return 1
	}
	span := cfg.LargeFileBytes - cfg.SmallFileBytes
	frac := float64(meanBytes-cfg.SmallFileBytes) / float64(span)
	size := int(float64(cfg.MaxBatchSize) * (1 - frac))
	return max1(size)
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// CheckFunc runs the fusion engine over one file and returns its
// diagnostics. Implementations must not share mutable state across
// concurrent calls; lintengine.Engine.CheckSource is itself safe to call
// concurrently provided its Registry is not mutated mid-run.
type CheckFunc func(workspace.File) []lintengine.Diagnostic

// Run executes checkFn over files according to plan, returning the
// aggregate diagnostics. Diagnostics within one file preserve emission
// order; across files, order is unspecified under any parallel path.
func (s *Scheduler) Run(ctx context.Context, files []workspace.File, plan Plan, checkFn CheckFunc) []lintengine.Diagnostic {
	if !plan.UseParallel || len(files) == 0 {
		return runSequential(ctx, files, checkFn)
	}
	if plan.UseStreaming {
		return runStreaming(ctx, files, plan, checkFn)
	}
	return runParallel(ctx, files, plan, checkFn)
}

func runSequential(ctx context.Context, files []workspace.File, checkFn CheckFunc) []lintengine.Diagnostic {
	var out []lintengine.Diagnostic
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		out = append(out, checkFn(f)...)
	}
	return out
}

// runParallel distributes files across plan.WorkerCount workers via a
// shared job channel (work-stealing: idle workers pull the next file),
// generalizing the teacher's resolveCallsParallel channel+WaitGroup shape
// from call resolution to file checking. golang.org/x/sync/errgroup runs
// the worker goroutines; workers never return an error, so the group is
// cancelled only through ctx. Panics are not recovered here: rule panics
// are already caught by lintengine's fault barrier inside checkFn.
func runParallel(ctx context.Context, files []workspace.File, plan Plan, checkFn CheckFunc) []lintengine.Diagnostic {
	jobs := make(chan workspace.File)
	resultsCh := make(chan []lintengine.Diagnostic, plan.WorkerCount)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < plan.WorkerCount; i++ {
		g.Go(func() error {
			var local []lintengine.Diagnostic
			for f := range jobs {
				if gctx.Err() != nil {
					continue
				}
				local = append(local, checkFn(f)...)
			}
			resultsCh <- local
			return nil
		})
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = g.Wait()
		close(resultsCh)
	}()

	var out []lintengine.Diagnostic
	for local := range resultsCh {
		out = append(out, local...)
	}
	return out
}

// runStreaming splits files into plan.BatchSize chunks and distributes
// whole chunks to plan.WorkerCount workers; a worker processes its chunk
// sequentially before taking the next one, bounding peak resident memory
// to roughly worker_count*batch_size*mean_file_size.
func runStreaming(ctx context.Context, files []workspace.File, plan Plan, checkFn CheckFunc) []lintengine.Diagnostic {
	batchSize := plan.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	var chunks [][]workspace.File
	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		chunks = append(chunks, files[i:end])
	}

	chunkCh := make(chan []workspace.File)
	var mu sync.Mutex
	var out []lintengine.Diagnostic
	var wg sync.WaitGroup

	workers := plan.WorkerCount
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunkCh {
				var local []lintengine.Diagnostic
				for _, f := range chunk {
					if ctx.Err() != nil {
						break
					}
					local = append(local, checkFn(f)...)
				}
				mu.Lock()
				out = append(out, local...)
				mu.Unlock()
			}
		}()
	}

	for _, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}
		select {
		case chunkCh <- chunk:
		case <-ctx.Done():
		}
	}
	close(chunkCh)
	wg.Wait()

	return out
}
