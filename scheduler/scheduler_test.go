package scheduler_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dxtools/dxcheck/lintengine"
	"github.com/dxtools/dxcheck/scheduler"
	"github.com/dxtools/dxcheck/workload"
	"github.com/dxtools/dxcheck/workspace"
)

func makeFiles(n int, size int64) []workspace.File {
	files := make([]workspace.File, n)
	for i := range files {
		files[i] = workspace.File{Path: fmt.Sprintf("file%03d.js", i), Bytes: make([]byte, size)}
	}
	return files
}

func checkByPath(f workspace.File) []lintengine.Diagnostic {
	return []lintengine.Diagnostic{{File: f.Path, RuleID: "stub", Message: f.Path}}
}

func sortDiags(d []lintengine.Diagnostic) {
	sort.Slice(d, func(i, j int) bool { return d[i].File < d[j].File })
}

func TestPlanChoosesSingleThreadedBelowLowCountThreshold(t *testing.T) {
	s := scheduler.New(scheduler.DefaultConfig())
	plan := s.Plan(workload.Stats{FileCount: 3})
	assert.False(t, plan.UseParallel)
	assert.Equal(t, 1, plan.WorkerCount)
}

func TestPlanChoosesParallelAboveThreshold(t *testing.T) {
	s := scheduler.New(scheduler.DefaultConfig())
	plan := s.Plan(workload.Stats{FileCount: 50, TotalBytes: 50 * 1024, MemoryEstBytes: 50 * 1024})
	assert.True(t, plan.UseParallel)
	assert.GreaterOrEqual(t, plan.WorkerCount, 1)
	assert.GreaterOrEqual(t, plan.BatchSize, 1)
}

func TestPlanEnablesStreamingOverHighWaterMark(t *testing.T) {
	cfg := scheduler.DefaultConfig()
	cfg.MemoryHighWaterMark = 1024
	s := scheduler.New(cfg)
	plan := s.Plan(workload.Stats{FileCount: 100, TotalBytes: 10 * 1024, MemoryEstBytes: 10 * 1024})
	assert.True(t, plan.UseStreaming)
	assert.LessOrEqual(t, plan.BatchSize, cfg.StreamingMaxBatchSize)
}

func TestPlanBatchSizeShrinksForLargeFiles(t *testing.T) {
	cfg := scheduler.DefaultConfig()
	s := scheduler.New(cfg)
	small := s.Plan(workload.Stats{FileCount: 100, TotalBytes: 100, MemoryEstBytes: 100})
	large := s.Plan(workload.Stats{FileCount: 100, TotalBytes: 100 * cfg.LargeFileBytes, MemoryEstBytes: 100 * cfg.LargeFileBytes})
	assert.Greater(t, small.BatchSize, large.BatchSize)
	assert.Equal(t, 1, large.BatchSize)
}

func TestRunSingleThreaded(t *testing.T) {
	s := scheduler.NewFixed(scheduler.Plan{UseParallel: false, WorkerCount: 1, BatchSize: 1})
	files := makeFiles(5, 10)
	diags := s.Run(context.Background(), files, s.Plan(workload.Stats{}), checkByPath)
	require.Len(t, diags, 5)
}

func TestRunParallelEquivalenceWithSingleThreaded(t *testing.T) {
	files := makeFiles(40, 100)

	seq := scheduler.NewFixed(scheduler.Plan{UseParallel: false})
	seqDiags := seq.Run(context.Background(), files, seq.Plan(workload.Stats{}), checkByPath)

	par := scheduler.NewFixed(scheduler.Plan{UseParallel: true, WorkerCount: 4, BatchSize: 1, UseStreaming: false})
	parDiags := par.Run(context.Background(), files, par.Plan(workload.Stats{}), checkByPath)

	stream := scheduler.NewFixed(scheduler.Plan{UseParallel: true, WorkerCount: 4, BatchSize: 3, UseStreaming: true})
	streamDiags := stream.Run(context.Background(), files, stream.Plan(workload.Stats{}), checkByPath)

	sortDiags(seqDiags)
	sortDiags(parDiags)
	sortDiags(streamDiags)

	assert.Equal(t, seqDiags, parDiags, "parallel path must produce the same diagnostic multiset as single-threaded")
	assert.Equal(t, seqDiags, streamDiags, "streaming path must produce the same diagnostic multiset as single-threaded")
}

func TestRunRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := makeFiles(20, 10)
	s := scheduler.NewFixed(scheduler.Plan{UseParallel: false})
	diags := s.Run(ctx, files, s.Plan(workload.Stats{}), checkByPath)
	assert.Less(t, len(diags), len(files))
}

func TestRunEmptyFileSet(t *testing.T) {
	s := scheduler.NewFixed(scheduler.Plan{UseParallel: true, WorkerCount: 4})
	diags := s.Run(context.Background(), nil, s.Plan(workload.Stats{}), checkByPath)
	assert.Empty(t, diags)
}
