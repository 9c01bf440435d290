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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/dxtools/dxcheck/dxconfig"
	"github.com/dxtools/dxcheck/internal/uicolor"
	"github.com/dxtools/dxcheck/lintengine"
	"github.com/dxtools/dxcheck/parser/treesitter"
	"github.com/dxtools/dxcheck/rules/builtin"
	"github.com/dxtools/dxcheck/scheduler"
	"github.com/dxtools/dxcheck/scoring"
	"github.com/dxtools/dxcheck/workload"
	"github.com/dxtools/dxcheck/workspace"
)

// runCheck implements "dxcheck check [path]": discover files, plan and
// execute the fused engine over them, print diagnostics, and return the
// process exit code (0 clean, 1 Error-severity diagnostics, 2 on
// catastrophic failure).
func runCheck(args []string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	score := fs.Bool("score", false, "print a 500-point project score alongside diagnostics")
	scoreDetailed := fs.Bool("score-detailed", false, "break the score down per file (implies --score)")
	thresholdTotal := fs.Int("threshold", 0, "fail the run if the total score drops below this (0 disables)")
	thresholdCategory := fs.StringArray("threshold-category", nil, "fail the run if a category score drops below this, as category=min (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *scoreDetailed || *thresholdTotal > 0 || len(*thresholdCategory) > 0 {
		*score = true
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	if *metricsAddr != "" {
		startMetricsServer(*metricsAddr)
	}

	cfg, err := dxconfig.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dxcheck: %v\n", err)
		return 2
	}

	collector := &workspace.Collector{Include: cfg.Include, Exclude: cfg.Exclude, RespectGitignore: cfg.RespectGitignore}
	files, err := collector.Discover(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dxcheck: %v\n", err)
		return 2
	}

	probe := workload.New()
	for _, f := range files {
		probe.RecordFile(int64(len(f.Bytes)))
	}

	registry := lintengine.NewRegistry()
	for _, rule := range builtin.All() {
		registry.Register(rule)
	}
	for id, enabled := range cfg.Rules {
		registry.SetEnabled(id, enabled)
	}

	engine := lintengine.New(treesitter.New(), registry, slog.Default())

	sched := scheduler.New(cfg.Scheduler.ToSchedulerConfig())
	plan := sched.Plan(probe.Snapshot())

	var bar *progressbar.ProgressBar
	if !globals.Quiet {
		bar = progressbar.Default(int64(len(files)), "checking")
	}

	var engineFailed atomic.Bool
	checkFn := func(f workspace.File) []lintengine.Diagnostic {
		diags, engineErr := engine.CheckSource(f.Path, f.Bytes)
		if engineErr != nil {
			engineFailed.Store(true)
			diags = []lintengine.Diagnostic{{
				File:     f.Path,
				Severity: lintengine.SeverityError,
				RuleID:   "internal-error",
				Message:  engineErr.Error(),
			}}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		return diags
	}

	diagnostics := sched.Run(context.Background(), files, plan, checkFn)

	sort.Slice(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return a.RuleID < b.RuleID
	})

	if globals.JSON {
		printJSON(diagnostics)
	} else {
		printHuman(diagnostics)
	}

	exitCode := exitCodeFor(diagnostics)
	if engineFailed.Load() {
		exitCode = 2
	}

	if *score {
		checker, err := thresholdCheckerFrom(*thresholdTotal, *thresholdCategory)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dxcheck: %v\n", err)
			return 2
		}

		calculator := scoring.NewScoreCalculator()
		if *scoreDetailed {
			calculator.SetMode(scoring.Detailed)
			projectScore, fileScores := calculator.CalculateDetailed(diagnostics, len(files))
			printScore(globals, projectScore, fileScores)
			if result := checker.Check(projectScore); !result.Passed() && exitCode == 0 {
				exitCode = checker.ExitCode(projectScore)
			}
		} else {
			projectScore := calculator.Calculate(diagnostics, len(files))
			printScore(globals, projectScore, nil)
			if result := checker.Check(projectScore); !result.Passed() && exitCode == 0 {
				exitCode = checker.ExitCode(projectScore)
			}
		}
	}

	return exitCode
}

// thresholdCheckerFrom builds a ThresholdChecker from the --threshold and
// --threshold-category flags; a zero total threshold and no category
// entries means no gate is configured.
func thresholdCheckerFrom(total int, categoryFlags []string) (*scoring.ThresholdChecker, error) {
	checker := scoring.NewThresholdChecker()
	if total > 0 {
		checker = checker.WithTotalThreshold(total)
	}
	for _, raw := range categoryFlags {
		name, minStr, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("--threshold-category %q: expected category=min", raw)
		}
		category, ok := categoryFromName(name)
		if !ok {
			return nil, fmt.Errorf("--threshold-category %q: unknown category %q", raw, name)
		}
		min, err := strconv.Atoi(minStr)
		if err != nil {
			return nil, fmt.Errorf("--threshold-category %q: %w", raw, err)
		}
		checker = checker.WithCategoryThreshold(category, min)
	}
	return checker, nil
}

func categoryFromName(name string) (scoring.Category, bool) {
	for _, c := range scoring.AllCategories() {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

func printScore(globals GlobalFlags, projectScore *scoring.ProjectScore, fileScores map[string]*scoring.FileScore) {
	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if fileScores != nil {
			_ = enc.Encode(struct {
				Project *scoring.ProjectScore         `json:"project"`
				Files   map[string]*scoring.FileScore `json:"files"`
			}{projectScore, fileScores})
		} else {
			_ = enc.Encode(projectScore)
		}
		return
	}

	fmt.Printf("score: %d/%d (%s)\n", projectScore.TotalScore, scoring.MaxTotalScore, projectScore.Grade())
	for _, category := range scoring.AllCategories() {
		fmt.Printf("  %-18s %3d/%d\n", category, projectScore.GetCategoryScore(category), scoring.MaxCategoryScore)
	}
	if fileScores != nil {
		paths := make([]string, 0, len(fileScores))
		for path := range fileScores {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Printf("  %s: %d/%d\n", path, fileScores[path].TotalScore, scoring.MaxTotalScore)
		}
	}
}

func exitCodeFor(diagnostics []lintengine.Diagnostic) int {
	for _, d := range diagnostics {
		if d.Severity == lintengine.SeverityError {
			return 1
		}
	}
	return 0
}

func printJSON(diagnostics []lintengine.Diagnostic) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(diagnostics)
}

func printHuman(diagnostics []lintengine.Diagnostic) {
	for _, d := range diagnostics {
		uicolor.FprintDiagnosticLine(os.Stdout, d.File, d.Span.Start, d.Span.End, d.Severity.String(), d.RuleID, d.Message)
	}
	fmt.Printf("%d diagnostic(s)\n", len(diagnostics))
}
