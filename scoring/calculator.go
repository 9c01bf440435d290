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

package scoring

import "github.com/dxtools/dxcheck/lintengine"

// AnalysisMode labels a calculator as producing a per-file breakdown
// (Detailed) or only the aggregate project score (Quick). The mode is
// stored and reported by Mode; Calculate and CalculateDetailed do not read
// it, so the caller's choice of method decides whether the per-file map is
// built. Both methods deduct identically.
type AnalysisMode int

const (
	Quick AnalysisMode = iota
	Detailed
)

func (m AnalysisMode) String() string {
	if m == Detailed {
		return "detailed"
	}
	return "quick"
}

// defaultRules seeds every builtin rule ID with the category its
// violations are scored under. Rules not listed here (including any
// third-party rule a registry adds) fall back to Linting.
func defaultRules() map[string]DeductionRule {
	rules := []DeductionRule{
		{RuleID: "no-debugger", Category: Linting, DefaultSeverity: High, Description: "debugger statement left in source"},
		{RuleID: "no-console", Category: Linting, DefaultSeverity: Low, Description: "console call left in source"},
		{RuleID: "no-eval", Category: Security, DefaultSeverity: Critical, Description: "direct eval() call"},
		{RuleID: "eqeqeq", Category: Linting, DefaultSeverity: Medium, Description: "loose equality operator"},
		{RuleID: "rule-panic", Category: StructureAndDocs, DefaultSeverity: Critical, Description: "a rule aborted while visiting a node"},
		{RuleID: "parse-error", Category: Formatting, DefaultSeverity: Critical, Description: "source failed to parse"},
		{RuleID: "internal-error", Category: StructureAndDocs, DefaultSeverity: Critical, Description: "engine failure while checking a file"},
	}
	out := make(map[string]DeductionRule, len(rules))
	for _, r := range rules {
		out[r.RuleID] = r
	}
	return out
}

// ScoreCalculator converts a run's []lintengine.Diagnostic into scores.
type ScoreCalculator struct {
	mode  AnalysisMode
	rules map[string]DeductionRule
}

// NewScoreCalculator builds a calculator in Quick mode with the default
// rule-to-category registrations.
func NewScoreCalculator() *ScoreCalculator {
	return &ScoreCalculator{mode: Quick, rules: defaultRules()}
}

// NewScoreCalculatorWithMode is NewScoreCalculator with an explicit mode.
func NewScoreCalculatorWithMode(mode AnalysisMode) *ScoreCalculator {
	c := NewScoreCalculator()
	c.mode = mode
	return c
}

func (c *ScoreCalculator) Mode() AnalysisMode     { return c.mode }
func (c *ScoreCalculator) SetMode(m AnalysisMode) { c.mode = m }

// RegisterRule binds a rule ID to a scoring category, overriding any
// earlier registration (including a default one).
func (c *ScoreCalculator) RegisterRule(ruleID string, category Category) {
	c.rules[ruleID] = DeductionRule{RuleID: ruleID, Category: category, DefaultSeverity: Medium}
}

func (c *ScoreCalculator) categoryFor(ruleID string) Category {
	if rule, ok := c.rules[ruleID]; ok {
		return rule.Category
	}
	return Linting
}

func severityFor(s lintengine.Severity) Severity {
	switch s {
	case lintengine.SeverityError:
		return Critical
	case lintengine.SeverityWarning:
		return High
	case lintengine.SeverityInfo:
		return Medium
	default:
		return Low
	}
}

func (c *ScoreCalculator) violationFor(d lintengine.Diagnostic) Violation {
	severity := severityFor(d.Severity)
	return Violation{
		Category: c.categoryFor(d.RuleID),
		Severity: severity,
		File:     d.File,
		Line:     d.Span.Start,
		Column:   0,
		RuleID:   d.RuleID,
		Message:  d.Message,
		Points:   severity.Points(),
	}
}

// Calculate scores a full diagnostic set at the project level only.
func (c *ScoreCalculator) Calculate(diagnostics []lintengine.Diagnostic, filesAnalyzed int) *ProjectScore {
	ps := NewProjectScore(filesAnalyzed)
	for _, d := range diagnostics {
		ps.AddViolation(c.violationFor(d))
	}
	return ps
}

// CalculateDetailed scores the same diagnostic set, additionally keyed per file.
func (c *ScoreCalculator) CalculateDetailed(diagnostics []lintengine.Diagnostic, filesAnalyzed int) (*ProjectScore, map[string]*FileScore) {
	ps := NewProjectScore(filesAnalyzed)
	fileScores := make(map[string]*FileScore)
	for _, d := range diagnostics {
		v := c.violationFor(d)
		ps.AddViolation(v)
		fs, ok := fileScores[d.File]
		if !ok {
			fs = NewFileScore(d.File)
			fileScores[d.File] = fs
		}
		fs.AddViolation(v)
	}
	return ps, fileScores
}
