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

// Package scoring turns a run's diagnostics into a 500-point project score:
// five 100-point categories, a letter grade, and threshold-gated pass/fail.
package scoring

import "fmt"

// MaxTotalScore is the ceiling of ProjectScore.TotalScore and FileScore.TotalScore.
const MaxTotalScore = 500

// MaxCategoryScore is the per-category ceiling; MaxTotalScore is five of these.
const MaxCategoryScore = 100

// Category buckets a rule violation for scoring purposes.
type Category int

const (
	Formatting Category = iota
	Linting
	Security
	DesignPatterns
	StructureAndDocs
)

// AllCategories returns the five scoring categories in a fixed order.
func AllCategories() []Category {
	return []Category{Formatting, Linting, Security, DesignPatterns, StructureAndDocs}
}

// String renders a Category the way it is JSON-tagged and printed.
func (c Category) String() string {
	switch c {
	case Formatting:
		return "formatting"
	case Linting:
		return "linting"
	case Security:
		return "security"
	case DesignPatterns:
		return "design_patterns"
	case StructureAndDocs:
		return "structure_and_docs"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// MarshalText lets Category serialize as its name when used as a JSON
// object key (encoding/json consults TextMarshaler for map keys, not
// Marshaler).
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Severity is the scoring-specific severity a Violation carries, distinct
// from lintengine.Severity: it maps directly onto a point deduction.
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

// Points returns the deduction a Severity is worth.
func (s Severity) Points() int {
	switch s {
	case Critical:
		return 10
	case High:
		return 5
	case Medium:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Violation is one scored deduction: a single diagnostic, reshaped with
// the category and point value it costs the project.
type Violation struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	RuleID   string   `json:"rule_id"`
	Message  string   `json:"message"`
	Points   int      `json:"points"`
}

// DeductionRule binds a rule ID to the category its violations are scored
// under. DefaultSeverity is descriptive only: ScoreCalculator takes a
// violation's severity from the diagnostic's lintengine.Severity, not from
// this field.
type DeductionRule struct {
	RuleID          string   `json:"rule_id"`
	Category        Category `json:"category"`
	DefaultSeverity Severity `json:"default_severity"`
	Description     string   `json:"description"`
}

// CategoryScore is one category's running tally within a ProjectScore or FileScore.
type CategoryScore struct {
	Category   Category    `json:"category"`
	Score      int         `json:"score"`
	Deductions int         `json:"deductions"`
	Violations []Violation `json:"violations"`
}

// NewCategoryScore starts a category at the maximum, undeducted.
func NewCategoryScore(category Category) *CategoryScore {
	return &CategoryScore{Category: category, Score: MaxCategoryScore}
}

// AddViolation deducts the violation's points, floored at zero.
func (c *CategoryScore) AddViolation(v Violation) {
	c.Deductions += v.Points
	c.Score -= v.Points
	if c.Score < 0 {
		c.Score = 0
	}
	c.Violations = append(c.Violations, v)
}

func (c *CategoryScore) ViolationCount() int {
	return len(c.Violations)
}

// ProjectScore is the 500-point total for an entire checked workspace.
type ProjectScore struct {
	TotalScore    int                         `json:"total_score"`
	FilesAnalyzed int                         `json:"files_analyzed"`
	Categories    map[Category]*CategoryScore `json:"categories"`
}

// NewProjectScore starts every category at MaxCategoryScore, so TotalScore
// starts at MaxTotalScore.
func NewProjectScore(filesAnalyzed int) *ProjectScore {
	ps := &ProjectScore{FilesAnalyzed: filesAnalyzed, Categories: make(map[Category]*CategoryScore, len(AllCategories()))}
	for _, cat := range AllCategories() {
		ps.Categories[cat] = NewCategoryScore(cat)
	}
	ps.recompute()
	return ps
}

func (p *ProjectScore) recompute() {
	total := 0
	for _, cat := range AllCategories() {
		total += p.Categories[cat].Score
	}
	p.TotalScore = total
}

// AddViolation deducts from the violation's category and recomputes TotalScore.
func (p *ProjectScore) AddViolation(v Violation) {
	p.Categories[v.Category].AddViolation(v)
	p.recompute()
}

func (p *ProjectScore) GetCategoryScore(category Category) int {
	return p.Categories[category].Score
}

func (p *ProjectScore) TotalViolations() int {
	n := 0
	for _, cat := range AllCategories() {
		n += p.Categories[cat].ViolationCount()
	}
	return n
}

// Grade converts TotalScore into a letter grade on the A+-through-F scale.
func (p *ProjectScore) Grade() string {
	return gradeFor(p.TotalScore)
}

func gradeFor(score int) string {
	switch {
	case score >= 450:
		return "A+"
	case score >= 400:
		return "A"
	case score >= 350:
		return "B+"
	case score >= 300:
		return "B"
	case score >= 250:
		return "C+"
	case score >= 200:
		return "C"
	case score >= 150:
		return "D"
	default:
		return "F"
	}
}

// FileScore is the same 500-point breakdown scoped to a single file.
type FileScore struct {
	File       string                      `json:"file"`
	TotalScore int                         `json:"total_score"`
	Categories map[Category]*CategoryScore `json:"categories"`
}

func NewFileScore(file string) *FileScore {
	fs := &FileScore{File: file, Categories: make(map[Category]*CategoryScore, len(AllCategories()))}
	for _, cat := range AllCategories() {
		fs.Categories[cat] = NewCategoryScore(cat)
	}
	fs.recompute()
	return fs
}

func (f *FileScore) recompute() {
	total := 0
	for _, cat := range AllCategories() {
		total += f.Categories[cat].Score
	}
	f.TotalScore = total
}

func (f *FileScore) AddViolation(v Violation) {
	f.Categories[v.Category].AddViolation(v)
	f.recompute()
}

func (f *FileScore) GetCategoryScore(category Category) int {
	return f.Categories[category].Score
}
