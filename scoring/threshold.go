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

import "fmt"

// ThresholdChecker gates a ProjectScore against a minimum total and/or
// per-category floor, for CI-style pass/fail enforcement.
type ThresholdChecker struct {
	totalThreshold     *int
	categoryThresholds map[Category]int
}

func NewThresholdChecker() *ThresholdChecker {
	return &ThresholdChecker{categoryThresholds: make(map[Category]int)}
}

// WithTotalThreshold sets the minimum acceptable TotalScore and returns
// the checker, so calls can be chained while building one up.
func (t *ThresholdChecker) WithTotalThreshold(min int) *ThresholdChecker {
	t.totalThreshold = &min
	return t
}

// WithCategoryThreshold sets the minimum acceptable score for one category.
func (t *ThresholdChecker) WithCategoryThreshold(category Category, min int) *ThresholdChecker {
	t.categoryThresholds[category] = min
	return t
}

// ThresholdResult is the outcome of checking a ProjectScore: empty
// Failures means the score passed every configured threshold.
type ThresholdResult struct {
	Failures []string
}

func (r ThresholdResult) Passed() bool {
	return len(r.Failures) == 0
}

// Check evaluates every configured threshold against score, collecting
// every failure rather than stopping at the first.
func (t *ThresholdChecker) Check(score *ProjectScore) ThresholdResult {
	var failures []string

	if t.totalThreshold != nil && score.TotalScore < *t.totalThreshold {
		failures = append(failures, fmt.Sprintf("Total score %d is below threshold %d", score.TotalScore, *t.totalThreshold))
	}

	for _, category := range AllCategories() {
		min, ok := t.categoryThresholds[category]
		if !ok {
			continue
		}
		if got := score.GetCategoryScore(category); got < min {
			failures = append(failures, fmt.Sprintf("Category %s score %d is below threshold %d", category, got, min))
		}
	}

	return ThresholdResult{Failures: failures}
}

// ExitCode is 0 when score passes every threshold, 1 otherwise — gated
// onto the same 0/1 scheme the check-level exit code uses for Error
// diagnostics.
func (t *ThresholdChecker) ExitCode(score *ProjectScore) int {
	if t.Check(score).Passed() {
		return 0
	}
	return 1
}
