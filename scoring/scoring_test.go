package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dxtools/dxcheck/lintengine"
	"github.com/dxtools/dxcheck/scoring"
)

func TestAllCategoriesHasFive(t *testing.T) {
	categories := scoring.AllCategories()
	assert.Len(t, categories, 5)
	assert.Contains(t, categories, scoring.Formatting)
	assert.Contains(t, categories, scoring.Linting)
	assert.Contains(t, categories, scoring.Security)
	assert.Contains(t, categories, scoring.DesignPatterns)
	assert.Contains(t, categories, scoring.StructureAndDocs)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "formatting", scoring.Formatting.String())
	assert.Equal(t, "linting", scoring.Linting.String())
	assert.Equal(t, "security", scoring.Security.String())
	assert.Equal(t, "design_patterns", scoring.DesignPatterns.String())
	assert.Equal(t, "structure_and_docs", scoring.StructureAndDocs.String())
}

func TestSeverityPoints(t *testing.T) {
	assert.Equal(t, 10, scoring.Critical.Points())
	assert.Equal(t, 5, scoring.High.Points())
	assert.Equal(t, 2, scoring.Medium.Points())
	assert.Equal(t, 1, scoring.Low.Points())
}

func TestProjectScoreInitialization(t *testing.T) {
	score := scoring.NewProjectScore(100)

	assert.Equal(t, scoring.MaxTotalScore, score.TotalScore)
	assert.Equal(t, 100, score.FilesAnalyzed)
	assert.Len(t, score.Categories, 5)
	for _, cat := range scoring.AllCategories() {
		assert.Equal(t, scoring.MaxCategoryScore, score.GetCategoryScore(cat))
	}
}

func TestCategoryScoreAddViolation(t *testing.T) {
	catScore := scoring.NewCategoryScore(scoring.Formatting)

	catScore.AddViolation(scoring.Violation{
		Category: scoring.Formatting,
		Severity: scoring.High,
		File:     "test.js",
		Line:     1,
		Column:   1,
		RuleID:   "indent",
		Message:  "Incorrect indentation",
		Points:   5,
	})

	assert.Equal(t, 95, catScore.Score)
	assert.Equal(t, 5, catScore.Deductions)
	assert.Equal(t, 1, catScore.ViolationCount())
}

func TestProjectScoreAddViolation(t *testing.T) {
	score := scoring.NewProjectScore(10)

	score.AddViolation(scoring.Violation{
		Category: scoring.Security,
		Severity: scoring.Critical,
		File:     "auth.js",
		Line:     50,
		Column:   5,
		RuleID:   "no-eval",
		Message:  "Unsafe code detected",
		Points:   10,
	})

	assert.Equal(t, 90, score.GetCategoryScore(scoring.Security))
	assert.Equal(t, 490, score.TotalScore)
	assert.Equal(t, 1, score.TotalViolations())
}

func TestMultipleViolationsSameCategory(t *testing.T) {
	score := scoring.NewProjectScore(5)

	for i := 0; i < 3; i++ {
		score.AddViolation(scoring.Violation{
			Category: scoring.Linting,
			Severity: scoring.Medium,
			File:     "file.js",
			Line:     i,
			Column:   1,
			RuleID:   "no-unused-vars",
			Message:  "Unused variable",
			Points:   2,
		})
	}

	assert.Equal(t, 94, score.GetCategoryScore(scoring.Linting))
	assert.Equal(t, 494, score.TotalScore)
	assert.Equal(t, 3, score.TotalViolations())
}

func TestViolationsAcrossCategories(t *testing.T) {
	score := scoring.NewProjectScore(10)

	cases := []struct {
		category scoring.Category
		points   int
	}{
		{scoring.Formatting, 1},
		{scoring.Linting, 2},
		{scoring.Security, 5},
		{scoring.DesignPatterns, 10},
		{scoring.StructureAndDocs, 1},
	}
	for _, c := range cases {
		score.AddViolation(scoring.Violation{Category: c.category, File: "test.js", RuleID: "test-rule", Points: c.points})
	}

	assert.Equal(t, 99, score.GetCategoryScore(scoring.Formatting))
	assert.Equal(t, 98, score.GetCategoryScore(scoring.Linting))
	assert.Equal(t, 95, score.GetCategoryScore(scoring.Security))
	assert.Equal(t, 90, score.GetCategoryScore(scoring.DesignPatterns))
	assert.Equal(t, 99, score.GetCategoryScore(scoring.StructureAndDocs))
	assert.Equal(t, 481, score.TotalScore)
}

func TestScoreCannotGoNegative(t *testing.T) {
	catScore := scoring.NewCategoryScore(scoring.Formatting)

	for i := 0; i < 15; i++ {
		catScore.AddViolation(scoring.Violation{Category: scoring.Formatting, File: "test.js", RuleID: "test", Points: 10})
	}

	assert.Equal(t, 0, catScore.Score)
	assert.GreaterOrEqual(t, catScore.Deductions, 100)
}

func TestGradeCalculation(t *testing.T) {
	cases := []struct {
		score int
		grade string
	}{
		{500, "A+"}, {475, "A+"}, {450, "A+"},
		{449, "A"}, {425, "A"}, {400, "A"},
		{399, "B+"}, {375, "B+"}, {350, "B+"},
		{349, "B"}, {325, "B"}, {300, "B"},
		{299, "C+"}, {275, "C+"}, {250, "C+"},
		{249, "C"}, {225, "C"}, {200, "C"},
		{199, "D"}, {175, "D"}, {150, "D"},
		{149, "F"}, {100, "F"}, {0, "F"},
	}

	for _, c := range cases {
		score := scoring.NewProjectScore(10)
		score.TotalScore = c.score
		assert.Equal(t, c.grade, score.Grade(), "score %d should be grade %s", c.score, c.grade)
	}
}

func TestScoreCalculatorDefaultRules(t *testing.T) {
	calculator := scoring.NewScoreCalculator()
	score := calculator.Calculate(nil, 10)
	assert.Equal(t, scoring.MaxTotalScore, score.TotalScore)
	assert.Equal(t, 10, score.FilesAnalyzed)
}

func TestScoreCalculatorRegisterRule(t *testing.T) {
	calculator := scoring.NewScoreCalculator()
	calculator.RegisterRule("custom-rule", scoring.Security)

	score := calculator.Calculate(nil, 5)
	assert.Equal(t, scoring.MaxTotalScore, score.TotalScore)
}

func TestThresholdCheckerPass(t *testing.T) {
	checker := scoring.NewThresholdChecker().WithTotalThreshold(400)

	score := scoring.NewProjectScore(10)
	score.TotalScore = 450

	result := checker.Check(score)
	assert.True(t, result.Passed())
	assert.Equal(t, 0, checker.ExitCode(score))
}

func TestThresholdCheckerFailTotal(t *testing.T) {
	checker := scoring.NewThresholdChecker().WithTotalThreshold(400)

	score := scoring.NewProjectScore(10)
	score.TotalScore = 350

	result := checker.Check(score)
	require.False(t, result.Passed())
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "Total score")
	assert.Equal(t, 1, checker.ExitCode(score))
}

func TestThresholdCheckerFailCategory(t *testing.T) {
	checker := scoring.NewThresholdChecker().WithCategoryThreshold(scoring.Security, 95)

	score := scoring.NewProjectScore(10)
	score.AddViolation(scoring.Violation{Category: scoring.Security, File: "test.js", RuleID: "test", Points: 10})

	result := checker.Check(score)
	require.False(t, result.Passed())
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "security")
}

func TestThresholdCheckerMultipleFailures(t *testing.T) {
	checker := scoring.NewThresholdChecker().
		WithTotalThreshold(450).
		WithCategoryThreshold(scoring.Security, 95).
		WithCategoryThreshold(scoring.Linting, 90)

	score := scoring.NewProjectScore(10)
	score.TotalScore = 400

	for i := 0; i < 2; i++ {
		score.AddViolation(scoring.Violation{Category: scoring.Security, File: "test.js", RuleID: "test", Points: 5})
		score.AddViolation(scoring.Violation{Category: scoring.Linting, File: "test.js", RuleID: "test", Points: 10})
	}

	result := checker.Check(score)
	require.False(t, result.Passed())
	assert.GreaterOrEqual(t, len(result.Failures), 2)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 500, scoring.MaxTotalScore)
	assert.Equal(t, 100, scoring.MaxCategoryScore)
	assert.Equal(t, scoring.MaxTotalScore, scoring.MaxCategoryScore*5)
}

func TestAnalysisModeDefault(t *testing.T) {
	calculator := scoring.NewScoreCalculator()
	assert.Equal(t, scoring.Quick, calculator.Mode())
}

func TestScoreCalculatorQuickMode(t *testing.T) {
	calculator := scoring.NewScoreCalculatorWithMode(scoring.Quick)
	assert.Equal(t, scoring.Quick, calculator.Mode())

	diagnostics := []lintengine.Diagnostic{{
		Severity: lintengine.SeverityError,
		Message:  "Unused variable",
		File:     "src/main.js",
		RuleID:   "no-unused-vars",
	}}

	score := calculator.Calculate(diagnostics, 1)
	assert.Equal(t, 1, score.FilesAnalyzed)
	assert.Less(t, score.TotalScore, scoring.MaxTotalScore)
}

func TestScoreCalculatorDetailedMode(t *testing.T) {
	calculator := scoring.NewScoreCalculatorWithMode(scoring.Detailed)
	assert.Equal(t, scoring.Detailed, calculator.Mode())

	diagnostics := []lintengine.Diagnostic{
		{Severity: lintengine.SeverityError, Message: "Unused variable", File: "src/main.js", RuleID: "no-unused-vars"},
		{Severity: lintengine.SeverityWarning, Message: "Missing docs", File: "src/lib.js", RuleID: "missing-docs"},
	}

	projectScore, fileScores := calculator.CalculateDetailed(diagnostics, 2)

	assert.Equal(t, 2, projectScore.FilesAnalyzed)
	assert.Len(t, fileScores, 2)
	assert.Contains(t, fileScores, "src/main.js")
	assert.Contains(t, fileScores, "src/lib.js")
}

func TestFileScoreInitialization(t *testing.T) {
	fileScore := scoring.NewFileScore("test.js")

	assert.Equal(t, "test.js", fileScore.File)
	assert.Equal(t, scoring.MaxTotalScore, fileScore.TotalScore)
	assert.Len(t, fileScore.Categories, 5)
	for _, cat := range scoring.AllCategories() {
		assert.Equal(t, scoring.MaxCategoryScore, fileScore.GetCategoryScore(cat))
	}
}

func TestFileScoreAddViolation(t *testing.T) {
	fileScore := scoring.NewFileScore("test.js")

	fileScore.AddViolation(scoring.Violation{Category: scoring.Security, File: "test.js", RuleID: "no-eval", Points: 10})

	assert.Equal(t, 90, fileScore.GetCategoryScore(scoring.Security))
	assert.Equal(t, 490, fileScore.TotalScore)
}

func TestFileScoreMultipleViolations(t *testing.T) {
	fileScore := scoring.NewFileScore("test.js")

	fileScore.AddViolation(scoring.Violation{Category: scoring.Formatting, File: "test.js", RuleID: "indent", Points: 1})
	fileScore.AddViolation(scoring.Violation{Category: scoring.Linting, File: "test.js", RuleID: "no-unused-vars", Points: 2})

	assert.Equal(t, 99, fileScore.GetCategoryScore(scoring.Formatting))
	assert.Equal(t, 98, fileScore.GetCategoryScore(scoring.Linting))
	assert.Equal(t, 497, fileScore.TotalScore)
}

func TestDetailedModeAggregation(t *testing.T) {
	calculator := scoring.NewScoreCalculatorWithMode(scoring.Detailed)

	diagnostics := []lintengine.Diagnostic{
		{Severity: lintengine.SeverityError, Message: "Error 1", File: "file1.js", RuleID: "no-unused-vars"},
		{Severity: lintengine.SeverityError, Message: "Error 2", File: "file1.js", RuleID: "no-debugger"},
		{Severity: lintengine.SeverityWarning, Message: "Warning 1", File: "file2.js", RuleID: "indent"},
	}

	projectScore, fileScores := calculator.CalculateDetailed(diagnostics, 2)

	require.Len(t, fileScores, 2)
	assert.Less(t, fileScores["file1.js"].TotalScore, scoring.MaxTotalScore)
	assert.Less(t, fileScores["file2.js"].TotalScore, scoring.MaxTotalScore)
	assert.Equal(t, 3, projectScore.TotalViolations())
	assert.Less(t, projectScore.TotalScore, scoring.MaxTotalScore)
}

func TestModeSwitching(t *testing.T) {
	calculator := scoring.NewScoreCalculator()
	assert.Equal(t, scoring.Quick, calculator.Mode())

	calculator.SetMode(scoring.Detailed)
	assert.Equal(t, scoring.Detailed, calculator.Mode())

	calculator.SetMode(scoring.Quick)
	assert.Equal(t, scoring.Quick, calculator.Mode())
}

func TestQuickVsDetailedConsistency(t *testing.T) {
	diagnostics := []lintengine.Diagnostic{
		{Severity: lintengine.SeverityError, Message: "Error", File: "test.js", RuleID: "no-unused-vars"},
	}

	quickScore := scoring.NewScoreCalculatorWithMode(scoring.Quick).Calculate(diagnostics, 1)
	detailedScore, _ := scoring.NewScoreCalculatorWithMode(scoring.Detailed).CalculateDetailed(diagnostics, 1)

	assert.Equal(t, quickScore.TotalScore, detailedScore.TotalScore)
	assert.Equal(t, quickScore.TotalViolations(), detailedScore.TotalViolations())
}
