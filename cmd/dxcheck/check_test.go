package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunCheckCleanFileExitsZero(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "const x = 1;\n")

	code := runCheck([]string{root}, GlobalFlags{Quiet: true})
	assert.Equal(t, 0, code)
}

func TestRunCheckUnknownPathIsCatastrophic(t *testing.T) {
	code := runCheck([]string{"/does/not/exist/at/all"}, GlobalFlags{Quiet: true})
	assert.Equal(t, 2, code)
}

func TestRunInitThenRunConfig(t *testing.T) {
	root := t.TempDir()

	code := runInit([]string{root}, GlobalFlags{})
	require.Equal(t, 0, code)

	code = runInit([]string{root}, GlobalFlags{})
	assert.Equal(t, 2, code, "second init without --force must refuse to overwrite")

	code = runInit([]string{"--force", root}, GlobalFlags{})
	assert.Equal(t, 0, code)

	code = runConfig([]string{root}, GlobalFlags{})
	assert.Equal(t, 0, code)
}

func TestRunCacheWarmStartOnEmptyCache(t *testing.T) {
	root := t.TempDir()
	code := runCache([]string{"warm-start", "--path", root}, GlobalFlags{})
	assert.Equal(t, 0, code)
}

func TestRunCacheUnknownToolErrors(t *testing.T) {
	root := t.TempDir()
	code := runCache([]string{"warm-start", "--tool", "not-a-tool", "--path", root}, GlobalFlags{})
	assert.Equal(t, 2, code)
}

func TestRunCacheSyncWithoutEnvIsANoOp(t *testing.T) {
	root := t.TempDir()
	os.Unsetenv("R2_BUCKET_NAME")
	os.Unsetenv("R2_ACCESS_KEY_ID")
	os.Unsetenv("R2_SECRET_ACCESS_KEY")
	code := runCache([]string{"sync", "--path", root}, GlobalFlags{})
	assert.Equal(t, 0, code, "missing R2 env vars disables replication without failing the run")
}

func TestRunCheckScoreDoesNotAffectExitCodeWithoutThreshold(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "debugger;\n")

	code := runCheck([]string{"--score", root}, GlobalFlags{Quiet: true})
	assert.Equal(t, 0, code, "a bare --score is informational and must not gate the exit code")
}

func TestRunCheckScoreDetailedSucceeds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "debugger;\n")
	writeFile(t, root, "b.js", "const x = 1;\n")

	code := runCheck([]string{"--score-detailed", root}, GlobalFlags{Quiet: true})
	assert.Equal(t, 0, code)
}

func TestRunCheckThresholdFailsBelowMinimum(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "debugger;\n")

	code := runCheck([]string{"--score", "--threshold", "500", root}, GlobalFlags{Quiet: true})
	assert.Equal(t, 1, code, "a debugger violation must drop the score below a 500 threshold")
}

func TestRunCheckThresholdCategoryFailsBelowMinimum(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "debugger;\n")

	code := runCheck([]string{"--score", "--threshold-category", "linting=100", root}, GlobalFlags{Quiet: true})
	assert.Equal(t, 1, code)
}

func TestRunCheckThresholdCategoryRejectsMalformedFlag(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", "const x = 1;\n")

	code := runCheck([]string{"--score", "--threshold-category", "not-a-pair", root}, GlobalFlags{Quiet: true})
	assert.Equal(t, 2, code)
}
