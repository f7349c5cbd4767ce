package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/types"
)

func setupFileLogger(t *testing.T) (*FileLogger, string) {
	t.Helper()
	baseDir := t.TempDir()
	fl, err := NewFileLogger(baseDir, "run-abc")
	require.NoError(t, err)
	return fl, baseDir
}

func TestNewFileLogger_Validation(t *testing.T) {
	_, err := NewFileLogger("", "run-abc")
	assert.Error(t, err)

	_, err = NewFileLogger(t.TempDir(), "")
	assert.Error(t, err)
}

func TestNewFileLogger_CreatesRunDirectory(t *testing.T) {
	fl, baseDir := setupFileLogger(t)

	expected := filepath.Join(baseDir, RunDirectoryPrefix+"run-abc")
	assert.Equal(t, expected, fl.LogDir())

	info, err := os.Stat(filepath.Join(expected, "failed"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLogResults_WritesSummaryAndFailedCases(t *testing.T) {
	fl, _ := setupFileLogger(t)

	result := &runner.RunResult{
		RunID: "run-abc",
		Nodes: []runner.NodeResult{
			{NodeID: "specrun/demo", Name: "demo", Kind: types.KindContainer, SpecName: "demo", Depth: 1, Outcome: types.Passed()},
			{NodeID: "specrun/demo/ok", Name: "ok", Kind: types.KindCase, SpecName: "demo", Depth: 2, Outcome: types.Passed(), Duration: time.Second},
			{NodeID: "specrun/demo/bad", Name: "bad", Kind: types.KindCase, SpecName: "demo", Depth: 2,
				Outcome: types.Failed(errors.New("\x1b[31massertion failed\x1b[0m"))},
		},
		Stats:    runner.RunStats{Total: 2, Passed: 1, Failed: 1},
		Status:   types.OutcomeFail,
		Duration: 2 * time.Second,
	}

	require.NoError(t, fl.LogResults(result))

	summary, err := os.ReadFile(filepath.Join(fl.LogDir(), "summary.log"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "run-abc")
	assert.Contains(t, string(summary), "specrun/demo/ok")
	assert.Contains(t, string(summary), "specrun/demo/bad")
	assert.NotContains(t, string(summary), "specrun/demo\n", "containers are not listed as cases")

	caseLog, err := os.ReadFile(filepath.Join(fl.LogDir(), "failed", "specrun_demo_bad.log"))
	require.NoError(t, err)
	assert.Contains(t, string(caseLog), "assertion failed")
	assert.NotContains(t, string(caseLog), "\x1b[", "ANSI sequences are stripped")
	assert.Contains(t, string(caseLog), "spec:     demo")
}

func TestLogResults_NoFailuresWritesNoCaseFiles(t *testing.T) {
	fl, _ := setupFileLogger(t)

	result := &runner.RunResult{
		RunID: "run-abc",
		Nodes: []runner.NodeResult{
			{NodeID: "specrun/demo/ok", Name: "ok", Kind: types.KindCase, SpecName: "demo", Outcome: types.Passed()},
		},
		Stats:  runner.RunStats{Total: 1, Passed: 1},
		Status: types.OutcomePass,
	}

	require.NoError(t, fl.LogResults(result))

	entries, err := os.ReadDir(filepath.Join(fl.LogDir(), "failed"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "specrun_demo_bad", safeFilename("specrun/demo/bad"))
	assert.Equal(t, "a_b-c", safeFilename("a/b c"))
	assert.Equal(t, "plain", safeFilename("plain"))
}
