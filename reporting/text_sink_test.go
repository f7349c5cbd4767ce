package reporting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextReportWriter_TreeMode(t *testing.T) {
	report := BuildReport(sampleResult())

	var sb strings.Builder
	require.NoError(t, NewTextReportWriter(true).Write(&sb, report))
	out := sb.String()

	assert.Contains(t, out, "Run run-1: fail")
	assert.Contains(t, out, "├── ✓ alpha")
	assert.Contains(t, out, "│   └── ✓ group")
	assert.Contains(t, out, "│       └── ✗ deep")
	assert.Contains(t, out, ": boom", "failure line carries the first error line")
	assert.NotContains(t, out, "details", "multi-line errors are trimmed")
	assert.Contains(t, out, "└── ✓ beta")
	assert.Contains(t, out, "3 cases: 1 passed, 1 failed, 1 skipped")
}

func TestTextReportWriter_CasesOnly(t *testing.T) {
	report := BuildReport(sampleResult())

	var sb strings.Builder
	require.NoError(t, NewTextReportWriter(false).Write(&sb, report))
	out := sb.String()

	assert.NotContains(t, out, "├──", "flat mode draws no tree connectors")
	assert.Contains(t, out, "✗ specrun/alpha/group/deep")
	assert.Contains(t, out, "- specrun/alpha/first")
	assert.NotContains(t, out, "✓ specrun/alpha (", "containers are omitted")
}

func TestTextReportWriter_WriteFile(t *testing.T) {
	report := BuildReport(sampleResult())
	path := filepath.Join(t.TempDir(), "report.txt")

	require.NoError(t, NewTextReportWriter(true).WriteFile(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run run-1")
}
