// Package logging writes run results to per-run log directories on disk.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"

	"github.com/specrun/specrun/reporting"
	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/types"
)

// RunDirectoryPrefix is the standardized prefix for run directories.
const RunDirectoryPrefix = "specrun-"

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileLogger writes one directory per run: a summary file, and one file per
// failing case carrying its full error text with ANSI sequences stripped.
type FileLogger struct {
	baseDir     string // Base directory for logs
	logDir      string // Directory for this run
	failedDir   string // Directory for failed cases
	summaryFile string // Path to the summary file
	runID       string // Current run ID
	mu          sync.Mutex
}

// NewFileLogger creates a new FileLogger rooted at baseDir for the given run.
func NewFileLogger(baseDir string, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}
	if baseDir == "" {
		return nil, fmt.Errorf("baseDir cannot be empty")
	}

	logDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	failedDir := filepath.Join(logDir, "failed")

	for _, dir := range []string{baseDir, logDir, failedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &FileLogger{
		baseDir:     baseDir,
		logDir:      logDir,
		failedDir:   failedDir,
		summaryFile: filepath.Join(logDir, "summary.log"),
		runID:       runID,
	}, nil
}

// LogDir returns the directory this run's files are written to.
func (l *FileLogger) LogDir() string {
	return l.logDir
}

// LogResults writes the run summary and one file per failed case.
func (l *FileLogger) LogResults(result *runner.RunResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var summary strings.Builder
	summary.WriteString(result.String())
	summary.WriteString("\n\n")

	for _, node := range result.Nodes {
		if node.Kind != types.KindCase {
			continue
		}
		fmt.Fprintf(&summary, "%-6s %s (%.1fs)\n", node.Outcome.Status, node.NodeID, node.Duration.Seconds())
	}

	if err := os.WriteFile(l.summaryFile, []byte(summary.String()), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	report := reporting.BuildReport(result)
	writer := reporting.NewTextReportWriter(true)
	if err := writer.WriteFile(filepath.Join(l.logDir, "report.txt"), report); err != nil {
		return err
	}

	for _, failed := range result.FailedCases() {
		if err := l.writeFailedCase(failed); err != nil {
			return err
		}
	}
	return nil
}

// writeFailedCase writes the failure details of one case to its own file.
func (l *FileLogger) writeFailedCase(node runner.NodeResult) error {
	var body strings.Builder
	fmt.Fprintf(&body, "run:      %s\n", l.runID)
	fmt.Fprintf(&body, "case:     %s\n", node.NodeID)
	fmt.Fprintf(&body, "spec:     %s\n", node.SpecName)
	fmt.Fprintf(&body, "duration: %.1fs\n\n", node.Duration.Seconds())

	if node.Outcome.Err != nil {
		body.WriteString(stripansi.Strip(node.Outcome.Err.Error()))
		body.WriteString("\n")
	}

	path := filepath.Join(l.failedDir, safeFilename(node.NodeID)+".log")
	if err := os.WriteFile(path, []byte(body.String()), 0644); err != nil {
		return fmt.Errorf("failed to write case log %s: %w", path, err)
	}
	return nil
}

// safeFilename flattens a node identifier into a filesystem-safe name.
func safeFilename(nodeID string) string {
	name := strings.ReplaceAll(nodeID, "/", "_")
	return unsafePathChars.ReplaceAllString(name, "-")
}
