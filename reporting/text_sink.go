package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specrun/specrun/types"
	"github.com/specrun/specrun/ui"
)

// TextReportWriter renders a report as a plain-text tree.
type TextReportWriter struct {
	includeContainers bool
}

// NewTextReportWriter creates a text writer. With includeContainers false
// only case nodes are rendered, which gives a cleaner summary.
func NewTextReportWriter(includeContainers bool) *TextReportWriter {
	return &TextReportWriter{includeContainers: includeContainers}
}

// Write renders the report to w.
func (t *TextReportWriter) Write(w io.Writer, report *Report) error {
	if _, err := fmt.Fprintf(w, "Run %s: %s (%.1fs)\n\n", report.RunID, report.Status, report.Duration.Seconds()); err != nil {
		return err
	}

	for _, item := range report.Items {
		if !t.includeContainers && item.Kind == types.KindContainer {
			continue
		}
		if err := t.writeItem(w, item); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%d cases: %d passed, %d failed, %d skipped (%.1f%% pass rate)\n",
		report.Stats.Total, report.Stats.Passed, report.Stats.Failed, report.Stats.Skipped, report.Stats.PassRate)
	return err
}

// WriteFile renders the report into a file at path.
func (t *TextReportWriter) WriteFile(path string, report *Report) error {
	var sb strings.Builder
	if err := t.Write(&sb, report); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func (t *TextReportWriter) writeItem(w io.Writer, item ReportItem) error {
	var prefix string
	if t.includeContainers {
		prefix = ui.BuildTreePrefix(item.Depth, item.IsLast, item.ParentIsLast)
	}

	line := fmt.Sprintf("%s%s %s (%.1fs)", prefix, statusSymbol(item.Status), t.displayName(item), item.Duration.Seconds())
	if item.Status == types.OutcomeFail && item.Err != nil {
		line += fmt.Sprintf(": %s", firstLine(item.Err.Error()))
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// displayName uses the bare name in tree mode and the full path in the flat
// case-only summary, where names alone would collide.
func (t *TextReportWriter) displayName(item ReportItem) string {
	if t.includeContainers {
		return item.Name
	}
	return item.NodeID
}

func statusSymbol(status types.OutcomeStatus) string {
	switch status {
	case types.OutcomePass:
		return "✓"
	case types.OutcomeSkip:
		return "-"
	default:
		return "✗"
	}
}

func firstLine(s string) string {
	if idx := strings.Index(s, "\n"); idx != -1 {
		return s[:idx]
	}
	return s
}
