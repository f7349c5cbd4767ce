package specrun

import (
	"fmt"
	"strings"
	"time"

	"github.com/specrun/specrun/types"
)

// Helper function to convert bool to int
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// getResultString returns a colored string representing the outcome
func getResultString(status types.OutcomeStatus) string {
	switch status {
	case types.OutcomePass:
		return "✓ pass"
	case types.OutcomeSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// firstErrorLine extracts the leading line of an error message for table
// display, truncated to keep the column readable.
func firstErrorLine(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.Index(msg, "\n"); idx != -1 {
		msg = msg[:idx]
	}
	if len(msg) > 80 {
		msg = msg[:70] + "..."
	}
	return msg
}
