// Package reporting builds renderable reports from run results.
package reporting

import (
	"strings"
	"time"

	"github.com/specrun/specrun/runner"
	"github.com/specrun/specrun/types"
)

// ReportStats contains aggregated statistics for a run.
type ReportStats struct {
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	PassRate float64
}

// ReportItem represents a single node in the report tree, carrying the
// position data needed to draw tree connectors.
type ReportItem struct {
	NodeID   string
	Name     string
	Kind     types.NodeKind
	SpecName string
	Depth    int
	Status   types.OutcomeStatus
	Err      error
	Duration time.Duration

	// IsLast marks the node as its parent's final child; ParentIsLast holds
	// the same flag for each ancestor below the root.
	IsLast       bool
	ParentIsLast []bool
}

// Report is the intermediate representation rendered by the sinks.
type Report struct {
	RunID    string
	Items    []ReportItem // Tree order
	Stats    ReportStats
	Status   types.OutcomeStatus
	Duration time.Duration
}

// BuildReport converts a run result into a report. Results arrive in finish
// order; they are reordered into a pre-order walk with siblings in
// declaration order.
func BuildReport(result *runner.RunResult) *Report {
	nodes := make([]runner.NodeResult, len(result.Nodes))
	copy(nodes, result.Nodes)
	runner.SortTreeOrder(nodes)

	// Group children by parent path to find each node's position among its
	// siblings.
	childrenOf := make(map[string][]string)
	for _, n := range nodes {
		parent := parentPath(n.NodeID)
		childrenOf[parent] = append(childrenOf[parent], n.NodeID)
	}
	isLast := make(map[string]bool, len(nodes))
	for _, siblings := range childrenOf {
		for i, id := range siblings {
			isLast[id] = i == len(siblings)-1
		}
	}

	report := &Report{
		RunID:    result.RunID,
		Status:   result.Status,
		Duration: result.Duration,
		Stats: ReportStats{
			Total:   result.Stats.Total,
			Passed:  result.Stats.Passed,
			Failed:  result.Stats.Failed,
			Skipped: result.Stats.Skipped,
		},
	}
	if report.Stats.Total > 0 {
		report.Stats.PassRate = float64(report.Stats.Passed) / float64(report.Stats.Total) * 100
	}

	for _, n := range nodes {
		item := ReportItem{
			NodeID:   n.NodeID,
			Name:     n.Name,
			Kind:     n.Kind,
			SpecName: n.SpecName,
			Depth:    n.Depth,
			Status:   n.Outcome.Status,
			Err:      n.Outcome.Err,
			Duration: n.Duration,
			IsLast:   isLast[n.NodeID],
		}
		for _, ancestor := range ancestorPaths(n.NodeID) {
			item.ParentIsLast = append(item.ParentIsLast, isLast[ancestor])
		}
		report.Items = append(report.Items, item)
	}
	return report
}

// parentPath strips the final path segment of a node identifier.
func parentPath(nodeID string) string {
	idx := strings.LastIndex(nodeID, "/")
	if idx == -1 {
		return ""
	}
	return nodeID[:idx]
}

// ancestorPaths lists the identifiers of every ancestor between the root and
// the node, outermost first. The root itself is excluded.
func ancestorPaths(nodeID string) []string {
	segments := strings.Split(nodeID, "/")
	var ancestors []string
	for i := 2; i < len(segments); i++ {
		ancestors = append(ancestors, strings.Join(segments[:i], "/"))
	}
	return ancestors
}
