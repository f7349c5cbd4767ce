package runner

import (
	"fmt"
	"sort"
	"time"

	"github.com/specrun/specrun/types"
)

// NodeResult captures the reported execution of one node.
type NodeResult struct {
	NodeID   string
	Name     string
	Kind     types.NodeKind
	SpecName string
	Depth    int
	Outcome  types.Outcome
	Duration time.Duration
	Index    int // Declaration order in the tree
	Order    int // Finish order within the run
}

// RunStats tracks case-level statistics for a run. Containers are reported
// but not counted.
type RunStats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// RunResult captures the complete results of one engine run.
type RunResult struct {
	RunID    string
	Nodes    []NodeResult // Finish order
	Stats    RunStats
	Status   types.OutcomeStatus
	Duration time.Duration
}

// Lookup returns the recorded result for a node identifier.
func (r *RunResult) Lookup(nodeID string) (NodeResult, bool) {
	for _, n := range r.Nodes {
		if n.NodeID == nodeID {
			return n, true
		}
	}
	return NodeResult{}, false
}

// FailedCases returns the case results that finished with a failure.
func (r *RunResult) FailedCases() []NodeResult {
	var failed []NodeResult
	for _, n := range r.Nodes {
		if n.Kind == types.KindCase && n.Outcome.Status == types.OutcomeFail {
			failed = append(failed, n)
		}
	}
	return failed
}

// SortTreeOrder reorders results in place so parents precede their children
// and siblings keep declaration order. Tree handles are allocated during
// discovery in declaration order, which makes the index a pre-order walk;
// identifiers break ties for results built without one.
func SortTreeOrder(nodes []NodeResult) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Index != nodes[j].Index {
			return nodes[i].Index < nodes[j].Index
		}
		return nodes[i].NodeID < nodes[j].NodeID
	})
}

// String returns a one-line human-readable summary of the run.
func (r *RunResult) String() string {
	return fmt.Sprintf("run %s: %s (%d cases: %d passed, %d failed, %d skipped) in %.1fs",
		r.RunID, r.Status, r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped, r.Duration.Seconds())
}

// determineRunStatus derives the overall run status from case statistics.
func determineRunStatus(stats RunStats) types.OutcomeStatus {
	switch {
	case stats.Failed > 0:
		return types.OutcomeFail
	case stats.Passed > 0:
		return types.OutcomePass
	default:
		return types.OutcomeSkip
	}
}
