package runner

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specrun/specrun/metrics"
	"github.com/specrun/specrun/types"
)

// Reporter emits paired start/finish events to the external listener and
// records per-node results for the run summary. For every node it enforces
// exactly one Start before exactly one Finish; violations are logged and
// dropped rather than forwarded, so the listener never observes a broken
// pairing. Finish never re-raises the outcome's error.
type Reporter struct {
	listener types.Listener
	log      log.Logger
	runID    string
	depthOf  func(nodeID string) int

	mu                sync.Mutex
	started           map[string]time.Time
	finished          map[string]bool
	results           []NodeResult
	stats             RunStats
	containerFailures int
	order             int
	startTime         time.Time
}

// NewReporter creates a reporter forwarding to listener. depthOf maps a node
// identifier to its depth for display purposes; nil means depth zero.
func NewReporter(listener types.Listener, runID string, logger log.Logger, depthOf func(string) int) *Reporter {
	if listener == nil {
		listener = types.NoopListener{}
	}
	if logger == nil {
		logger = log.New()
	}
	if depthOf == nil {
		depthOf = func(string) int { return 0 }
	}
	return &Reporter{
		listener:  listener,
		log:       logger.New("component", "reporter"),
		runID:     runID,
		depthOf:   depthOf,
		started:   make(map[string]time.Time),
		finished:  make(map[string]bool),
		startTime: time.Now(),
	}
}

// Start reports that node began executing.
func (r *Reporter) Start(node *types.TestNode) {
	r.mu.Lock()
	if _, dup := r.started[node.ID]; dup {
		r.mu.Unlock()
		r.log.Error("Duplicate start event dropped", "node", node.ID)
		metrics.RecordError("duplicate_start_event")
		return
	}
	r.started[node.ID] = time.Now()
	r.mu.Unlock()

	r.log.Debug("Node started", "node", node.ID, "kind", node.Kind)
	r.listener.Started(node.ID)
}

// Finish reports node's terminal outcome. The outcome's error is carried as
// data; whether anything propagates past the node is the scheduler's call.
func (r *Reporter) Finish(node *types.TestNode, outcome types.Outcome) {
	r.mu.Lock()
	startedAt, wasStarted := r.started[node.ID]
	if !wasStarted {
		r.mu.Unlock()
		r.log.Error("Finish without start dropped", "node", node.ID)
		metrics.RecordError("finish_without_start")
		return
	}
	if r.finished[node.ID] {
		r.mu.Unlock()
		r.log.Error("Duplicate finish event dropped", "node", node.ID)
		metrics.RecordError("duplicate_finish_event")
		return
	}
	r.finished[node.ID] = true
	r.order++

	result := NodeResult{
		NodeID:   node.ID,
		Name:     node.Name,
		Kind:     node.Kind,
		Depth:    r.depthOf(node.ID),
		Outcome:  outcome,
		Duration: time.Since(startedAt),
		Index:    int(node.Handle),
		Order:    r.order,
	}
	if node.Spec != nil {
		result.SpecName = node.Spec.Name
	}
	r.results = append(r.results, result)

	if node.Kind == types.KindCase {
		r.stats.Total++
		switch outcome.Status {
		case types.OutcomePass:
			r.stats.Passed++
		case types.OutcomeFail:
			r.stats.Failed++
		case types.OutcomeSkip:
			r.stats.Skipped++
		}
		metrics.RecordCase(r.runID, result.SpecName, node.Name, outcome.Status)
	} else if outcome.Status == types.OutcomeFail {
		r.containerFailures++
	}
	r.mu.Unlock()

	r.log.Debug("Node finished", "node", node.ID, "status", outcome.Status, "error", outcome.Err)
	r.listener.Finished(node.ID, outcome)
}

// Result finalizes and returns the recorded run result.
func (r *Reporter) Result() *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := r.stats
	stats.StartTime = r.startTime
	stats.EndTime = time.Now()

	nodes := make([]NodeResult, len(r.results))
	copy(nodes, r.results)

	status := determineRunStatus(stats)
	if r.containerFailures > 0 {
		// A container that failed in its own right (an erroring interceptor
		// chain, typically) fails the run even when no case reached a
		// failure.
		status = types.OutcomeFail
	}

	return &RunResult{
		RunID:    r.runID,
		Nodes:    nodes,
		Stats:    stats,
		Status:   status,
		Duration: stats.EndTime.Sub(stats.StartTime),
	}
}
