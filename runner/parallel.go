package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specrun/specrun/types"
)

// awaitBound caps how long a run waits for dispatched units after the pool
// has been closed to new submissions. Overrunning it abandons the run and is
// surfaced as a fatal error rather than silently accepted.
const awaitBound = 24 * time.Hour

// executeUnits distributes the top-level units across a bounded worker pool
// and blocks until every unit has completed or the await bound elapses.
// Units never report errors upward; their failures are isolated per node by
// executeNode, so the only error here is run abandonment.
func (s *Scheduler) executeUnits(ctx context.Context, tree *types.Tree, units []types.NodeID, reporter *Reporter, rc *types.RunContext) error {
	if len(units) == 0 {
		s.log.Debug("No units to execute")
		return nil
	}

	concurrency := rc.EffectiveParallelism()
	s.log.Info("Dispatching units", "units", len(units), "concurrency", concurrency)

	// Conservative buffering: the pool drains it anyway, this just keeps the
	// feeder from blocking on small runs.
	bufferSize := min(concurrency*2, 100)
	workChan := make(chan types.NodeID, bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go s.worker(ctx, i, &wg, workChan, tree, reporter, rc)
	}

	// Submit every unit, then close the pool to further submissions.
	for _, unit := range units {
		workChan <- unit
	}
	close(workChan)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(awaitBound):
		s.log.Error("Pool await bound exceeded, abandoning run", "bound", awaitBound)
		return &types.RunFatalError{Stage: "await", Err: fmt.Errorf("worker pool did not terminate within %v", awaitBound)}
	}
}

// worker claims units off the channel and executes each subtree
// synchronously. There is no cancellation: a claimed unit runs to
// completion.
func (s *Scheduler) worker(ctx context.Context, id int, wg *sync.WaitGroup, workChan <-chan types.NodeID, tree *types.Tree, reporter *Reporter, rc *types.RunContext) {
	defer wg.Done()

	workerLog := s.log.New("worker", id)
	workerLog.Debug("Worker starting")
	defer workerLog.Debug("Worker exiting")

	for unit := range workChan {
		node := tree.Node(unit)
		workerLog.Debug("Worker claimed unit", "unit", node.ID)

		unitCtx, span := s.tracer.Start(ctx, fmt.Sprintf("unit %s", node.Name))
		s.executeNode(unitCtx, tree, unit, reporter, rc)
		span.End()

		workerLog.Debug("Worker completed unit", "unit", node.ID)
	}
}
