package types

// OutcomeStatus represents the possible terminal states of a node execution.
type OutcomeStatus string

const (
	OutcomePass OutcomeStatus = "pass"
	OutcomeFail OutcomeStatus = "fail"
	OutcomeSkip OutcomeStatus = "skip"
)

// Outcome is the result reported with a node's finish event. Err is set only
// for failures; it is carried as data and never re-raised past the node
// boundary by the reporter.
type Outcome struct {
	Status OutcomeStatus
	Err    error
}

// Passed returns a success outcome.
func Passed() Outcome {
	return Outcome{Status: OutcomePass}
}

// Failed returns a failure outcome carrying err.
func Failed(err error) Outcome {
	return Outcome{Status: OutcomeFail, Err: err}
}

// Skipped returns the outcome used when an interceptor chain short-circuited
// and the node's body never ran.
func Skipped() Outcome {
	return Outcome{Status: OutcomeSkip}
}

// Listener is the reporting boundary exposed to the hosting runtime. For
// every node executed in a run, Started is called exactly once before
// exactly one Finished call for the same node identifier.
type Listener interface {
	Started(nodeID string)
	Finished(nodeID string, outcome Outcome)
}

// NoopListener discards all events. Used when the caller has no listener.
type NoopListener struct{}

func (NoopListener) Started(string)           {}
func (NoopListener) Finished(string, Outcome) {}
