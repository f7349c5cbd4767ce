package types

import (
	"context"
	"fmt"
	"time"
)

// InstancePolicy selects how a spec's underlying object is instantiated
// across its cases.
type InstancePolicy string

const (
	// SharedInstance reuses one spec object for every case under the spec.
	SharedInstance InstancePolicy = "shared-instance"
	// PerTest builds a fresh spec object (and a fresh tree) for each case.
	PerTest InstancePolicy = "per-test"
)

// String implements the Stringer interface for InstancePolicy.
func (p InstancePolicy) String() string {
	return string(p)
}

// Valid reports whether the policy is one of the two supported values.
func (p InstancePolicy) Valid() bool {
	return p == SharedInstance || p == PerTest
}

// CaseFunc is the body of a single test case.
type CaseFunc func(ctx context.Context) error

// Interceptor wraps an inner action. It receives a proceed callback running
// the next link of the chain (eventually the terminal action) and decides
// whether to invoke it. Not invoking proceed short-circuits everything
// inside; that is a legitimate control outcome, not an error.
type Interceptor func(next func() error) error

// SpecObject is implemented by user spec objects. Define declares the
// object's containers and cases on the builder; case bodies typically close
// over the receiving instance.
type SpecObject interface {
	Define(b *SpecBuilder)
}

// SpecDefinition is the discovery-time prototype of a named test group. New
// must build a fresh spec object each call, and Define on that object must
// be deterministic: two discoveries of the same definition must yield the
// same case names and tree shape. The per-test instancing path relies on
// this to correlate cases by name across rediscoveries.
type SpecDefinition struct {
	Name         string
	Policy       InstancePolicy
	Interceptors []Interceptor // Ordered; first is outermost when wrapped
	New          func() SpecObject
}

// Validate checks the definition is complete enough to discover.
func (d *SpecDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("spec name is required")
	}
	if !d.Policy.Valid() {
		return fmt.Errorf("spec %q has invalid instance policy %q", d.Name, d.Policy)
	}
	if d.New == nil {
		return fmt.Errorf("spec %q has no instance factory", d.Name)
	}
	return nil
}

// SpecBuilder declares containers and cases into a tree during discovery.
// It records the first error it encounters and turns subsequent calls into
// no-ops, so Define bodies don't need error plumbing.
type SpecBuilder struct {
	tree    *Tree
	def     *SpecDefinition
	current NodeID
	err     error
}

// NewSpecBuilder creates a builder appending under the given container.
func NewSpecBuilder(tree *Tree, under NodeID, def *SpecDefinition) *SpecBuilder {
	return &SpecBuilder{tree: tree, def: def, current: under}
}

// Describe declares a nested container and runs body against it.
func (b *SpecBuilder) Describe(name string, body func(b *SpecBuilder)) {
	if b.err != nil {
		return
	}
	h, err := b.tree.AddContainer(b.current, name, b.def)
	if err != nil {
		b.err = err
		return
	}
	child := &SpecBuilder{tree: b.tree, def: b.def, current: h}
	body(child)
	b.err = child.err
}

// Case declares an executable case under the current container.
func (b *SpecBuilder) Case(name string, run CaseFunc, opts ...CaseOption) {
	if b.err != nil {
		return
	}
	var cfg caseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := b.tree.AddCase(b.current, name, b.def, run, cfg.timeout); err != nil {
		b.err = err
	}
}

// Err returns the first declaration error, if any.
func (b *SpecBuilder) Err() error {
	return b.err
}

type caseConfig struct {
	timeout time.Duration
}

// CaseOption customizes a single case declaration.
type CaseOption func(*caseConfig)

// WithTimeout sets a per-case deadline enforced by the case runner.
func WithTimeout(d time.Duration) CaseOption {
	return func(c *caseConfig) {
		c.timeout = d
	}
}
