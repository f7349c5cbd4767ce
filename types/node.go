// Package types contains shared types used across the specrun engine.
package types

import (
	"fmt"
	"time"
)

// NodeID is an opaque handle addressing a node within a Tree's arena.
type NodeID int32

// InvalidNode is the handle used where no node applies (e.g. the root's parent).
const InvalidNode NodeID = -1

// NodeKind distinguishes container nodes from executable case nodes.
type NodeKind string

const (
	KindContainer NodeKind = "container"
	KindCase      NodeKind = "case"
)

// TestNode is one node of a discovered spec tree. Containers group child
// nodes; cases carry an executable body. The Spec field is a non-owning
// back-reference to the definition that declared this node.
type TestNode struct {
	Handle   NodeID
	ID       string // Stable unique identifier (slash-joined path from root)
	Name     string // Display name
	Kind     NodeKind
	Parent   NodeID
	Children []NodeID // Ordered; empty for cases

	Spec    *SpecDefinition
	Run     CaseFunc      // Case body; nil for containers
	Timeout time.Duration // Optional per-case deadline; zero means none
}

// IsContainer returns true if this node groups other nodes.
func (n *TestNode) IsContainer() bool {
	return n.Kind == KindContainer
}

// Tree is an arena of test nodes addressed by opaque handles. Parent and
// child links are handles into the arena rather than object pointers, so the
// structure stays acyclic from an ownership point of view.
//
// A Tree is mutable during discovery and sealed afterwards; the per-test
// instancing path builds new, separate trees rather than mutating a sealed
// one.
type Tree struct {
	nodes  []TestNode
	byID   map[string]NodeID
	root   NodeID
	sealed bool
}

// NewTree creates a tree containing only a synthetic root container.
func NewTree(rootID, rootName string) *Tree {
	t := &Tree{
		byID: make(map[string]NodeID),
		root: 0,
	}
	t.nodes = append(t.nodes, TestNode{
		Handle: 0,
		ID:     rootID,
		Name:   rootName,
		Kind:   KindContainer,
		Parent: InvalidNode,
	})
	t.byID[rootID] = 0
	return t
}

// Root returns the handle of the root container.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node resolves a handle to its node. The returned pointer stays valid for
// the lifetime of the tree but must not be used to mutate a sealed tree.
func (t *Tree) Node(h NodeID) *TestNode {
	if h < 0 || int(h) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[h]
}

// Lookup finds a node handle by its stable identifier.
func (t *Tree) Lookup(id string) (NodeID, bool) {
	h, ok := t.byID[id]
	return h, ok
}

// Seal marks discovery as complete. Further additions fail.
func (t *Tree) Seal() {
	t.sealed = true
}

// Sealed reports whether discovery has completed for this tree.
func (t *Tree) Sealed() bool {
	return t.sealed
}

// AddContainer appends a container node under parent.
func (t *Tree) AddContainer(parent NodeID, name string, spec *SpecDefinition) (NodeID, error) {
	return t.add(parent, name, KindContainer, spec, nil, 0)
}

// AddCase appends a case node under parent.
func (t *Tree) AddCase(parent NodeID, name string, spec *SpecDefinition, run CaseFunc, timeout time.Duration) (NodeID, error) {
	if run == nil {
		return InvalidNode, fmt.Errorf("case %q has no body", name)
	}
	return t.add(parent, name, KindCase, spec, run, timeout)
}

func (t *Tree) add(parent NodeID, name string, kind NodeKind, spec *SpecDefinition, run CaseFunc, timeout time.Duration) (NodeID, error) {
	if t.sealed {
		return InvalidNode, fmt.Errorf("tree is sealed, cannot add %q", name)
	}
	if name == "" {
		return InvalidNode, fmt.Errorf("node name is required")
	}
	p := t.Node(parent)
	if p == nil {
		return InvalidNode, fmt.Errorf("parent handle %d does not exist", parent)
	}
	if !p.IsContainer() {
		return InvalidNode, fmt.Errorf("parent %q is a case, cannot hold children", p.ID)
	}

	id := p.ID + "/" + name
	if _, exists := t.byID[id]; exists {
		return InvalidNode, fmt.Errorf("duplicate node identifier %q", id)
	}

	h := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, TestNode{
		Handle:  h,
		ID:      id,
		Name:    name,
		Kind:    kind,
		Parent:  parent,
		Spec:    spec,
		Run:     run,
		Timeout: timeout,
	})
	t.byID[id] = h
	// Re-resolve the parent: the append above may have moved the arena.
	t.nodes[parent].Children = append(t.nodes[parent].Children, h)
	return h, nil
}

// Walk traverses the subtree rooted at from in pre-order, calling visit for
// each node. Returning false from visit skips that node's children.
func (t *Tree) Walk(from NodeID, visit func(*TestNode) bool) {
	node := t.Node(from)
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for _, c := range node.Children {
		t.Walk(c, visit)
	}
}

// FindCaseByName searches the subtree rooted at from for a case node with
// the given display name. Name matching is the sole correlation key between
// independently discovered trees of the same spec.
func (t *Tree) FindCaseByName(from NodeID, name string) (NodeID, bool) {
	found := InvalidNode
	t.Walk(from, func(n *TestNode) bool {
		if found != InvalidNode {
			return false
		}
		if n.Kind == KindCase && n.Name == name {
			found = n.Handle
			return false
		}
		return true
	})
	return found, found != InvalidNode
}

// CaseNames returns the display names of all case nodes under from, in
// pre-order. Useful for comparing two discoveries of the same spec.
func (t *Tree) CaseNames(from NodeID) []string {
	var names []string
	t.Walk(from, func(n *TestNode) bool {
		if n.Kind == KindCase {
			names = append(names, n.Name)
		}
		return true
	})
	return names
}

// CountCases returns the number of case nodes under from.
func (t *Tree) CountCases(from NodeID) int {
	count := 0
	t.Walk(from, func(n *TestNode) bool {
		if n.Kind == KindCase {
			count++
		}
		return true
	})
	return count
}

// IsSpecRoot reports whether the node is the root container of its owning
// spec, i.e. the boundary where a shared-instance interceptor chain is built.
func (t *Tree) IsSpecRoot(h NodeID) bool {
	node := t.Node(h)
	if node == nil || node.Spec == nil || !node.IsContainer() {
		return false
	}
	if node.Parent == InvalidNode {
		return false
	}
	parent := t.Node(node.Parent)
	return parent.Spec != node.Spec
}

// Depth returns the number of edges between the node and the tree root.
func (t *Tree) Depth(h NodeID) int {
	depth := 0
	for n := t.Node(h); n != nil && n.Parent != InvalidNode; n = t.Node(n.Parent) {
		depth++
	}
	return depth
}
