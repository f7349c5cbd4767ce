package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopCase(ctx context.Context) error { return nil }

func buildSampleTree(t *testing.T) (*Tree, *SpecDefinition) {
	t.Helper()

	def := &SpecDefinition{
		Name:   "sample",
		Policy: SharedInstance,
		New:    func() SpecObject { return nil },
	}

	tree := NewTree("specrun", "specrun")
	specRoot, err := tree.AddContainer(tree.Root(), "sample", def)
	require.NoError(t, err)

	inner, err := tree.AddContainer(specRoot, "inner", def)
	require.NoError(t, err)

	_, err = tree.AddCase(inner, "a", def, noopCase, 0)
	require.NoError(t, err)
	_, err = tree.AddCase(specRoot, "b", def, noopCase, 0)
	require.NoError(t, err)

	return tree, def
}

func TestTree_WalkPreOrder(t *testing.T) {
	tree, _ := buildSampleTree(t)

	var ids []string
	tree.Walk(tree.Root(), func(n *TestNode) bool {
		ids = append(ids, n.ID)
		return true
	})

	assert.Equal(t, []string{
		"specrun",
		"specrun/sample",
		"specrun/sample/inner",
		"specrun/sample/inner/a",
		"specrun/sample/b",
	}, ids)
}

func TestTree_Lookup(t *testing.T) {
	tree, _ := buildSampleTree(t)

	h, ok := tree.Lookup("specrun/sample/inner/a")
	require.True(t, ok)
	node := tree.Node(h)
	assert.Equal(t, "a", node.Name)
	assert.Equal(t, KindCase, node.Kind)

	_, ok = tree.Lookup("specrun/missing")
	assert.False(t, ok)
}

func TestTree_DuplicateIdentifierRejected(t *testing.T) {
	tree, def := buildSampleTree(t)

	specRoot, ok := tree.Lookup("specrun/sample")
	require.True(t, ok)

	_, err := tree.AddCase(specRoot, "b", def, noopCase, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestTree_SealRejectsAdditions(t *testing.T) {
	tree, def := buildSampleTree(t)
	tree.Seal()

	_, err := tree.AddContainer(tree.Root(), "late", def)
	require.Error(t, err)
	assert.True(t, tree.Sealed())
}

func TestTree_CaseUnderCaseRejected(t *testing.T) {
	tree, def := buildSampleTree(t)

	caseNode, ok := tree.Lookup("specrun/sample/b")
	require.True(t, ok)

	_, err := tree.AddCase(caseNode, "nested", def, noopCase, 0)
	require.Error(t, err)
}

func TestTree_FindCaseByName(t *testing.T) {
	tree, _ := buildSampleTree(t)

	h, ok := tree.FindCaseByName(tree.Root(), "a")
	require.True(t, ok)
	assert.Equal(t, "specrun/sample/inner/a", tree.Node(h).ID)

	_, ok = tree.FindCaseByName(tree.Root(), "nope")
	assert.False(t, ok)
}

func TestTree_CaseNamesAndCounts(t *testing.T) {
	tree, _ := buildSampleTree(t)

	assert.Equal(t, []string{"a", "b"}, tree.CaseNames(tree.Root()))
	assert.Equal(t, 2, tree.CountCases(tree.Root()))
}

func TestTree_IsSpecRoot(t *testing.T) {
	tree, _ := buildSampleTree(t)

	specRoot, _ := tree.Lookup("specrun/sample")
	inner, _ := tree.Lookup("specrun/sample/inner")
	caseA, _ := tree.Lookup("specrun/sample/inner/a")

	assert.True(t, tree.IsSpecRoot(specRoot))
	assert.False(t, tree.IsSpecRoot(inner))
	assert.False(t, tree.IsSpecRoot(caseA))
	assert.False(t, tree.IsSpecRoot(tree.Root()))
}

func TestTree_Depth(t *testing.T) {
	tree, _ := buildSampleTree(t)

	caseA, _ := tree.Lookup("specrun/sample/inner/a")
	assert.Equal(t, 0, tree.Depth(tree.Root()))
	assert.Equal(t, 3, tree.Depth(caseA))
}
