package types

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builderSpec struct{}

func (s *builderSpec) Define(b *SpecBuilder) {
	b.Case("top", func(ctx context.Context) error { return nil })
	b.Describe("group", func(b *SpecBuilder) {
		b.Case("nested", func(ctx context.Context) error { return nil }, WithTimeout(time.Second))
	})
}

func TestSpecBuilder_DeclaresNestedNodes(t *testing.T) {
	def := &SpecDefinition{Name: "builder", Policy: SharedInstance, New: func() SpecObject { return &builderSpec{} }}

	tree := NewTree("specrun", "specrun")
	specRoot, err := tree.AddContainer(tree.Root(), def.Name, def)
	require.NoError(t, err)

	b := NewSpecBuilder(tree, specRoot, def)
	(&builderSpec{}).Define(b)
	require.NoError(t, b.Err())

	assert.Equal(t, []string{"top", "nested"}, tree.CaseNames(specRoot))

	h, ok := tree.Lookup("specrun/builder/group/nested")
	require.True(t, ok)
	assert.Equal(t, time.Second, tree.Node(h).Timeout)
}

func TestSpecBuilder_DuplicateCaseStopsDeclaration(t *testing.T) {
	def := &SpecDefinition{Name: "dup", Policy: SharedInstance, New: func() SpecObject { return nil }}

	tree := NewTree("specrun", "specrun")
	specRoot, err := tree.AddContainer(tree.Root(), def.Name, def)
	require.NoError(t, err)

	b := NewSpecBuilder(tree, specRoot, def)
	b.Case("same", func(ctx context.Context) error { return nil })
	b.Case("same", func(ctx context.Context) error { return nil })

	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "duplicate")
}

func TestSpecDefinition_Validate(t *testing.T) {
	valid := &SpecDefinition{Name: "ok", Policy: PerTest, New: func() SpecObject { return nil }}
	require.NoError(t, valid.Validate())

	assert.Error(t, (&SpecDefinition{Policy: PerTest, New: valid.New}).Validate())
	assert.Error(t, (&SpecDefinition{Name: "x", Policy: "both", New: valid.New}).Validate())
	assert.Error(t, (&SpecDefinition{Name: "x", Policy: SharedInstance}).Validate())
}

func TestInstancePolicy_Valid(t *testing.T) {
	assert.True(t, SharedInstance.Valid())
	assert.True(t, PerTest.Valid())
	assert.False(t, InstancePolicy("singleton").Valid())
}
