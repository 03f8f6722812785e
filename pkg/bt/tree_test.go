package bt

import (
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_PreOrderLayout(t *testing.T) {
	root := NewSequence("root",
		NewSelector("sel", leaf("a", newMock()), leaf("b", newMock())),
		leaf("c", newMock()),
	)
	tree, err := Compile(root)
	require.NoError(t, err)
	require.Equal(t, 5, tree.Len())

	names := make([]string, 0, tree.Len())
	for _, info := range tree.Nodes() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"root", "sel", "a", "b", "c"}, names)

	sel := tree.Info(1)
	assert.Equal(t, 0, sel.Parent)
	assert.Equal(t, 1, sel.Depth)
	assert.Equal(t, []int{2, 3}, sel.Children)
	assert.Equal(t, KindSelector, sel.Kind)
	assert.Equal(t, 4, tree.nodes[1].end)
	assert.Same(t, root, tree.Root())
}

func TestCompile_SharedNodeGetsOneSlotPerPath(t *testing.T) {
	shared := leaf("shared", newMock())
	root := NewParallel("root", ParallelSkipCompleted, NewSequence("left", shared), NewSequence("right", shared))

	tree, err := Compile(root)
	require.NoError(t, err)
	assert.Equal(t, 5, tree.Len())
}

func TestCompile_RejectsCycleAndNil(t *testing.T) {
	_, err := Compile(nil)
	assert.ErrorIs(t, err, domain.ErrNilNode)

	a := NewSequence("a")
	b := NewSequence("b", a)
	a.children = append(a.children, b) // bypasses SetChild on purpose

	_, err = Compile(a)
	assert.ErrorIs(t, err, domain.ErrCycle)
}

func TestCompile_EditsAfterCompileDoNotLeak(t *testing.T) {
	root := NewSequence("root", leaf("a", newMock()))
	tree := MustCompile(root)

	require.NoError(t, root.AddChild(leaf("late", newMock())))
	assert.Equal(t, 2, tree.Len())

	recompiled := MustCompile(root)
	assert.Equal(t, 3, recompiled.Len())
}

func TestCompile_ZeroNodeIsDefaultLeaf(t *testing.T) {
	tree := MustCompile(&Node{})
	assert.Equal(t, Success, tree.NewRun().Tick(bg))
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile(nil) })
}
