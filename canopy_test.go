package canopy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/registry"
)

const patrolYAML = `id: patrol
root: root
nodes:
  - id: root
    kind: selector
    children: [attack, walk]
  - id: attack
    kind: sequence
    children: [see-enemy, strike]
  - id: see-enemy
    kind: fail
  - id: strike
    kind: succeed
  - id: walk
    kind: wait
    config:
      ticks: 2
`

const alarmYAML = `id: patrol
root: alarm
nodes:
  - id: alarm
    kind: fail
`

func writeTree(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patrol.yaml")
	writeTree(t, path, patrolYAML)

	engine, err := canopy.New(path)
	require.NoError(t, err)
	assert.Equal(t, "patrol", engine.Name())
	assert.Equal(t, 5, engine.Tree().Len())
	assert.Equal(t, path, engine.Source())

	ctx := context.Background()
	d := engine.Driver()
	id, err := d.Spawn(ctx, "guard")
	require.NoError(t, err)

	status, err := d.Tick(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bt.Running, status)

	status, err = d.Tick(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
}

func TestNew_Errors(t *testing.T) {
	_, err := canopy.New("")
	assert.Error(t, err)

	_, err = canopy.New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeTree(t, path, "root: x\nnodes:\n  - id: x\n    kind: teleport\n")
	_, err = canopy.New(path)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = canopy.New("", canopy.WithStore(memory.NewStore(), ""))
	assert.Error(t, err)
}

func TestNew_FromStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "door", &domain.TreeSpec{
		ID:   "door",
		Root: "open",
		Nodes: []domain.NodeSpec{
			{ID: "open", Kind: "door"},
		},
	}))

	reg := registry.New()
	require.NoError(t, reg.Register("door", registry.Factory{
		Description: "always opens",
		Build: func(in registry.Input) (*bt.Node, error) {
			return bt.Action(in.ID, func(context.Context) bt.Status { return bt.Success }), nil
		},
	}))

	engine, err := canopy.New("", canopy.WithStore(store, "door"), canopy.WithRegistry(reg))
	require.NoError(t, err)
	assert.Equal(t, "store:door", engine.Source())
	assert.Same(t, reg, engine.Registry())

	id, err := engine.Driver().Spawn(ctx, "")
	require.NoError(t, err)
	status, err := engine.Driver().Tick(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)

	_, err = engine.Watch(ctx)
	assert.ErrorIs(t, err, canopy.ErrNotWatchable)
}

func TestEngine_SpecIsACopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patrol.yaml")
	writeTree(t, path, patrolYAML)
	engine, err := canopy.New(path)
	require.NoError(t, err)

	spec := engine.Spec()
	spec.Nodes[0].Kind = "sequence"
	assert.Equal(t, "selector", engine.Spec().Nodes[0].Kind)
}

func TestEngine_Reload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "patrol.yaml")
	writeTree(t, path, patrolYAML)

	engine, err := canopy.New(path)
	require.NoError(t, err)
	d := engine.Driver()
	id, err := d.Spawn(ctx, "")
	require.NoError(t, err)

	status, err := d.Tick(ctx, id)
	require.NoError(t, err)
	require.Equal(t, bt.Running, status)

	writeTree(t, path, alarmYAML)
	require.NoError(t, engine.Reload(ctx))
	assert.Equal(t, "alarm", engine.Spec().Root)

	// The agent restarts on the new tree.
	status, err = d.Tick(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, bt.Failed, status)

	// A broken definition keeps the current tree.
	writeTree(t, path, "root: nope\nnodes: []\n")
	assert.ErrorIs(t, engine.Reload(ctx), domain.ErrInvalidSpec)
	assert.Equal(t, "alarm", engine.Spec().Root)
}

func TestEngine_Follow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patrol.yaml")
	writeTree(t, path, patrolYAML)
	engine, err := canopy.New(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 16)
	done := make(chan error, 1)
	go func() {
		done <- engine.Follow(ctx, func(err error) { reloaded <- err })
	}()

	// Give the watcher a moment to register.
	assert.Eventually(t, func() bool {
		writeTree(t, path, alarmYAML)
		select {
		case err := <-reloaded:
			return err == nil && engine.Spec().Root == "alarm"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not stop")
	}
}

func TestEngine_Kinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patrol.yaml")
	writeTree(t, path, patrolYAML)
	engine, err := canopy.New(path)
	require.NoError(t, err)

	var names []string
	for _, k := range engine.Kinds() {
		names = append(names, k.Name)
	}
	assert.Contains(t, names, "sequence")
	assert.Contains(t, names, "wait")
	assert.Contains(t, names, "retry")
}
