package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/pkg/domain"
)

// RunTreeStoreContract runs the behavior every TreeStore implementation must share.
func RunTreeStoreContract(t *testing.T, store TreeStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	spec := &domain.TreeSpec{
		ID:          id,
		Description: "guard patrol",
		Root:        "root",
		Nodes: []domain.NodeSpec{
			{ID: "root", Kind: "sequence", Children: []string{"wait", "done"}},
			{ID: "wait", Kind: "wait", Config: map[string]any{"ticks": 2, "result": "success"}},
			{ID: "done", Kind: "succeed"},
		},
		Metadata: map[string]string{"owner": "contract"},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, spec))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, spec.Root, loaded.Root)
		assert.Equal(t, spec.Description, loaded.Description)
		assert.Equal(t, spec.Metadata, loaded.Metadata)
		require.Len(t, loaded.Nodes, 3)
		assert.Equal(t, []string{"wait", "done"}, loaded.Nodes[0].Children)
		// Numbers may come back as float64 from JSON backends.
		assert.EqualValues(t, 2, toFloat(loaded.Nodes[1].Config["ticks"]))
		assert.Equal(t, "success", loaded.Nodes[1].Config["result"])
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Nodes[0].Kind = "selector"
		loaded.Nodes[1].Config["ticks"] = 99

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "sequence", again.Nodes[0].Kind)
		assert.EqualValues(t, 2, toFloat(again.Nodes[1].Config["ticks"]))
	})

	t.Run("Save overwrites", func(t *testing.T) {
		changed := *spec
		changed.Description = "night patrol"
		require.NoError(t, store.Save(ctx, id, &changed))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "night patrol", loaded.Description)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+id)
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := id + "-other"
		require.NoError(t, store.Save(ctx, other, spec))
		defer func() { _ = store.Delete(ctx, other) }()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id)
		assert.Contains(t, ids, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, id)
	})
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float64:
		return n
	}
	return -1
}
