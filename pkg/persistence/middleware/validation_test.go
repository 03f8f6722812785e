package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/persistence/middleware"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/registry"
)

func TestValidationMiddleware_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(), middleware.NewValidationMiddleware(registry.New()))
	ports.RunTreeStoreContract(t, store)
}

func TestValidationMiddleware_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.NewValidationMiddleware(registry.New())(inner)

	err := store.Save(ctx, "bad", &domain.TreeSpec{
		Root:  "x",
		Nodes: []domain.NodeSpec{{ID: "x", Kind: "teleport"}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	err = store.Save(ctx, "nil", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)

	ids, err := inner.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

type recorder struct {
	name  string
	calls *[]string
}

func (r recorder) Validate(domain.TreeSpec) error {
	*r.calls = append(*r.calls, r.name)
	if r.name == "deny" {
		return errors.New("denied")
	}
	return nil
}

func TestChain_Order(t *testing.T) {
	var calls []string
	store := middleware.Chain(memory.NewStore(),
		middleware.NewValidationMiddleware(recorder{"outer", &calls}),
		middleware.NewValidationMiddleware(recorder{"inner", &calls}),
	)
	require.NoError(t, store.Save(context.Background(), "t", &domain.TreeSpec{Root: "a"}))
	assert.Equal(t, []string{"outer", "inner"}, calls)

	calls = nil
	store = middleware.Chain(memory.NewStore(),
		middleware.NewValidationMiddleware(recorder{"deny", &calls}),
		middleware.NewValidationMiddleware(recorder{"inner", &calls}),
	)
	assert.Error(t, store.Save(context.Background(), "t", &domain.TreeSpec{Root: "a"}))
	assert.Equal(t, []string{"deny"}, calls)
}

func TestValidationMiddleware_Watch(t *testing.T) {
	store := middleware.NewValidationMiddleware(registry.New())(memory.NewStore())
	w, ok := store.(ports.Watchable)
	require.True(t, ok)
	_, err := w.Watch(context.Background())
	assert.ErrorIs(t, err, ports.ErrNotWatchable)
}
