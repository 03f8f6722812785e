package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Validator checks that a definition can be built. *registry.Registry is one.
type Validator interface {
	Validate(spec domain.TreeSpec) error
}

type validationMiddleware struct {
	next      ports.TreeStore
	validator Validator
}

// NewValidationMiddleware creates a middleware that refuses to save definitions
// the validator rejects, so every stored tree can be loaded later.
func NewValidationMiddleware(v Validator) Middleware {
	return func(next ports.TreeStore) ports.TreeStore {
		return &validationMiddleware{next: next, validator: v}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, id string, spec *domain.TreeSpec) error {
	if spec == nil {
		return fmt.Errorf("%w: nil spec for %q", domain.ErrInvalidSpec, id)
	}
	if err := m.validator.Validate(*spec); err != nil {
		return fmt.Errorf("tree %q rejected: %w", id, err)
	}
	return m.next.Save(ctx, id, spec)
}

func (m *validationMiddleware) Load(ctx context.Context, id string) (*domain.TreeSpec, error) {
	return m.next.Load(ctx, id)
}

func (m *validationMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *validationMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Watch forwards to the wrapped store when it can report changes.
func (m *validationMiddleware) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := m.next.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ports.ErrNotWatchable
}
