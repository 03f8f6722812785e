package ports

import (
	"context"
	"errors"

	"github.com/aretw0/canopy/pkg/domain"
)

// TreeStore persists tree definitions under string ids.
type TreeStore interface {
	// Save stores spec under id, replacing any previous version.
	Save(ctx context.Context, id string, spec *domain.TreeSpec) error

	// Load returns the spec stored under id.
	// Returns domain.ErrTreeNotFound if there is none.
	Load(ctx context.Context, id string) (*domain.TreeSpec, error)

	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored ids.
	List(ctx context.Context) ([]string, error)
}

// ErrNotWatchable is returned when a tree source cannot report changes.
var ErrNotWatchable = errors.New("tree source does not support watching")

// Watchable is implemented by stores that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that receives the id of every tree that changed.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
