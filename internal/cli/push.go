package cli

import (
	"context"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/persistence/middleware"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/registry"
)

// PushOptions selects the tree file to publish and the store receiving it.
type PushOptions struct {
	Path string
	// RedisURL pushes to redis. Otherwise the tree goes to the Dir file store.
	RedisURL string
	Dir      string
	// TreeID overrides the id in the file.
	TreeID string
}

// Push validates the tree file and saves it to a store, returning the id it
// was stored under.
func Push(ctx context.Context, opts PushOptions, logger *slog.Logger) (string, error) {
	spec, err := file.ReadSpec(opts.Path)
	if err != nil {
		return "", err
	}
	id := spec.ID
	if opts.TreeID != "" {
		id = opts.TreeID
		spec.ID = id
	}

	var store ports.TreeStore
	if opts.RedisURL != "" {
		redisOpts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return "", fmt.Errorf("invalid redis url: %w", err)
		}
		rs := redis.NewFromClient(backend.NewClient(redisOpts), redis.WithLogger(logger))
		defer rs.Close()
		store = rs
	} else {
		store = file.New(opts.Dir, file.WithLogger(logger))
	}

	store = middleware.Chain(store, middleware.NewValidationMiddleware(registry.New(registry.WithLogger(logger))))
	if err := store.Save(ctx, id, spec); err != nil {
		return "", err
	}
	logger.Info("tree pushed", "tree", id)
	return id, nil
}
