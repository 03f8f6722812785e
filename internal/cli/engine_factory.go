package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/observability"
)

// EngineOptions selects where the tree comes from and how it is driven.
type EngineOptions struct {
	// Path is a YAML or JSON tree file.
	Path string
	// RedisURL loads the tree from a redis store instead of Path.
	RedisURL string
	// TreeID is the stored tree to load. Defaults to Path's base name.
	TreeID string
	// Concurrency bounds parallel agent ticks. 0 means unbounded.
	Concurrency int
	// Hooks are added to the debug logging hooks.
	Hooks domain.LifecycleHooks
}

// treeID is the id the tree is stored under.
func (o EngineOptions) treeID() string {
	if o.TreeID != "" {
		return o.TreeID
	}
	base := filepath.Base(o.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CreateEngine initializes an engine with the CLI conventions: node lifecycle
// events are logged at debug level, and a redis URL switches the tree source.
func CreateEngine(opts EngineOptions, logger *slog.Logger) (*canopy.Engine, error) {
	hooks := opts.Hooks
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		hooks = domain.ChainHooks(observability.LoggingHooks(logger), hooks)
	}

	engineOpts := []canopy.Option{
		canopy.WithLogger(logger),
		canopy.WithLifecycleHooks(hooks),
		canopy.WithConcurrency(opts.Concurrency),
	}

	if opts.RedisURL != "" {
		redisOpts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		store := redis.NewFromClient(backend.NewClient(redisOpts), redis.WithLogger(logger))
		engineOpts = append(engineOpts, canopy.WithStore(store, opts.treeID()))
	}

	engine, err := canopy.New(opts.Path, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
