package canopy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/driver"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/registry"
)

// ErrNotWatchable is returned by Watch when the tree source cannot report changes.
var ErrNotWatchable = ports.ErrNotWatchable

// Engine is the high-level entry point: it loads a tree definition, builds it
// through a registry and drives agents over the result.
type Engine struct {
	path        string
	store       ports.TreeStore
	treeID      string
	registry    *registry.Registry
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	concurrency int

	mu     sync.RWMutex
	spec   *domain.TreeSpec
	driver *driver.Manager
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore loads the tree stored under id instead of reading a file.
func WithStore(store ports.TreeStore, id string) Option {
	return func(e *Engine) {
		e.store = store
		e.treeID = id
	}
}

// WithRegistry replaces the default registry, typically one with custom kinds.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on every agent run.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithConcurrency bounds how many agents TickAll advances at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// New loads the tree at path (YAML or JSON) and prepares a driver for it.
// With WithStore, path is ignored and the stored tree is loaded instead.
func New(path string, opts ...Option) (*Engine, error) {
	e := &Engine{path: path}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil && path == "" {
		return nil, fmt.Errorf("path is required when no store is provided")
	}
	if e.store != nil && e.treeID == "" {
		return nil, fmt.Errorf("tree id is required with a store")
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.registry == nil {
		e.registry = registry.New(registry.WithLogger(e.logger))
	}

	spec, tree, err := e.load(context.Background())
	if err != nil {
		return nil, err
	}
	e.logger = e.logger.With("tree", spec.ID)
	e.spec = spec
	e.driver = driver.NewManager(tree,
		driver.WithLogger(e.logger),
		driver.WithHooks(e.hooks),
		driver.WithConcurrency(e.concurrency),
	)
	return e, nil
}

func (e *Engine) load(ctx context.Context) (*domain.TreeSpec, *bt.Tree, error) {
	var (
		spec *domain.TreeSpec
		err  error
	)
	if e.store != nil {
		spec, err = e.store.Load(ctx, e.treeID)
	} else {
		spec, err = file.ReadSpec(e.path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tree: %w", err)
	}
	root, err := e.registry.Build(*spec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build tree %q: %w", spec.ID, err)
	}
	tree, err := bt.Compile(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile tree %q: %w", spec.ID, err)
	}
	return spec, tree, nil
}

// Name is the tree id.
func (e *Engine) Name() string {
	return e.Spec().ID
}

// Spec returns a copy of the loaded definition.
func (e *Engine) Spec() *domain.TreeSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.spec.Clone()
}

// Tree returns the compiled tree agents are currently driven over.
func (e *Engine) Tree() *bt.Tree {
	return e.driver.Tree()
}

// Driver returns the agent manager.
func (e *Engine) Driver() *driver.Manager {
	return e.driver
}

// Registry returns the registry trees are built with.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Kinds describes the node kinds the registry can build.
func (e *Engine) Kinds() []registry.KindInfo {
	return e.registry.Kinds()
}

// Reload reads and rebuilds the definition. On success every agent moves to the
// new tree on its next tick, starting from a fresh run; on failure the current
// tree stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	spec, tree, err := e.load(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.spec = spec
	e.mu.Unlock()
	e.driver.Swap(tree)
	e.logger.Info("tree reloaded", "nodes", tree.Len())
	return nil
}

// Watch returns a channel that signals when the tree definition changes.
// Returns ErrNotWatchable if the store cannot report changes.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if e.store == nil {
		return file.WatchFile(ctx, e.path, e.logger)
	}
	w, ok := e.store.(ports.Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for id := range changes {
			if id != e.treeID {
				continue
			}
			select {
			case out <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Follow reloads the tree on every change until ctx is done. onReload, if set,
// receives the outcome of each attempt.
func (e *Engine) Follow(ctx context.Context, onReload func(error)) error {
	changes, err := e.Watch(ctx)
	if err != nil {
		return err
	}
	for range changes {
		err := e.Reload(ctx)
		if err != nil {
			e.logger.Warn("tree reload failed", "error", err)
		}
		if onReload != nil {
			onReload(err)
		}
	}
	return ctx.Err()
}

// Source describes where the tree is loaded from.
func (e *Engine) Source() string {
	if e.store != nil {
		return "store:" + e.treeID
	}
	if abs, err := filepath.Abs(e.path); err == nil {
		return abs
	}
	return e.path
}
