// Package registry maps node kind names to factories so that trees can be built
// from plain data (domain.TreeSpec) and reduced back to it.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/schema"
)

// Shape is the child arity a kind accepts.
type Shape string

const (
	ShapeLeaf      Shape = "leaf"      // no children
	ShapeDecorator Shape = "decorator" // at most one child
	ShapeComposite Shape = "composite" // any number of children
)

func (s Shape) accepts(n int) bool {
	switch s {
	case ShapeLeaf:
		return n == 0
	case ShapeDecorator:
		return n <= 1
	}
	return true
}

// Input is what a factory receives for one node.
type Input struct {
	ID       string
	Kind     string
	Config   map[string]any
	Children []*bt.Node
	Logger   *slog.Logger
}

// Child returns the first child, or nil. Decorator factories use it.
func (in Input) Child() *bt.Node {
	if len(in.Children) == 0 {
		return nil
	}
	return in.Children[0]
}

// Decode decodes the node config into out, which should be a pointer to a struct
// with mapstructure tags. Fields already set on out act as defaults.
func (in Input) Decode(out any) error {
	return decodeConfig(in.Config, out)
}

// BuildFunc creates the node for one spec entry. It should name the node in.ID.
type BuildFunc func(in Input) (*bt.Node, error)

// Factory describes a node kind.
type Factory struct {
	Shape       Shape
	Description string
	// Schema lists the accepted config keys. Every key is optional.
	Schema schema.Schema
	Build  BuildFunc
}

// KindInfo is the catalog entry of a registered kind.
type KindInfo struct {
	Name        string        `json:"name"`
	Shape       Shape         `json:"shape"`
	Description string        `json:"description,omitempty"`
	Schema      schema.Schema `json:"schema,omitempty"`
}

// Registry is a concurrency-safe set of node kinds.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]Factory
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to factories (the "log" leaf writes to it).
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a registry holding the built-in kinds.
func New(opts ...Option) *Registry {
	r := &Registry{
		kinds:  make(map[string]Factory),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for kind, f := range builtins() {
		r.kinds[kind] = f
	}
	return r
}

// Register adds a kind. An existing kind with the same name is replaced.
func (r *Registry) Register(kind string, f Factory) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return errors.New("registry: kind name is required")
	}
	if f.Build == nil {
		return fmt.Errorf("registry: kind %q has no build function", kind)
	}
	if f.Shape == "" {
		f.Shape = ShapeLeaf
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = f
	return nil
}

// Lookup returns the factory registered under kind.
func (r *Registry) Lookup(kind string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.kinds[kind]
	return f, ok
}

// Kinds returns the catalog sorted by name.
func (r *Registry) Kinds() []KindInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]KindInfo, 0, len(r.kinds))
	for name, f := range r.kinds {
		out = append(out, KindInfo{Name: name, Shape: f.Shape, Description: f.Description, Schema: f.Schema})
	}
	slices.SortFunc(out, func(a, b KindInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}
