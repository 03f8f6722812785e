package dsl

import (
	"context"
	"fmt"
	"maps"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	id          string
	description string
	root        string
	order       []string
	nodes       map[string]*NodeBuilder
	metadata    map[string]string
}

// New creates a new tree builder.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Describe sets the tree description.
func (b *Builder) Describe(description string) *Builder {
	b.description = description
	return b
}

// Root overrides the root node id.
func (b *Builder) Root(id string) *Builder {
	b.root = id
	return b
}

// Meta sets a metadata entry.
func (b *Builder) Meta(key, value string) *Builder {
	if b.metadata == nil {
		b.metadata = make(map[string]string)
	}
	b.metadata[key] = value
	return b
}

// Add creates a new node in the tree.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{node: domain.NodeSpec{ID: id}}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Spec returns the definition, nodes in the order they were added.
func (b *Builder) Spec() *domain.TreeSpec {
	spec := &domain.TreeSpec{
		ID:          b.id,
		Description: b.description,
		Root:        b.root,
		Metadata:    maps.Clone(b.metadata),
		Nodes:       make([]domain.NodeSpec, 0, len(b.order)),
	}
	if spec.Root == "" && len(b.order) > 0 {
		spec.Root = b.order[0]
	}
	for _, id := range b.order {
		spec.Nodes = append(spec.Nodes, b.nodes[id].Build())
	}
	return spec.Clone()
}

// Build stores the definition in a new in-memory store under the tree id.
func (b *Builder) Build() (*memory.Store, error) {
	if b.id == "" {
		return nil, fmt.Errorf("%w: tree id is required", domain.ErrInvalidSpec)
	}
	if len(b.order) == 0 {
		return nil, fmt.Errorf("%w: tree %q has no nodes", domain.ErrInvalidSpec, b.id)
	}
	store := memory.NewStore()
	if err := store.Save(context.Background(), b.id, b.Spec()); err != nil {
		return nil, fmt.Errorf("failed to build memory store: %w", err)
	}
	return store, nil
}
