package dsl

import (
	"slices"

	"github.com/aretw0/canopy/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node domain.NodeSpec
}

// Kind sets the registry kind of the node.
func (n *NodeBuilder) Kind(kind string) *NodeBuilder {
	n.node.Kind = kind
	return n
}

// Children appends child references.
func (n *NodeBuilder) Children(ids ...string) *NodeBuilder {
	n.node.Children = append(n.node.Children, ids...)
	return n
}

// Set adds a config entry.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	if n.node.Config == nil {
		n.node.Config = make(map[string]any)
	}
	n.node.Config[key] = value
	return n
}

// Sequence makes the node a sequence over children.
func (n *NodeBuilder) Sequence(children ...string) *NodeBuilder {
	return n.Kind("sequence").Children(children...)
}

// Selector makes the node a selector over children.
func (n *NodeBuilder) Selector(children ...string) *NodeBuilder {
	return n.Kind("selector").Children(children...)
}

// Parallel makes the node a parallel over children. mode is "skip" or "restart";
// empty keeps the registry default.
func (n *NodeBuilder) Parallel(mode string, children ...string) *NodeBuilder {
	n.Kind("parallel").Children(children...)
	if mode != "" {
		n.Set("mode", mode)
	}
	return n
}

// Decorate makes the node a decorator of the given kind over child.
func (n *NodeBuilder) Decorate(kind, child string) *NodeBuilder {
	return n.Kind(kind).Children(child)
}

// Build returns the underlying domain.NodeSpec.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.NodeSpec {
	out := n.node
	out.Children = slices.Clone(n.node.Children)
	return out
}
