package domain

import (
	"maps"
	"slices"
)

// NodeSpec is the plain data form of a node: type identity, child references and
// kind-specific configuration. Children reference other NodeSpec IDs in order.
type NodeSpec struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     string         `json:"kind" yaml:"kind"`
	Children []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Config   map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// TreeSpec is the plain data form of a behavior tree.
type TreeSpec struct {
	ID          string            `json:"id" yaml:"id"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Root        string            `json:"root" yaml:"root"`
	Nodes       []NodeSpec        `json:"nodes" yaml:"nodes"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Node returns the spec of the node with the given ID.
func (t *TreeSpec) Node(id string) (NodeSpec, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeSpec{}, false
}

// Clone returns a copy of t that shares no slices or maps with it. Config values
// themselves are copied shallowly.
func (t *TreeSpec) Clone() *TreeSpec {
	if t == nil {
		return nil
	}
	out := *t
	out.Metadata = maps.Clone(t.Metadata)
	out.Nodes = make([]NodeSpec, len(t.Nodes))
	for i, n := range t.Nodes {
		n.Children = slices.Clone(n.Children)
		n.Config = maps.Clone(n.Config)
		out.Nodes[i] = n
	}
	return &out
}
