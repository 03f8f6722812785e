package bt

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// compiled is one node occurrence in a compiled tree. Indices are assigned in
// pre-order, so the subtree of index i occupies [i, end).
type compiled struct {
	node     *Node
	parent   int
	depth    int
	children []int
	end      int

	leaf leafHooks
	deco decoratorHooks
}

// Tree is an immutable, compiled behavior tree. It is safe for concurrent use as
// long as every goroutine ticks its own Run.
type Tree struct {
	root  *Node
	nodes []compiled
}

// defaultLeaf backs leaves constructed without a behavior (the zero Node).
var defaultLeaf leafHooks = leafAdapter[struct{}]{leaf: BaseLeaf[struct{}]{}}

// Compile snapshots the topology reachable from root into a new Tree.
// A node reachable through several parents gets one occurrence (and one context
// slot) per path. Cycles are rejected.
func Compile(root *Node) (*Tree, error) {
	if root == nil {
		return nil, domain.ErrNilNode
	}

	t := &Tree{root: root}
	onPath := make(map[*Node]bool)

	var visit func(n *Node, parent, depth int) (int, error)
	visit = func(n *Node, parent, depth int) (int, error) {
		if onPath[n] {
			return 0, fmt.Errorf("%w: node %q is its own ancestor", domain.ErrCycle, n.name)
		}
		onPath[n] = true
		defer delete(onPath, n)

		idx := len(t.nodes)
		c := compiled{node: n, parent: parent, depth: depth, leaf: n.leaf, deco: n.deco}
		switch n.kind {
		case KindLeaf:
			if c.leaf == nil {
				c.leaf = defaultLeaf
			}
		case KindDecorator:
			if c.deco == nil {
				c.deco = decoratorAdapter[struct{}]{behavior: BaseDecorator[struct{}]{}}
			}
		}
		t.nodes = append(t.nodes, c)

		kids := n.Children()
		childIdx := make([]int, 0, len(kids))
		for _, kid := range kids {
			ci, err := visit(kid, idx, depth+1)
			if err != nil {
				return 0, err
			}
			childIdx = append(childIdx, ci)
		}
		t.nodes[idx].children = childIdx
		t.nodes[idx].end = len(t.nodes)
		return idx, nil
	}

	if _, err := visit(root, -1, 0); err != nil {
		return nil, err
	}
	return t, nil
}

// MustCompile is like Compile but panics on error. It is meant for trees built in code.
func MustCompile(root *Node) *Tree {
	t, err := Compile(root)
	if err != nil {
		panic(err)
	}
	return t
}

// Root returns the root node definition the tree was compiled from.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of compiled node occurrences.
func (t *Tree) Len() int { return len(t.nodes) }

// NodeInfo describes one compiled node occurrence.
type NodeInfo struct {
	Index    int          `json:"index"`
	Parent   int          `json:"parent"`
	Depth    int          `json:"depth"`
	Name     string       `json:"name"`
	Kind     Kind         `json:"-"`
	KindName string       `json:"kind"`
	Type     string       `json:"type,omitempty"`
	Mode     ParallelMode `json:"-"`
	Children []int        `json:"children,omitempty"`
}

// Info returns the description of the node at index.
func (t *Tree) Info(index int) NodeInfo {
	c := t.nodes[index]
	return NodeInfo{
		Index:    index,
		Parent:   c.parent,
		Depth:    c.depth,
		Name:     c.node.name,
		Kind:     c.node.kind,
		KindName: c.node.kind.String(),
		Type:     c.node.tagKind,
		Mode:     c.node.mode,
		Children: append([]int(nil), c.children...),
	}
}

// Nodes returns every compiled node in pre-order.
func (t *Tree) Nodes() []NodeInfo {
	out := make([]NodeInfo, len(t.nodes))
	for i := range t.nodes {
		out[i] = t.Info(i)
	}
	return out
}
