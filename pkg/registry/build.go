package registry

import (
	"fmt"
	"strconv"

	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/schema"
)

// Build turns a tree spec into a build-phase node graph rooted at spec.Root.
// A node id referenced by several parents is built once and shared. Nodes are
// tagged with their kind and config so Reduce can recover the spec.
func (r *Registry) Build(spec domain.TreeSpec) (*bt.Node, error) {
	index, err := indexSpec(spec)
	if err != nil {
		return nil, err
	}
	b := &builder{
		reg:    r,
		index:  index,
		built:  make(map[string]*bt.Node, len(index)),
		onPath: make(map[string]bool),
	}
	return b.build(spec.Root)
}

// Validate checks spec without keeping the result.
func (r *Registry) Validate(spec domain.TreeSpec) error {
	_, err := r.Build(spec)
	return err
}

func indexSpec(spec domain.TreeSpec) (map[string]domain.NodeSpec, error) {
	if spec.Root == "" {
		return nil, fmt.Errorf("%w: root is required", domain.ErrInvalidSpec)
	}
	index := make(map[string]domain.NodeSpec, len(spec.Nodes))
	for i, n := range spec.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: node #%d has no id", domain.ErrInvalidSpec, i)
		}
		if _, dup := index[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %q", domain.ErrInvalidSpec, n.ID)
		}
		index[n.ID] = n
	}
	if _, ok := index[spec.Root]; !ok {
		return nil, fmt.Errorf("%w: root %q is not defined", domain.ErrInvalidSpec, spec.Root)
	}
	for _, n := range spec.Nodes {
		for _, c := range n.Children {
			if _, ok := index[c]; !ok {
				return nil, fmt.Errorf("%w: node %q references unknown child %q", domain.ErrInvalidSpec, n.ID, c)
			}
		}
	}
	return index, nil
}

type builder struct {
	reg    *Registry
	index  map[string]domain.NodeSpec
	built  map[string]*bt.Node
	onPath map[string]bool
}

func (b *builder) build(id string) (*bt.Node, error) {
	if b.onPath[id] {
		return nil, fmt.Errorf("%w: node %q is its own ancestor", domain.ErrCycle, id)
	}
	if n, ok := b.built[id]; ok {
		return n, nil
	}
	spec := b.index[id]

	f, ok := b.reg.Lookup(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("node %q: %w: %q", id, domain.ErrUnknownKind, spec.Kind)
	}
	if !f.Shape.accepts(len(spec.Children)) {
		return nil, fmt.Errorf("node %q: %w: %s kind %q takes %s", id, domain.ErrTooManyChildren, f.Shape, spec.Kind, arity(f.Shape))
	}
	if err := schema.ValidatePartial(f.Schema, spec.Config); err != nil {
		return nil, fmt.Errorf("node %q: %w: %w", id, domain.ErrInvalidSpec, err)
	}

	b.onPath[id] = true
	children := make([]*bt.Node, 0, len(spec.Children))
	for _, c := range spec.Children {
		child, err := b.build(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	b.onPath[id] = false

	node, err := f.Build(Input{
		ID:       id,
		Kind:     spec.Kind,
		Config:   spec.Config,
		Children: children,
		Logger:   b.reg.logger.With("kind", spec.Kind),
	})
	if err != nil {
		return nil, fmt.Errorf("node %q: %w: %w", id, domain.ErrInvalidSpec, err)
	}
	if node == nil {
		return nil, fmt.Errorf("node %q: %w: kind %q built nothing", id, domain.ErrInvalidSpec, spec.Kind)
	}
	node.Tag(spec.Kind, spec.Config)
	b.built[id] = node
	return node, nil
}

func arity(s Shape) string {
	switch s {
	case ShapeLeaf:
		return "no children"
	case ShapeDecorator:
		return "at most one child"
	}
	return "any number of children"
}

// Reduce converts a node graph back into a tree spec. Node names become ids,
// made unique with a numeric suffix where two distinct nodes share a name; a
// node reachable through several parents keeps one id. Untagged composites are
// reduced to the built-in kinds; untagged leaves and decorators cannot be
// reduced and yield ErrUnknownKind.
func (r *Registry) Reduce(root *bt.Node) (domain.TreeSpec, error) {
	if root == nil {
		return domain.TreeSpec{}, domain.ErrNilNode
	}
	red := &reducer{
		reg:    r,
		ids:    make(map[*bt.Node]string),
		used:   make(map[string]bool),
		onPath: make(map[*bt.Node]bool),
	}
	rootID, err := red.visit(root)
	if err != nil {
		return domain.TreeSpec{}, err
	}
	return domain.TreeSpec{Root: rootID, Nodes: red.nodes}, nil
}

type reducer struct {
	reg    *Registry
	ids    map[*bt.Node]string
	used   map[string]bool
	onPath map[*bt.Node]bool
	nodes  []domain.NodeSpec
}

func (r *reducer) visit(n *bt.Node) (string, error) {
	if id, ok := r.ids[n]; ok {
		if r.onPath[n] {
			return "", fmt.Errorf("%w: node %q is its own ancestor", domain.ErrCycle, id)
		}
		return id, nil
	}
	kind, config, err := r.kindOf(n)
	if err != nil {
		return "", err
	}

	id := r.uniqueID(n.Name())
	r.ids[n] = id
	r.onPath[n] = true
	pos := len(r.nodes)
	r.nodes = append(r.nodes, domain.NodeSpec{ID: id, Kind: kind, Config: config})

	for _, c := range n.Children() {
		cid, err := r.visit(c)
		if err != nil {
			return "", err
		}
		r.nodes[pos].Children = append(r.nodes[pos].Children, cid)
	}
	r.onPath[n] = false
	return id, nil
}

func (r *reducer) kindOf(n *bt.Node) (string, map[string]any, error) {
	if kind := n.TagKind(); kind != "" {
		if _, ok := r.reg.Lookup(kind); !ok {
			return "", nil, fmt.Errorf("node %q: %w: %q", n.Name(), domain.ErrUnknownKind, kind)
		}
		return kind, n.TagConfig(), nil
	}
	switch n.Kind() {
	case bt.KindSequence, bt.KindSelector:
		return n.Kind().String(), nil, nil
	case bt.KindParallel:
		return "parallel", map[string]any{"mode": n.Mode().String()}, nil
	}
	return "", nil, fmt.Errorf("node %q: %w: %s was not built from a registered kind", n.Name(), domain.ErrUnknownKind, n.Kind())
}

func (r *reducer) uniqueID(name string) string {
	base := name
	if base == "" {
		base = "node"
	}
	id := base
	for i := 2; r.used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	r.used[id] = true
	return id
}
