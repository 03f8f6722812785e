package bt

import (
	"fmt"
	"maps"

	"github.com/aretw0/canopy/pkg/domain"
)

// Kind tags the execution policy of a node.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindSequence
	KindSelector
	KindParallel
	KindDecorator
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindSequence:
		return "sequence"
	case KindSelector:
		return "selector"
	case KindParallel:
		return "parallel"
	case KindDecorator:
		return "decorator"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsComposite reports whether the kind holds an ordered child list.
func (k Kind) IsComposite() bool {
	return k == KindSequence || k == KindSelector || k == KindParallel
}

// ParallelMode selects how a parallel node treats children that already succeeded
// during the current run.
type ParallelMode uint8

const (
	// ParallelSkipCompleted remembers which children succeeded during the run and
	// does not tick them again; the success counter counts distinct children.
	ParallelSkipCompleted ParallelMode = iota
	// ParallelRestart re-ticks every child on every call. A child that already
	// succeeded has no live context, so it is started again, and every success is
	// added to the counter.
	ParallelRestart
)

func (m ParallelMode) String() string {
	switch m {
	case ParallelSkipCompleted:
		return "skip"
	case ParallelRestart:
		return "restart"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseParallelMode converts "skip" or "restart" into a ParallelMode. An empty name yields the default.
func ParseParallelMode(name string) (ParallelMode, error) {
	switch name {
	case "", "skip":
		return ParallelSkipCompleted, nil
	case "restart":
		return ParallelRestart, nil
	}
	return ParallelSkipCompleted, fmt.Errorf("unknown parallel mode %q", name)
}

// Node is a build-phase node definition. Nodes carry topology and behavior only;
// per-run state lives in a Run. Edits made after Compile do not affect trees that
// were already compiled.
type Node struct {
	kind     Kind
	name     string
	children []*Node
	child    *Node
	mode     ParallelMode

	leaf leafHooks
	deco decoratorHooks

	tagKind   string
	tagConfig map[string]any
}

// NewSequence creates a sequence (AND) composite.
func NewSequence(name string, children ...*Node) *Node {
	return newComposite(KindSequence, name, children)
}

// NewSelector creates a selector (OR) composite.
func NewSelector(name string, children ...*Node) *Node {
	return newComposite(KindSelector, name, children)
}

// NewParallel creates a parallel composite.
func NewParallel(name string, mode ParallelMode, children ...*Node) *Node {
	n := newComposite(KindParallel, name, children)
	n.mode = mode
	return n
}

func newComposite(kind Kind, name string, children []*Node) *Node {
	n := &Node{kind: kind, name: name}
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Mode returns the parallel mode. It is meaningful only for KindParallel.
func (n *Node) Mode() ParallelMode { return n.mode }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	switch {
	case n.kind.IsComposite():
		return len(n.children)
	case n.kind == KindDecorator && n.child != nil:
		return 1
	}
	return 0
}

// Child returns the child at index, or nil when there is none.
func (n *Node) Child(index int) *Node {
	switch {
	case n.kind.IsComposite():
		if index < 0 || index >= len(n.children) {
			return nil
		}
		return n.children[index]
	case n.kind == KindDecorator && index == 0:
		return n.child
	}
	return nil
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	if n.kind == KindDecorator {
		if n.child == nil {
			return nil
		}
		return []*Node{n.child}
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// SetChild installs child at index. On composites an out-of-range index appends
// and an in-range index replaces. A decorator holds at most one child: index 0
// replaces it, any other index is rejected once a child is present. Leaves hold
// no children. Edits that would create a cycle are rejected.
func (n *Node) SetChild(child *Node, index int) error {
	if child == nil {
		return domain.ErrNilNode
	}
	if child == n || child.reaches(n) {
		return fmt.Errorf("%w: %q under %q", domain.ErrCycle, child.name, n.name)
	}

	switch {
	case n.kind.IsComposite():
		if index < 0 || index >= len(n.children) {
			n.children = append(n.children, child)
		} else {
			n.children[index] = child
		}
		return nil
	case n.kind == KindDecorator:
		if n.child != nil && index != 0 {
			return fmt.Errorf("%w: decorator %q already has a child", domain.ErrTooManyChildren, n.name)
		}
		n.child = child
		return nil
	}
	return fmt.Errorf("%w: leaf %q cannot hold children", domain.ErrTooManyChildren, n.name)
}

// AddChild appends child. It is SetChild with an out-of-range index.
func (n *Node) AddChild(child *Node) error {
	return n.SetChild(child, -1)
}

// RemoveChild removes the first occurrence of child and reports whether it was found.
func (n *Node) RemoveChild(child *Node) bool {
	switch {
	case n.kind.IsComposite():
		for i, c := range n.children {
			if c == child {
				n.children = append(n.children[:i], n.children[i+1:]...)
				return true
			}
		}
	case n.kind == KindDecorator:
		if child != nil && n.child == child {
			n.child = nil
			return true
		}
	}
	return false
}

// Tag records the persistence identity of the node: the registry kind name and the
// configuration it was built from. It returns n for chaining.
func (n *Node) Tag(kind string, config map[string]any) *Node {
	n.tagKind = kind
	n.tagConfig = maps.Clone(config)
	return n
}

// TagKind returns the registry kind recorded by Tag.
func (n *Node) TagKind() string { return n.tagKind }

// TagConfig returns a copy of the configuration recorded by Tag.
func (n *Node) TagConfig() map[string]any { return maps.Clone(n.tagConfig) }

// reaches reports whether target is a descendant of n.
func (n *Node) reaches(target *Node) bool {
	seen := make(map[*Node]bool)
	var walk func(*Node) bool
	walk = func(cur *Node) bool {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, c := range cur.Children() {
			if c == target || walk(c) {
				return true
			}
		}
		return false
	}
	return walk(n)
}
