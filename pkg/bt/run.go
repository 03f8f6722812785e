package bt

import (
	"context"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
)

// slot is the context of one compiled node within one run.
type slot struct {
	status    Status
	current   int    // active child (sequence, selector, parallel)
	succeeded int    // parallel success counter
	done      []bool // parallel per-child completion, ParallelSkipCompleted only
	state     any    // leaf or decorator payload
}

// Run holds all mutable state of one agent's execution of a Tree. A Run is not safe
// for concurrent use; the tree it belongs to is.
type Run struct {
	tree  *Tree
	id    string
	slots []slot
	hooks domain.LifecycleHooks

	ctx   context.Context
	last  Status
	ticks uint64
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithRunID labels the run; the ID is reported in lifecycle events.
func WithRunID(id string) RunOption {
	return func(r *Run) {
		r.id = id
	}
}

// WithHooks registers lifecycle hooks for the run.
func WithHooks(hooks domain.LifecycleHooks) RunOption {
	return func(r *Run) {
		r.hooks = hooks
	}
}

// NewRun allocates the slot arena for one execution of t.
func (t *Tree) NewRun(opts ...RunOption) *Run {
	r := &Run{tree: t, slots: make([]slot, len(t.nodes))}
	for i, c := range t.nodes {
		if c.node.kind == KindParallel {
			r.slots[i].done = make([]bool, len(c.children))
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tick evaluates the root node once against r and returns its status.
// It panics if r was created by a different tree.
func (t *Tree) Tick(ctx context.Context, r *Run) Status {
	if r.tree != t {
		panic("bt: run was created by a different tree")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var began time.Time
	if r.hooks.OnTick != nil {
		began = time.Now()
	}

	r.ctx = ctx
	status := r.tick(0)
	r.ctx = nil
	r.last = status
	r.ticks++

	if r.hooks.OnTick != nil {
		r.hooks.OnTick(ctx, &domain.TickEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTick, RunID: r.id},
			Status:    status,
			Duration:  time.Since(began),
		})
	}
	return status
}

// Tick is shorthand for r.Tree().Tick(ctx, r).
func (r *Run) Tick(ctx context.Context) Status {
	return r.tree.Tick(ctx, r)
}

// Tree returns the tree the run belongs to.
func (r *Run) Tree() *Tree { return r.tree }

// ID returns the run label set with WithRunID.
func (r *Run) ID() string { return r.id }

// LastStatus returns the status of the most recent tick, Invalid before the first.
func (r *Run) LastStatus() Status { return r.last }

// Ticks returns the number of ticks issued on the run.
func (r *Run) Ticks() uint64 { return r.ticks }

// Status returns the context status of the node at index: Running while the node
// has a live run, Invalid otherwise.
func (r *Run) Status(index int) Status {
	return r.slots[index].status
}

// Reset abandons every live context without calling any Terminate hook.
func (r *Run) Reset() {
	r.destroy(0)
	r.last = Invalid
}

// SlotView is a read-only view of one node's context.
type SlotView struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Status  Status `json:"status"`
	Current int    `json:"current,omitempty"`
}

// Snapshot returns the context of every compiled node in pre-order.
func (r *Run) Snapshot() []SlotView {
	out := make([]SlotView, len(r.slots))
	for i, s := range r.slots {
		n := r.tree.nodes[i].node
		out[i] = SlotView{Index: i, Name: n.name, Kind: n.kind.String(), Status: s.status, Current: s.current}
	}
	return out
}

// Active returns the indices of every node with a live context.
func (r *Run) Active() []int {
	var out []int
	for i, s := range r.slots {
		if s.status != Invalid {
			out = append(out, i)
		}
	}
	return out
}

// tick enforces the lifecycle for the node at idx.
func (r *Run) tick(idx int) Status {
	n := &r.tree.nodes[idx]
	s := &r.slots[idx]
	c := Context{ctx: r.ctx, run: r, idx: idx}

	if s.status == Invalid {
		r.open(n, s)
		r.start(c, n, s)
	}

	status := r.update(c, n, s)
	if status == Invalid {
		status = Failed
	}
	s.status = status

	if status != Running {
		r.terminate(c, n, s, status)
		r.destroy(idx)
	}
	return status
}

// open creates a fresh context in s.
func (r *Run) open(n *compiled, s *slot) {
	s.status = Running
	s.current = 0
	s.succeeded = 0
	clear(s.done)
	switch n.node.kind {
	case KindLeaf:
		s.state = n.leaf.newState()
	case KindDecorator:
		s.state = n.deco.newState()
	default:
		s.state = nil
	}
}

func (r *Run) start(c Context, n *compiled, s *slot) {
	switch n.node.kind {
	case KindLeaf:
		n.leaf.start(c, s.state)
	case KindDecorator:
		n.deco.start(c, s.state)
	case KindSequence, KindSelector, KindParallel:
		s.current = 0
		s.succeeded = 0
	}
	if r.hooks.OnNodeStart != nil {
		r.hooks.OnNodeStart(r.ctx, r.nodeEvent(domain.EventNodeStart, c.idx, Running))
	}
}

func (r *Run) update(c Context, n *compiled, s *slot) Status {
	switch n.node.kind {
	case KindLeaf:
		return n.leaf.update(c, s.state)
	case KindDecorator:
		child := Child{run: r, idx: -1}
		if len(n.children) == 1 {
			child.idx = n.children[0]
		}
		return n.deco.update(c, s.state, child)
	case KindSequence:
		return r.updateSequence(n, s)
	case KindSelector:
		return r.updateSelector(n, s)
	case KindParallel:
		return r.updateParallel(n, s)
	}
	return Failed
}

func (r *Run) terminate(c Context, n *compiled, s *slot, status Status) {
	switch n.node.kind {
	case KindLeaf:
		n.leaf.terminate(c, s.state, status)
	case KindDecorator:
		n.deco.terminate(c, s.state, status)
	}
	if r.hooks.OnNodeTerminate != nil {
		r.hooks.OnNodeTerminate(r.ctx, r.nodeEvent(domain.EventNodeTerminate, c.idx, status))
	}
}

// destroy resets the context at idx and every context below it.
func (r *Run) destroy(idx int) {
	end := r.tree.nodes[idx].end
	for i := idx; i < end; i++ {
		s := &r.slots[i]
		s.status = Invalid
		s.current = 0
		s.succeeded = 0
		s.state = nil
		clear(s.done)
	}
}

func (r *Run) nodeEvent(typ domain.EventType, idx int, status Status) *domain.NodeEvent {
	n := r.tree.nodes[idx].node
	kind := n.tagKind
	if kind == "" {
		kind = n.kind.String()
	}
	return &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: r.id},
		Node:      n.name,
		Kind:      kind,
		Index:     idx,
		Status:    status,
	}
}

// Context is the handle passed to node hooks during a tick.
type Context struct {
	ctx context.Context
	run *Run
	idx int
}

// Context returns the context.Context the driver passed to Tick.
func (c Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Name returns the name of the node being ticked.
func (c Context) Name() string { return c.run.tree.nodes[c.idx].node.name }

// Index returns the compiled index of the node being ticked.
func (c Context) Index() int { return c.idx }

// RunID returns the label of the run being ticked.
func (c Context) RunID() string { return c.run.id }
