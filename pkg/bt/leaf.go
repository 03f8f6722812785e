package bt

import "context"

// Leaf is the behavior of a leaf node. S is the node's per-run state: a fresh *S is
// allocated in the run's slot when the node starts and handed to every hook of that
// run, so a leaf can never observe another node kind's state.
type Leaf[S any] interface {
	// Start is called once when a run of the node begins.
	Start(c Context, state *S)
	// Update advances the node and reports its status.
	Update(c Context, state *S) Status
	// Terminate is called once with the terminal status that ended the run.
	Terminate(c Context, state *S, status Status)
}

// BaseLeaf provides the default hooks: Start and Terminate do nothing and Update
// succeeds immediately. Embed it and override what the leaf needs.
type BaseLeaf[S any] struct{}

func (BaseLeaf[S]) Start(Context, *S)             {}
func (BaseLeaf[S]) Update(Context, *S) Status     { return Success }
func (BaseLeaf[S]) Terminate(Context, *S, Status) {}

// NewLeaf creates a leaf node from a typed behavior. A nil behavior succeeds immediately.
func NewLeaf[S any](name string, leaf Leaf[S]) *Node {
	if leaf == nil {
		leaf = BaseLeaf[S]{}
	}
	return &Node{kind: KindLeaf, name: name, leaf: leafAdapter[S]{leaf: leaf}}
}

// ActionFunc is a stateless leaf body.
type ActionFunc func(ctx context.Context) Status

// Action creates a stateless leaf that calls fn on every update.
func Action(name string, fn ActionFunc) *Node {
	return NewLeaf[struct{}](name, actionLeaf{fn: fn})
}

// Condition creates a leaf that succeeds when fn returns true and fails otherwise.
func Condition(name string, fn func(ctx context.Context) bool) *Node {
	return Action(name, func(ctx context.Context) Status {
		if fn(ctx) {
			return Success
		}
		return Failed
	})
}

type actionLeaf struct {
	BaseLeaf[struct{}]
	fn ActionFunc
}

func (a actionLeaf) Update(c Context, _ *struct{}) Status {
	return a.fn(c.Context())
}

// leafHooks erases the state type so compiled nodes can be stored in one table.
type leafHooks interface {
	newState() any
	start(c Context, state any)
	update(c Context, state any) Status
	terminate(c Context, state any, status Status)
}

// leafAdapter is the only code that creates or reads a leaf's slot payload, and it
// always does so with the same S, so the assertions below cannot fail.
type leafAdapter[S any] struct {
	leaf Leaf[S]
}

func (a leafAdapter[S]) newState() any { return new(S) }

func (a leafAdapter[S]) start(c Context, state any) { a.leaf.Start(c, state.(*S)) }

func (a leafAdapter[S]) update(c Context, state any) Status { return a.leaf.Update(c, state.(*S)) }

func (a leafAdapter[S]) terminate(c Context, state any, status Status) {
	a.leaf.Terminate(c, state.(*S), status)
}
