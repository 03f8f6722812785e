package bt

// DecoratorBehavior is the behavior of a single-child node. Update receives a handle
// to the child and decides when, and how often, to tick it.
type DecoratorBehavior[S any] interface {
	Start(c Context, state *S)
	Update(c Context, state *S, child Child) Status
	Terminate(c Context, state *S, status Status)
}

// BaseDecorator passes the child's status through unchanged.
type BaseDecorator[S any] struct{}

func (BaseDecorator[S]) Start(Context, *S)                          {}
func (BaseDecorator[S]) Update(_ Context, _ *S, child Child) Status { return child.Tick() }
func (BaseDecorator[S]) Terminate(Context, *S, Status)              {}

// NewDecorator creates a decorator node. child may be nil and set later with SetChild.
func NewDecorator[S any](name string, behavior DecoratorBehavior[S], child *Node) *Node {
	if behavior == nil {
		behavior = BaseDecorator[S]{}
	}
	return &Node{kind: KindDecorator, name: name, child: child, deco: decoratorAdapter[S]{behavior: behavior}}
}

// Child is a decorator's handle to its single child within the current run.
type Child struct {
	run *Run
	idx int
}

// Present reports whether the decorator has a child.
func (c Child) Present() bool { return c.idx >= 0 }

// Tick ticks the child. Without a child it returns Failed.
func (c Child) Tick() Status {
	if c.idx < 0 {
		return Failed
	}
	return c.run.tick(c.idx)
}

// Status returns the child's current slot status: Running while a run is live, Invalid otherwise.
func (c Child) Status() Status {
	if c.idx < 0 {
		return Invalid
	}
	return c.run.slots[c.idx].status
}

// Reset abandons the child's current run without calling its Terminate hook.
func (c Child) Reset() {
	if c.idx >= 0 {
		c.run.destroy(c.idx)
	}
}

type decoratorHooks interface {
	newState() any
	start(c Context, state any)
	update(c Context, state any, child Child) Status
	terminate(c Context, state any, status Status)
}

type decoratorAdapter[S any] struct {
	behavior DecoratorBehavior[S]
}

func (a decoratorAdapter[S]) newState() any { return new(S) }

func (a decoratorAdapter[S]) start(c Context, state any) { a.behavior.Start(c, state.(*S)) }

func (a decoratorAdapter[S]) update(c Context, state any, child Child) Status {
	return a.behavior.Update(c, state.(*S), child)
}

func (a decoratorAdapter[S]) terminate(c Context, state any, status Status) {
	a.behavior.Terminate(c, state.(*S), status)
}
