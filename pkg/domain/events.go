package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeStart     EventType = "node_start"
	EventNodeTerminate EventType = "node_terminate"
	EventTick          EventType = "tick"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// NodeEvent represents a node entering or leaving a run.
type NodeEvent struct {
	EventBase
	Node   string `json:"node"`
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Status Status `json:"status"`
}

// TickEvent represents one driver-issued tick of a root node.
type TickEvent struct {
	EventBase
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously inside the tick and must not block.
type LifecycleHooks struct {
	OnNodeStart     func(context.Context, *NodeEvent)
	OnNodeTerminate func(context.Context, *NodeEvent)
	OnTick          func(context.Context, *TickEvent)
}

// Empty reports whether no hook is set.
func (h LifecycleHooks) Empty() bool {
	return h.OnNodeStart == nil && h.OnNodeTerminate == nil && h.OnTick == nil
}

// ChainHooks combines several hook sets; callbacks run in argument order.
func ChainHooks(sets ...LifecycleHooks) LifecycleHooks {
	var starts, terms []func(context.Context, *NodeEvent)
	var ticks []func(context.Context, *TickEvent)
	for _, h := range sets {
		if h.OnNodeStart != nil {
			starts = append(starts, h.OnNodeStart)
		}
		if h.OnNodeTerminate != nil {
			terms = append(terms, h.OnNodeTerminate)
		}
		if h.OnTick != nil {
			ticks = append(ticks, h.OnTick)
		}
	}

	var out LifecycleHooks
	if len(starts) > 0 {
		out.OnNodeStart = func(ctx context.Context, e *NodeEvent) {
			for _, fn := range starts {
				fn(ctx, e)
			}
		}
	}
	if len(terms) > 0 {
		out.OnNodeTerminate = func(ctx context.Context, e *NodeEvent) {
			for _, fn := range terms {
				fn(ctx, e)
			}
		}
	}
	if len(ticks) > 0 {
		out.OnTick = func(ctx context.Context, e *TickEvent) {
			for _, fn := range ticks {
				fn(ctx, e)
			}
		}
	}
	return out
}
