package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeStart EventType = "node_start"
	EventNodeEnd   EventType = "node_end"
	EventCacheHit  EventType = "cache_hit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent describes one node execution.
type NodeEvent struct {
	EventBase
	Class    string        `json:"class"`
	UniqueID string        `json:"unique_id,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Cached   bool          `json:"cached,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for host observability.
type LifecycleHooks struct {
	OnNodeStart func(context.Context, *NodeEvent)
	OnNodeEnd   func(context.Context, *NodeEvent)
	OnCacheHit  func(context.Context, *NodeEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	chain := func(a, b func(context.Context, *NodeEvent)) func(context.Context, *NodeEvent) {
		switch {
		case a == nil:
			return b
		case b == nil:
			return a
		}
		return func(ctx context.Context, e *NodeEvent) {
			a(ctx, e)
			b(ctx, e)
		}
	}
	return LifecycleHooks{
		OnNodeStart: chain(h.OnNodeStart, other.OnNodeStart),
		OnNodeEnd:   chain(h.OnNodeEnd, other.OnNodeEnd),
		OnCacheHit:  chain(h.OnCacheHit, other.OnCacheHit),
	}
}
