package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPointArrive   EventType = "point_arrive"
	EventPointSkip     EventType = "point_skip"
	EventCommandCall   EventType = "command_call"
	EventCommandReturn EventType = "command_return"
	EventStateChange   EventType = "state_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// PointEvent marks arrival at (or a skipped pass of) a routine point.
type PointEvent struct {
	EventBase
	Index int      `json:"index"`
	Pos   Position `json:"pos"`
	Pass  int      `json:"pass"`
}

// CommandEvent represents a command invocation at a point.
type CommandEvent struct {
	EventBase
	Index   int    `json:"index"`
	Command string `json:"command"`
	IsError bool   `json:"is_error,omitempty"`
}

// StateEvent marks a run-state transition of the engine.
type StateEvent struct {
	EventBase
	From string `json:"from"`
	To   string `json:"to"`
}

// LifecycleHooks defines callbacks for engine observability. Nil hooks are
// skipped. Hooks run on the engine goroutine and must not block.
type LifecycleHooks struct {
	OnPointArrive   func(context.Context, *PointEvent)
	OnPointSkip     func(context.Context, *PointEvent)
	OnCommandCall   func(context.Context, *CommandEvent)
	OnCommandReturn func(context.Context, *CommandEvent)
	OnStateChange   func(context.Context, *StateEvent)
}
