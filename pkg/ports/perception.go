package ports

import "github.com/aretw0/rover/pkg/domain"

// PerceptionFeed is the external source of the agent's current normalized
// position. The engine reads it at the start of every tick and between
// movement steps.
type PerceptionFeed interface {
	// CurrentPosition returns the latest observed position. ok is false when
	// the feed cannot currently locate the agent; the engine treats that as
	// "cannot move this tick", not as an error.
	CurrentPosition() (pos domain.Position, ok bool)
}

// PerceptionFunc adapts a function to the PerceptionFeed interface.
type PerceptionFunc func() (domain.Position, bool)

func (f PerceptionFunc) CurrentPosition() (domain.Position, bool) { return f() }
