package ports

import (
	"context"

	"github.com/aretw0/rover/pkg/domain"
)

// Actuator turns movement requests into real input events. It is the only
// collaborator with physical side effects; the engine is its only caller.
type Actuator interface {
	// Step issues one bounded movement impulse in the given direction.
	// It blocks until the impulse completes or ctx is cancelled.
	Step(ctx context.Context, dir domain.Direction) error

	// ReleaseAll releases any held key or button. It must be safe to call
	// unconditionally and repeatedly; the engine invokes it on every stop.
	ReleaseAll() error
}
