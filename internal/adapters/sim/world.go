// Package sim provides an in-process world: a perception feed and actuator
// pair backed by a shared simulated position. It exists so routines can be
// dry-run end to end without a real host, which is how the CLI's run command
// exercises a routine and grows its layout.
package sim

import (
	"context"
	"sync"

	"github.com/aretw0/rover/pkg/domain"
)

// World is a loopback host. Step moves the simulated position by StepSize in
// the requested direction; CurrentPosition reports it. Safe for concurrent
// use.
type World struct {
	mu       sync.Mutex
	pos      domain.Position
	known    bool
	stepSize float64
	released int
}

// Option configures a World.
type Option func(*World)

// WithStart sets the initial position (default 0.5, 0.5).
func WithStart(pos domain.Position) Option {
	return func(w *World) { w.pos = pos.Clamp() }
}

// WithStepSize sets how far one impulse moves the position (default 0.02).
func WithStepSize(d float64) Option {
	return func(w *World) { w.stepSize = d }
}

// New creates a simulated world.
func New(opts ...Option) *World {
	w := &World{
		pos:      domain.Position{X: 0.5, Y: 0.5},
		known:    true,
		stepSize: 0.02,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CurrentPosition implements ports.PerceptionFeed.
func (w *World) CurrentPosition() (domain.Position, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pos, w.known
}

// Step implements ports.Actuator.
func (w *World) Step(ctx context.Context, dir domain.Direction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch dir {
	case domain.DirLeft:
		w.pos.X -= w.stepSize
	case domain.DirRight:
		w.pos.X += w.stepSize
	case domain.DirUp:
		w.pos.Y -= w.stepSize
	case domain.DirDown:
		w.pos.Y += w.stepSize
	}
	w.pos = w.pos.Clamp()
	return nil
}

// ReleaseAll implements ports.Actuator.
func (w *World) ReleaseAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.released++
	return nil
}

// Releases reports how many times ReleaseAll has been called.
func (w *World) Releases() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.released
}

// SetKnown toggles whether the feed reports a position, simulating perception
// dropouts.
func (w *World) SetKnown(known bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.known = known
}
