package runtime

import "github.com/aretw0/rover/pkg/domain"

// Context is the mutable execution state of one run: the component pointer,
// the per-point pass counters, and the live settings mapping. It is created
// when a run starts and discarded when it stops; restarting a routine gets a
// fresh Context but reuses the same layout.
//
// Counters are keyed by component index, so two points at the same position
// still count independently, and jumps over a point never advance it.
type Context struct {
	Index    int
	Settings domain.Settings

	counters map[int]int
	recorded map[int]bool
}

// NewContext creates a fresh execution context with default settings.
func NewContext() *Context {
	return &Context{
		Settings: domain.DefaultSettings(),
		counters: make(map[int]int),
		recorded: make(map[int]bool),
	}
}

// Pass returns the current pass counter for the component at idx and
// increments it.
func (c *Context) Pass(idx int) int {
	n := c.counters[idx]
	c.counters[idx] = n + 1
	return n
}

// PassCount returns the counter without incrementing (introspection only).
func (c *Context) PassCount(idx int) int { return c.counters[idx] }

// MarkRecorded notes that the point at idx had its position recorded into
// the layout; returns true the first time.
func (c *Context) MarkRecorded(idx int) bool {
	if c.recorded[idx] {
		return false
	}
	c.recorded[idx] = true
	return true
}

// Advance moves the pointer to the next component, wrapping past the end:
// continuous looping is the routine's default terminal behavior.
func (c *Context) Advance(routineLen int) {
	c.Index++
	if c.Index >= routineLen {
		c.Index = 0
	}
}
