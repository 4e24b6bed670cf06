// Package catalog implements the action catalog: a registry mapping command
// names to parameter schemas and handler functions. The compiler uses it to
// validate routine command lines; the engine uses it to dispatch commands at
// each point.
//
// Handlers receive an explicit read-only call context (settings snapshot and
// current position) rather than ambient shared state.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/rover/pkg/domain"
	"github.com/aretw0/rover/pkg/schema"
)

// Call is the read-only context a handler receives for one invocation.
type Call struct {
	// Params are the invocation's parameters, already validated against the
	// command's schema at compile time.
	Params map[string]any

	// Settings is the execution context's settings snapshot at dispatch time.
	Settings domain.SettingsSnapshot

	// Position is the agent's last observed position, if known.
	Position domain.Position
}

// Handler executes one command. It must honor ctx cancellation promptly.
type Handler func(ctx context.Context, call Call) error

type entry struct {
	schema  schema.Schema
	handler Handler
}

// Catalog manages the available commands.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]entry)}
}

// Register adds a command. If a command with the same name exists, it is
// overwritten.
func (c *Catalog) Register(name string, s schema.Schema, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = entry{schema: s, handler: fn}
}

// SchemaFor returns the parameter schema for a command name.
func (c *Catalog) SchemaFor(name string) (schema.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e.schema, ok
}

// Names returns the registered command names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks params against the named command's schema without invoking
// it. Returns an error when the command is unknown or the params do not
// satisfy the schema.
func (c *Catalog) Validate(name string, params map[string]any) error {
	s, ok := c.SchemaFor(name)
	if !ok {
		return fmt.Errorf("command not found: %s", name)
	}
	return schema.Validate(s, params)
}

// Invoke looks up a command by name and executes it.
// Returns an error if the command is not found.
func (c *Catalog) Invoke(ctx context.Context, name string, call Call) error {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		return fmt.Errorf("command not found: %s", name)
	}

	return e.handler(ctx, call)
}
