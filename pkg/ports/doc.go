// Package ports defines the interfaces at the boundary of the rover core:
// the perception feed it reads positions from, the actuator it drives, and
// the stores layouts are persisted to. Adapters live under internal/adapters
// and in host applications embedding the engine.
package ports
