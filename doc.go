/*
Package rover is a waypoint routine engine for screen-space agents: it
compiles a small line-oriented routine language, learns a spatial graph of
the terrain as the agent moves, and executes the routine on a cooperative
tick loop.

# Concept

A routine is a flat list of components: labels, points, jumps and settings.
Points carry normalized coordinates and an iteration policy (frequency,
skip, adjust) plus attached commands dispatched through the action catalog.
The engine walks the list one component per tick; navigation between points
runs A* over a layout graph that is recorded incrementally from the
positions the agent actually reaches, so routes improve as the routine runs.

The host supplies two integration points: a perception feed (where is the
agent right now) and an actuator (emit one movement impulse). Everything
else, from routine compilation to layout persistence, lives behind this
facade.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/rover"
	)

	func main() {
		rv, err := rover.New("routines/main.rv", feed, actuator,
			rover.WithStore(store),
		)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if err := rv.Hydrate(ctx); err != nil {
			log.Fatal(err)
		}
		if err := rv.Run(ctx); err != nil {
			log.Fatal(err)
		}
	}

Commands beyond the built-ins are registered on a catalog before New:

	cat := catalog.New()
	catalog.RegisterBuiltins(cat, actuator)
	cat.Register("potion", schema.Schema{"slot": schema.Int()}, usePotion)
	rv, err := rover.New(path, feed, actuator, rover.WithCatalog(cat))

# Architecture

The public surface is small on purpose. pkg/domain holds the shared model,
pkg/schema the parameter validation types, pkg/ports the host-facing
interfaces, and pkg/catalog the command registry. The compiler, layout
graph, engine and adapters are internal.
*/
package rover
