// Package layout maintains the incrementally learned graph of traversable
// positions for one routine and answers shortest-path queries over it.
//
// Nodes live in an arena addressed by stable integer ids; a quadtree
// accelerates nearest-neighbor lookups. Record and Route are safe for
// concurrent use; Snapshot returns an immutable copy for the persistence
// task and introspection.
package layout

import (
	"sync"
	"time"

	"github.com/aretw0/rover/pkg/domain"
)

const (
	// defaultMinNodeDistance is the dedup threshold: a recorded position this
	// close to an existing node is absorbed by it instead of growing the graph.
	defaultMinNodeDistance = 0.02

	// defaultConnectRadius links a new node to every prior node within this
	// distance, and bounds how far a route endpoint may be from its nearest node.
	defaultConnectRadius = 0.12
)

type node struct {
	id    int
	pos   domain.Position
	edges []edge
}

type edge struct {
	to   int
	cost float64
}

// Layout is the learned spatial graph for one routine.
type Layout struct {
	mu      sync.RWMutex
	routine string
	nodes   []node
	index   *quadtree

	minNodeDistance float64
	connectRadius   float64
}

// Option configures a Layout.
type Option func(*Layout)

// WithMinNodeDistance sets the insert dedup threshold.
func WithMinNodeDistance(d float64) Option {
	return func(l *Layout) { l.minNodeDistance = d }
}

// WithConnectRadius sets the edge linking radius.
func WithConnectRadius(r float64) Option {
	return func(l *Layout) { l.connectRadius = r }
}

// New creates an empty layout for the named routine.
func New(routine string, opts ...Option) *Layout {
	l := &Layout{
		routine:         routine,
		index:           newQuadtree(),
		minNodeDistance: defaultMinNodeDistance,
		connectRadius:   defaultConnectRadius,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Len returns the number of nodes.
func (l *Layout) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.nodes)
}

// Record inserts a node for pos unless an existing node lies within the
// minimum-distance threshold. A new node is linked bidirectionally to every
// node within the connectivity radius with cost equal to the Euclidean
// distance. Returns the id of the node now covering pos.
func (l *Layout) Record(pos domain.Position) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.record(pos)
}

func (l *Layout) record(pos domain.Position) int {
	if id, dist, ok := l.index.nearest(pos); ok && dist <= l.minNodeDistance {
		return id
	}

	id := len(l.nodes)
	n := node{id: id, pos: pos}
	for _, other := range l.index.within(pos, l.connectRadius) {
		cost := l.nodes[other].pos.Distance(pos)
		n.edges = append(n.edges, edge{to: other, cost: cost})
		l.nodes[other].edges = append(l.nodes[other].edges, edge{to: id, cost: cost})
	}
	l.nodes = append(l.nodes, n)
	l.index.insert(pos, id)
	return id
}

// Route is a computed path between two layout nodes.
type Route struct {
	Positions []domain.Position
	Cost      float64
}

// Route finds the best known path from from to to. Endpoints resolve to
// their nearest nodes (recency wins distance ties); if either endpoint has
// no node within the connectivity radius, or no path connects the two nodes,
// ok is false and the caller must fall back to direct-line movement.
func (l *Layout) Route(from, to domain.Position) (Route, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	startID, startDist, okStart := l.index.nearest(from)
	goalID, goalDist, okGoal := l.index.nearest(to)
	if !okStart || !okGoal || startDist > l.connectRadius || goalDist > l.connectRadius {
		return Route{}, false
	}

	ids, cost, found := astar(l.nodes, startID, goalID)
	if !found {
		return Route{}, false
	}

	positions := make([]domain.Position, len(ids))
	for i, id := range ids {
		positions[i] = l.nodes[id].pos
	}
	return Route{Positions: positions, Cost: cost}, true
}

// Snapshot returns an immutable copy of the graph for persistence or
// introspection.
func (l *Layout) Snapshot() *domain.LayoutSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := &domain.LayoutSnapshot{
		Routine: l.routine,
		Taken:   time.Now().UTC(),
		Nodes:   make([]domain.LayoutNode, len(l.nodes)),
	}
	for i, n := range l.nodes {
		out := domain.LayoutNode{ID: n.id, Pos: n.pos}
		if len(n.edges) > 0 {
			out.Edges = make([]domain.LayoutEdge, len(n.edges))
			for j, e := range n.edges {
				out.Edges[j] = domain.LayoutEdge{To: e.to, Cost: e.cost}
			}
		}
		snap.Nodes[i] = out
	}
	return snap
}

// Merge absorbs a previously persisted snapshot. Stored nodes are recorded
// through the normal dedup path, and stored edges are re-applied between the
// surviving nodes, so reloading never discards learned terrain.
func (l *Layout) Merge(snap *domain.LayoutSnapshot) {
	if snap == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	// First pass: place every stored node, remembering where it landed.
	remap := make(map[int]int, len(snap.Nodes))
	for _, n := range snap.Nodes {
		remap[n.ID] = l.record(n.Pos)
	}

	// Second pass: restore edges that the fresh linking pass did not create
	// (e.g. long-range links learned from observed traversals).
	for _, n := range snap.Nodes {
		fromID, ok := remap[n.ID]
		if !ok {
			continue
		}
		for _, e := range n.Edges {
			toID, ok := remap[e.To]
			if !ok || toID == fromID {
				continue
			}
			l.ensureEdge(fromID, toID, e.Cost)
			l.ensureEdge(toID, fromID, e.Cost)
		}
	}
}

// ensureEdge adds an edge unless one already exists; an existing edge keeps
// the cheaper cost.
func (l *Layout) ensureEdge(from, to int, cost float64) {
	for i, e := range l.nodes[from].edges {
		if e.to == to {
			if cost < e.cost {
				l.nodes[from].edges[i].cost = cost
			}
			return
		}
	}
	l.nodes[from].edges = append(l.nodes[from].edges, edge{to: to, cost: cost})
}
