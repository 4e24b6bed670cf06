package layout

import (
	"sync"
	"testing"

	"github.com/aretw0/rover/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(x, y float64) domain.Position { return domain.Position{X: x, Y: y} }

func TestRecord_DedupsNearbyPositions(t *testing.T) {
	l := New("test", WithMinNodeDistance(0.05))

	a := l.Record(pos(0.5, 0.5))
	b := l.Record(pos(0.51, 0.5)) // within threshold, absorbed
	c := l.Record(pos(0.7, 0.5))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, l.Len())
}

func TestRecord_LinksWithinConnectRadius(t *testing.T) {
	l := New("test", WithMinNodeDistance(0.01), WithConnectRadius(0.3))

	l.Record(pos(0.1, 0.5))
	l.Record(pos(0.3, 0.5)) // links to first
	l.Record(pos(0.9, 0.5)) // too far from both

	route, ok := l.Route(pos(0.1, 0.5), pos(0.3, 0.5))
	require.True(t, ok)
	assert.InDelta(t, 0.2, route.Cost, 1e-9)

	_, ok = l.Route(pos(0.1, 0.5), pos(0.9, 0.5))
	assert.False(t, ok, "unlinked node should be unreachable")
}

// Builds the three-node line from the persisted form so edge topology is
// exactly controlled: A -(0.5)- B -(0.5)- C.
func lineSnapshot(withSecondEdge bool) *domain.LayoutSnapshot {
	nodes := []domain.LayoutNode{
		{ID: 0, Pos: pos(0, 0), Edges: []domain.LayoutEdge{{To: 1, Cost: 0.5}}},
		{ID: 1, Pos: pos(0.5, 0), Edges: []domain.LayoutEdge{{To: 0, Cost: 0.5}}},
		{ID: 2, Pos: pos(1, 0)},
	}
	if withSecondEdge {
		nodes[1].Edges = append(nodes[1].Edges, domain.LayoutEdge{To: 2, Cost: 0.5})
		nodes[2].Edges = []domain.LayoutEdge{{To: 1, Cost: 0.5}}
	}
	return &domain.LayoutSnapshot{Routine: "line", Nodes: nodes}
}

func TestRoute_LinearPath(t *testing.T) {
	l := New("line", WithMinNodeDistance(0.01), WithConnectRadius(0.2))
	l.Merge(lineSnapshot(true))

	route, ok := l.Route(pos(0, 0), pos(1, 0))
	require.True(t, ok)
	require.Len(t, route.Positions, 3)
	assert.Equal(t, pos(0, 0), route.Positions[0])
	assert.Equal(t, pos(0.5, 0), route.Positions[1])
	assert.Equal(t, pos(1, 0), route.Positions[2])
	assert.InDelta(t, 1.0, route.Cost, 1e-9)
}

func TestRoute_NoPathWithoutSecondEdge(t *testing.T) {
	l := New("line", WithMinNodeDistance(0.01), WithConnectRadius(0.2))
	l.Merge(lineSnapshot(false))

	_, ok := l.Route(pos(0, 0), pos(1, 0))
	assert.False(t, ok)
}

func TestRoute_EndpointTooFarFromGraph(t *testing.T) {
	l := New("test", WithConnectRadius(0.1))
	l.Record(pos(0.5, 0.5))

	_, ok := l.Route(pos(0.5, 0.5), pos(0.9, 0.9))
	assert.False(t, ok)
}

func TestRoute_EmptyLayout(t *testing.T) {
	l := New("empty")
	_, ok := l.Route(pos(0, 0), pos(1, 1))
	assert.False(t, ok)
}

func TestRoute_PrefersCheaperPath(t *testing.T) {
	// Diamond: start -> (top | bottom) -> goal, bottom is cheaper.
	snap := &domain.LayoutSnapshot{Routine: "diamond", Nodes: []domain.LayoutNode{
		{ID: 0, Pos: pos(0.1, 0.5), Edges: []domain.LayoutEdge{{To: 1, Cost: 0.9}, {To: 2, Cost: 0.3}}},
		{ID: 1, Pos: pos(0.5, 0.2), Edges: []domain.LayoutEdge{{To: 0, Cost: 0.9}, {To: 3, Cost: 0.9}}},
		{ID: 2, Pos: pos(0.5, 0.8), Edges: []domain.LayoutEdge{{To: 0, Cost: 0.3}, {To: 3, Cost: 0.3}}},
		{ID: 3, Pos: pos(0.9, 0.5), Edges: []domain.LayoutEdge{{To: 1, Cost: 0.9}, {To: 2, Cost: 0.3}}},
	}}
	l := New("diamond", WithMinNodeDistance(0.01), WithConnectRadius(0.05))
	l.Merge(snap)

	route, ok := l.Route(pos(0.1, 0.5), pos(0.9, 0.5))
	require.True(t, ok)
	require.Len(t, route.Positions, 3)
	assert.Equal(t, pos(0.5, 0.8), route.Positions[1], "should go through the cheap bottom node")
	assert.InDelta(t, 0.6, route.Cost, 1e-9)
}

func TestNearest_TieBreaksTowardMostRecent(t *testing.T) {
	l := New("tie", WithMinNodeDistance(0.01))
	l.Record(pos(0.4, 0.5))
	l.Record(pos(0.6, 0.5))

	// The midpoint is equidistant; the more recent node must win.
	id, _, ok := l.index.nearest(pos(0.5, 0.5))
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestMerge_IsAdditive(t *testing.T) {
	l := New("merge", WithMinNodeDistance(0.01), WithConnectRadius(0.2))
	l.Record(pos(0.5, 0.5))

	l.Merge(&domain.LayoutSnapshot{Routine: "merge", Nodes: []domain.LayoutNode{
		{ID: 0, Pos: pos(0.5, 0.5)}, // dedups onto the live node
		{ID: 1, Pos: pos(0.9, 0.9)},
	}})

	assert.Equal(t, 2, l.Len())
}

func TestMerge_KeepsCheaperEdgeCost(t *testing.T) {
	l := New("merge", WithMinNodeDistance(0.01), WithConnectRadius(0.5))
	l.Record(pos(0.2, 0.5))
	l.Record(pos(0.6, 0.5)) // auto-linked at cost 0.4

	// Stored edge between the same pair carries an observed cheaper cost.
	l.Merge(&domain.LayoutSnapshot{Routine: "merge", Nodes: []domain.LayoutNode{
		{ID: 0, Pos: pos(0.2, 0.5), Edges: []domain.LayoutEdge{{To: 1, Cost: 0.25}}},
		{ID: 1, Pos: pos(0.6, 0.5), Edges: []domain.LayoutEdge{{To: 0, Cost: 0.25}}},
	}})

	route, ok := l.Route(pos(0.2, 0.5), pos(0.6, 0.5))
	require.True(t, ok)
	assert.InDelta(t, 0.25, route.Cost, 1e-9)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	l := New("snap", WithMinNodeDistance(0.01), WithConnectRadius(0.3))
	l.Record(pos(0.1, 0.1))
	l.Record(pos(0.3, 0.1))

	snap := l.Snapshot()
	require.Len(t, snap.Nodes, 2)
	assert.Equal(t, "snap", snap.Routine)

	restored := New("snap", WithMinNodeDistance(0.01), WithConnectRadius(0.3))
	restored.Merge(snap)
	route, ok := restored.Route(pos(0.1, 0.1), pos(0.3, 0.1))
	require.True(t, ok)
	assert.InDelta(t, 0.2, route.Cost, 1e-9)
}

func TestConcurrent_RecordAndRoute(t *testing.T) {
	l := New("concurrent", WithMinNodeDistance(0.001), WithConnectRadius(0.2))

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				p := pos(float64(i)/100, float64(g)/4)
				l.Record(p)
				l.Route(pos(0, 0), p)
				l.Snapshot()
			}
		}(g)
	}
	wg.Wait()

	assert.Greater(t, l.Len(), 0)
}

func TestQuadtree_WithinRadius(t *testing.T) {
	q := newQuadtree()
	q.insert(pos(0.1, 0.1), 0)
	q.insert(pos(0.15, 0.1), 1)
	q.insert(pos(0.9, 0.9), 2)

	ids := q.within(pos(0.1, 0.1), 0.1)
	assert.ElementsMatch(t, []int{0, 1}, ids)
}

func TestQuadtree_ManyPointsNearest(t *testing.T) {
	q := newQuadtree()
	var all []domain.Position
	for i := 0; i < 200; i++ {
		p := pos(float64(i%20)/20, float64(i/20)/10)
		q.insert(p, i)
		all = append(all, p)
	}

	query := pos(0.33, 0.47)
	id, dist, ok := q.nearest(query)
	require.True(t, ok)

	// Brute-force reference (matching the recency tie-break).
	bestID, bestDist := -1, -1.0
	for i, p := range all {
		d := p.Distance(query)
		if bestDist < 0 || d < bestDist || (d == bestDist && i > bestID) {
			bestID, bestDist = i, d
		}
	}
	assert.Equal(t, bestID, id)
	assert.InDelta(t, bestDist, dist, 1e-12)
}
