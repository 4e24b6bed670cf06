package layout

import "github.com/aretw0/rover/pkg/domain"

// quadtree indexes node positions over the unit square so nearest-neighbor
// and radius queries avoid a linear scan of the arena.
type quadtree struct {
	root *quadCell
}

type quadCell struct {
	x, y, size float64
	points     []quadPoint
	children   *[4]*quadCell
}

type quadPoint struct {
	pos domain.Position
	id  int
}

const quadCapacity = 8

// Positions slightly outside [0,1] (perception jitter) still need a home, so
// the root covers a margin around the unit square.
func newQuadtree() *quadtree {
	return &quadtree{root: &quadCell{x: -0.5, y: -0.5, size: 2}}
}

func (q *quadtree) insert(pos domain.Position, id int) {
	q.root.insert(quadPoint{pos: pos, id: id})
}

func (c *quadCell) contains(p domain.Position) bool {
	return p.X >= c.x && p.X < c.x+c.size && p.Y >= c.y && p.Y < c.y+c.size
}

func (c *quadCell) insert(p quadPoint) {
	if c.children == nil {
		if len(c.points) < quadCapacity {
			c.points = append(c.points, p)
			return
		}
		c.subdivide()
	}
	for _, child := range c.children {
		if child.contains(p.pos) {
			child.insert(p)
			return
		}
	}
	// Off-grid point; keep it at this level rather than losing it.
	c.points = append(c.points, p)
}

func (c *quadCell) subdivide() {
	half := c.size / 2
	c.children = &[4]*quadCell{
		{x: c.x, y: c.y, size: half},
		{x: c.x + half, y: c.y, size: half},
		{x: c.x, y: c.y + half, size: half},
		{x: c.x + half, y: c.y + half, size: half},
	}
	points := c.points
	c.points = nil
	for _, p := range points {
		placed := false
		for _, child := range c.children {
			if child.contains(p.pos) {
				child.insert(p)
				placed = true
				break
			}
		}
		if !placed {
			c.points = append(c.points, p)
		}
	}
}

// nearest returns the id of the closest indexed point. Ties on distance are
// broken toward the highest id, i.e. the most recently inserted node.
func (q *quadtree) nearest(pos domain.Position) (int, float64, bool) {
	best := quadPoint{id: -1}
	bestDist := -1.0
	q.root.nearest(pos, &best, &bestDist)
	if best.id < 0 {
		return 0, 0, false
	}
	return best.id, bestDist, true
}

func (c *quadCell) nearest(pos domain.Position, best *quadPoint, bestDist *float64) {
	if *bestDist >= 0 && c.distanceTo(pos) > *bestDist {
		return
	}
	for _, p := range c.points {
		d := p.pos.Distance(pos)
		if *bestDist < 0 || d < *bestDist || (d == *bestDist && p.id > best.id) {
			*best = p
			*bestDist = d
		}
	}
	if c.children == nil {
		return
	}
	for _, child := range c.children {
		child.nearest(pos, best, bestDist)
	}
}

// distanceTo returns the minimum distance from pos to this cell's bounds.
func (c *quadCell) distanceTo(pos domain.Position) float64 {
	dx := axisDistance(pos.X, c.x, c.x+c.size)
	dy := axisDistance(pos.Y, c.y, c.y+c.size)
	return domain.Position{X: dx, Y: dy}.Distance(domain.Position{})
}

func axisDistance(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// within returns the ids of all points within radius of pos.
func (q *quadtree) within(pos domain.Position, radius float64) []int {
	var ids []int
	q.root.within(pos, radius, &ids)
	return ids
}

func (c *quadCell) within(pos domain.Position, radius float64, ids *[]int) {
	if c.distanceTo(pos) > radius {
		return
	}
	for _, p := range c.points {
		if p.pos.Distance(pos) <= radius {
			*ids = append(*ids, p.id)
		}
	}
	if c.children == nil {
		return
	}
	for _, child := range c.children {
		child.within(pos, radius, ids)
	}
}
