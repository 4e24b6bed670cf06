package domain

import "math"

// Position is a point in the play area, normalized to [0,1] on both axes.
// It is an immutable value; methods return new values.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to other.
func (p Position) Distance(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Clamp returns the position constrained to the unit square.
func (p Position) Clamp() Position {
	return Position{
		X: math.Min(1, math.Max(0, p.X)),
		Y: math.Min(1, math.Max(0, p.Y)),
	}
}

// Direction is a coarse movement direction issued to the actuator.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions lists all valid directions, in a stable order.
func Directions() []string {
	return []string{string(DirUp), string(DirDown), string(DirLeft), string(DirRight)}
}

// DirectionToward picks the dominant axis direction from p toward target.
func (p Position) DirectionToward(target Position) Direction {
	dx := target.X - p.X
	dy := target.Y - p.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return DirLeft
		}
		return DirRight
	}
	if dy < 0 {
		return DirUp
	}
	return DirDown
}
