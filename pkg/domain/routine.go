package domain

// Routine is a compiled, immutable sequence of components plus the label
// index used to resolve jumps. Invariants (enforced by the compiler): every
// Jump target resolves to an existing Label, and label names are unique.
type Routine struct {
	// Name identifies the routine; layouts are persisted under it.
	Name string `json:"name"`

	Components []Component    `json:"-"`
	Labels     map[string]int `json:"labels"`
}

// Len returns the number of components.
func (r *Routine) Len() int { return len(r.Components) }

// Points returns the routine's points in component order.
func (r *Routine) Points() []*Point {
	var pts []*Point
	for _, c := range r.Components {
		if p, ok := c.(*Point); ok {
			pts = append(pts, p)
		}
	}
	return pts
}
