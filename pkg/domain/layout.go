package domain

import "time"

// LayoutEdge is a traversal link to another layout node. Cost approximates
// travel effort and is at least the Euclidean distance between the nodes.
type LayoutEdge struct {
	To   int     `json:"to"`
	Cost float64 `json:"cost"`
}

// LayoutNode is one learned position in a routine's layout graph.
type LayoutNode struct {
	ID    int          `json:"id"`
	Pos   Position     `json:"pos"`
	Edges []LayoutEdge `json:"edges,omitempty"`
}

// LayoutSnapshot is an immutable point-in-time copy of a layout graph, used
// for persistence and introspection. It is safe to read while the live
// layout keeps absorbing new nodes.
type LayoutSnapshot struct {
	Routine string       `json:"routine"`
	Taken   time.Time    `json:"taken"`
	Nodes   []LayoutNode `json:"nodes"`
}
