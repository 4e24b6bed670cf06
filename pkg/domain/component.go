package domain

// ComponentKind discriminates the routine component variants.
type ComponentKind string

const (
	KindLabel   ComponentKind = "label"
	KindPoint   ComponentKind = "point"
	KindJump    ComponentKind = "jump"
	KindSetting ComponentKind = "setting"
)

// Component is one element of a compiled routine. Components are created by
// the compiler and never mutated afterwards; per-pass state (iteration
// counters) lives in the execution context, not here.
type Component interface {
	Kind() ComponentKind
	// SourceLine is the 1-based line in the routine source this component
	// was parsed from, for diagnostics and introspection.
	SourceLine() int
}

// CommandInvocation is a named action with typed parameters, attached to a
// Point. Parameters are validated against the action catalog's schema at
// compile time.
type CommandInvocation struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
	Line   int            `json:"line"`
}

// Label is a named anchor with no side effect.
type Label struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

func (l *Label) Kind() ComponentKind { return KindLabel }
func (l *Label) SourceLine() int     { return l.Line }

// Point is a waypoint with attached commands and its own iteration policy.
//
// Frequency and Skip control how often the point executes: the point's pass
// counter c increments on every pass, and the point executes iff
// c % Frequency == 0, except that Skip suppresses the very first pass (c==0),
// making the first execution happen at c == Frequency.
type Point struct {
	Pos       Position            `json:"pos"`
	Frequency int                 `json:"frequency"`
	Skip      bool                `json:"skip,omitempty"`
	Adjust    bool                `json:"adjust,omitempty"`
	Commands  []CommandInvocation `json:"commands,omitempty"`
	Line      int                 `json:"line"`
}

func (p *Point) Kind() ComponentKind { return KindPoint }
func (p *Point) SourceLine() int     { return p.Line }

// Jump is an unconditional control transfer to a label.
type Jump struct {
	Target string `json:"target"`
	Line   int    `json:"line"`
}

func (j *Jump) Kind() ComponentKind { return KindJump }
func (j *Jump) SourceLine() int     { return j.Line }

// Setting mutates one key of the execution context's settings mapping. The
// new value is visible to every component executed after it.
type Setting struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Line  int    `json:"line"`
}

func (s *Setting) Kind() ComponentKind { return KindSetting }
func (s *Setting) SourceLine() int     { return s.Line }
