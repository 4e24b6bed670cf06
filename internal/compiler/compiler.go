// Package compiler turns routine source text into a compiled domain.Routine.
//
// The grammar is line-oriented. A component line starts with a marker token:
//
//	@ name=Start                    label
//	* x=0.35, y=0.20, frequency=3   point
//	> label=Start                   jump
//	$ move_tolerance=0.05           setting
//	# anything                      comment
//
// Lines indented relative to a point line attach commands to that point, in
// the form "name, key=value, ...". Malformed lines are dropped with a local
// diagnostic; unresolved jump targets and duplicate labels reject the whole
// routine.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/rover/pkg/domain"
	"github.com/aretw0/rover/pkg/schema"
)

// Markers for the four component line kinds plus comments.
const (
	markerLabel   = "@"
	markerPoint   = "*"
	markerJump    = ">"
	markerSetting = "$"
	markerComment = "#"
)

// SchemaSource resolves command names to parameter schemas. The action
// catalog satisfies it; the compiler never invokes handlers.
type SchemaSource interface {
	SchemaFor(name string) (schema.Schema, bool)
}

// Compiler compiles routine source against a command schema source.
type Compiler struct {
	schemas SchemaSource
}

// New creates a compiler validating commands against the given source.
func New(schemas SchemaSource) *Compiler {
	return &Compiler{schemas: schemas}
}

// Compile parses source into a routine named name.
//
// Local failures (a line that cannot be parsed or validated) produce one
// diagnostic each and the line is dropped. Global failures (duplicate label,
// jump to a label defined nowhere) return a nil routine and a
// *domain.CompileError; the local diagnostics gathered so far are still
// returned for reporting.
func (c *Compiler) Compile(name, source string) (*domain.Routine, []domain.Diagnostic, error) {
	var (
		components []domain.Component
		diags      []domain.Diagnostic
		fatal      []domain.Diagnostic
		lastPoint  *domain.Point
		labelLines = map[string]int{}
	)

	lines := strings.Split(source, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, markerComment) {
			continue
		}

		indented := raw != trimmed && (raw[0] == ' ' || raw[0] == '\t')
		if indented {
			if lastPoint == nil {
				diags = append(diags, diag(lineNo, "command line with no preceding point"))
				continue
			}
			inv, err := c.parseCommand(trimmed, lineNo)
			if err != nil {
				diags = append(diags, diag(lineNo, err.Error()))
				continue
			}
			lastPoint.Commands = append(lastPoint.Commands, inv)
			continue
		}

		marker := string(trimmed[0])
		rest := strings.TrimSpace(trimmed[1:])

		switch marker {
		case markerLabel:
			label, err := parseLabel(rest, lineNo)
			if err != nil {
				diags = append(diags, diag(lineNo, err.Error()))
				continue
			}
			if prev, dup := labelLines[label.Name]; dup {
				fatal = append(fatal,
					diag(prev, fmt.Sprintf("duplicate label %q", label.Name)),
					diag(lineNo, fmt.Sprintf("duplicate label %q", label.Name)))
				continue
			}
			labelLines[label.Name] = lineNo
			components = append(components, label)
			lastPoint = nil

		case markerPoint:
			point, err := parsePoint(rest, lineNo)
			if err != nil {
				diags = append(diags, diag(lineNo, err.Error()))
				lastPoint = nil
				continue
			}
			components = append(components, point)
			lastPoint = point

		case markerJump:
			jump, err := parseJump(rest, lineNo)
			if err != nil {
				diags = append(diags, diag(lineNo, err.Error()))
				continue
			}
			components = append(components, jump)
			lastPoint = nil

		case markerSetting:
			setting, err := parseSetting(rest, lineNo)
			if err != nil {
				diags = append(diags, diag(lineNo, err.Error()))
				continue
			}
			components = append(components, setting)
			lastPoint = nil

		default:
			diags = append(diags, diag(lineNo, fmt.Sprintf("unknown marker %q", marker)))
			lastPoint = nil
		}
	}

	// Label index and jump resolution happen after the full pass so forward
	// jumps work.
	labels := make(map[string]int)
	for idx, comp := range components {
		if l, ok := comp.(*domain.Label); ok {
			labels[l.Name] = idx
		}
	}
	for _, comp := range components {
		j, ok := comp.(*domain.Jump)
		if !ok {
			continue
		}
		if _, found := labels[j.Target]; !found {
			fatal = append(fatal, diag(j.Line, fmt.Sprintf("jump to undefined label %q", j.Target)))
		}
	}

	if len(fatal) > 0 {
		return nil, diags, &domain.CompileError{Diagnostics: fatal}
	}

	return &domain.Routine{
		Name:       name,
		Components: components,
		Labels:     labels,
	}, diags, nil
}

func diag(line int, msg string) domain.Diagnostic {
	return domain.Diagnostic{Line: line, Message: msg}
}

// parseParams splits "key=value, key=value" into a map with typed values.
func parseParams(s string) (map[string]any, error) {
	params := make(map[string]any)
	if strings.TrimSpace(s) == "" {
		return params, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("malformed parameter %q (expected key=value)", part)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("malformed parameter %q (empty key)", part)
		}
		params[key] = convertValue(strings.TrimSpace(val))
	}
	return params, nil
}

// convertValue infers the natural type of a textual value: bool, int, float,
// then string.
func convertValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func parseLabel(rest string, line int) (*domain.Label, error) {
	params, err := parseParams(rest)
	if err != nil {
		return nil, err
	}
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("label requires name=<string>")
	}
	return &domain.Label{Name: name, Line: line}, nil
}

func parseJump(rest string, line int) (*domain.Jump, error) {
	params, err := parseParams(rest)
	if err != nil {
		return nil, err
	}
	target, ok := params["label"].(string)
	if !ok || target == "" {
		return nil, fmt.Errorf("jump requires label=<string>")
	}
	return &domain.Jump{Target: target, Line: line}, nil
}

func parseSetting(rest string, line int) (*domain.Setting, error) {
	params, err := parseParams(rest)
	if err != nil {
		return nil, err
	}
	if len(params) != 1 {
		return nil, fmt.Errorf("setting requires exactly one key=value pair")
	}
	for key, value := range params {
		normalized, err := domain.ValidateSetting(key, value)
		if err != nil {
			return nil, err
		}
		return &domain.Setting{Key: key, Value: normalized, Line: line}, nil
	}
	panic("unreachable")
}

func parsePoint(rest string, line int) (*domain.Point, error) {
	params, err := parseParams(rest)
	if err != nil {
		return nil, err
	}

	x, okX := floatParam(params, "x")
	y, okY := floatParam(params, "y")
	if !okX || !okY {
		return nil, fmt.Errorf("point requires x=<float> and y=<float>")
	}
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return nil, fmt.Errorf("point position (%v, %v) outside [0,1]", x, y)
	}

	point := &domain.Point{
		Pos:       domain.Position{X: x, Y: y},
		Frequency: 1,
		Line:      line,
	}

	if v, ok := params["frequency"]; ok {
		n, isInt := v.(int)
		if !isInt || n < 1 {
			return nil, fmt.Errorf("frequency must be an integer >= 1, got %v", v)
		}
		point.Frequency = n
	}
	if v, ok := params["skip"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("skip must be a boolean, got %v", v)
		}
		point.Skip = b
	}
	if v, ok := params["adjust"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("adjust must be a boolean, got %v", v)
		}
		point.Adjust = b
	}

	for key := range params {
		switch key {
		case "x", "y", "frequency", "skip", "adjust":
		default:
			return nil, fmt.Errorf("unknown point parameter %q", key)
		}
	}

	return point, nil
}

func floatParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// parseCommand parses "name, key=value, ..." and validates it against the
// command's schema.
func (c *Compiler) parseCommand(trimmed string, line int) (domain.CommandInvocation, error) {
	name, rest, _ := strings.Cut(trimmed, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CommandInvocation{}, fmt.Errorf("command line missing name")
	}

	cmdSchema, known := c.schemas.SchemaFor(name)
	if !known {
		return domain.CommandInvocation{}, fmt.Errorf("unknown command %q", name)
	}

	params, err := parseParams(rest)
	if err != nil {
		return domain.CommandInvocation{}, err
	}

	if err := schema.Validate(cmdSchema, params); err != nil {
		return domain.CommandInvocation{}, fmt.Errorf("command %q: %w", name, err)
	}

	return domain.CommandInvocation{Name: name, Params: params, Line: line}, nil
}
