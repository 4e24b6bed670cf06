package schema

import (
	"fmt"
	"strings"
)

// Schema maps parameter names to their expected types.
// Example: {"direction": Enum("left", "right"), "repetitions": Optional(Int())}
type Schema map[string]Type

// optionalType marks a parameter that may be absent from the invocation.
type optionalType struct {
	inner Type
}

func (t *optionalType) Name() string             { return t.inner.Name() + "?" }
func (t *optionalType) Validate(value any) error { return t.inner.Validate(value) }

// Optional wraps a type so the parameter is not required to be present.
func Optional(inner Type) Type { return &optionalType{inner: inner} }

// ParamError reports a single parameter that failed validation.
type ParamError struct {
	Param  string
	Reason string
	Value  any // the offending value, nil when the parameter was absent
}

func (e *ParamError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("parameter %q %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("parameter %q %s (got %T)", e.Param, e.Reason, e.Value)
}

// ParamErrors collects every parameter failure found in one Validate pass.
type ParamErrors []*ParamError

func (e ParamErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d invalid parameters:", len(e))
	for _, pe := range e {
		b.WriteString("\n  ")
		b.WriteString(pe.Error())
	}
	return b.String()
}

// Validate checks that params conforms to the schema: every required
// parameter is present, every present parameter has the declared type, and
// nothing outside the schema appears. All failures are reported at once as a
// ParamErrors value.
func Validate(schema Schema, params map[string]any) error {
	var errs ParamErrors

	for name, typ := range schema {
		value, exists := params[name]
		if !exists {
			if _, opt := typ.(*optionalType); opt {
				continue
			}
			errs = append(errs, &ParamError{Param: name, Reason: "is required"})
			continue
		}

		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ParamError{Param: name, Reason: err.Error(), Value: value})
		}
	}

	for name := range params {
		if _, exists := schema[name]; !exists {
			errs = append(errs, &ParamError{Param: name, Reason: "is not accepted by this command", Value: params[name]})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
