package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/rover/pkg/domain"
	"github.com/aretw0/rover/pkg/ports"
	"github.com/aretw0/rover/pkg/schema"
)

// RegisterBuiltins installs the generic commands every routine can rely on:
//
//	wait, duration=0.5            sleep, cancellation-aware
//	step, direction=left, repetitions=2   movement impulses via the actuator
//
// Host applications register their own domain commands alongside these.
func RegisterBuiltins(c *Catalog, act ports.Actuator) {
	c.Register("wait", schema.Schema{
		"duration": schema.Float(),
	}, func(ctx context.Context, call Call) error {
		d := asFloat(call.Params["duration"])
		timer := time.NewTimer(time.Duration(d * float64(time.Second)))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	})

	c.Register("step", schema.Schema{
		"direction":   schema.Enum(domain.Directions()...),
		"repetitions": schema.Optional(schema.Int()),
	}, func(ctx context.Context, call Call) error {
		raw, ok := call.Params["direction"].(string)
		if !ok {
			return fmt.Errorf("step: missing or invalid direction parameter")
		}
		dir := domain.Direction(raw)
		reps := 1
		if v, ok := call.Params["repetitions"]; ok {
			reps = asInt(v)
		}
		for i := 0; i < reps; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := act.Step(ctx, dir); err != nil {
				return err
			}
		}
		return nil
	})
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
