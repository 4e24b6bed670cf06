package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/rover/pkg/domain"
)

// errNavigation marks a recoverable movement failure: the attempt bound was
// exhausted before reaching the target.
type errNavigation struct {
	target   domain.Position
	attempts int
}

func (e *errNavigation) Error() string {
	return fmt.Sprintf("no progress toward (%.3f, %.3f) after %d attempts",
		e.target.X, e.target.Y, e.attempts)
}

// moveToPoint gets the agent to the point's position: along a known route
// when the layout has one, directly otherwise, then a finer adjustment pass
// when the point requests it.
func (e *Engine) moveToPoint(ctx context.Context, point *domain.Point, snap domain.SettingsSnapshot) error {
	// The caller only dispatches a point while the position is known; should
	// perception drop mid-movement, moveDirect burns its attempt bound. Route
	// planning simply falls back to direct movement without a fix.
	if cur, known := e.feed.CurrentPosition(); known {
		if route, ok := e.layout.Route(cur, point.Pos); ok {
			e.metrics.Route(route.Cost)
			for _, waypoint := range route.Positions {
				if err := e.moveDirect(ctx, waypoint, snap.MoveTolerance, snap.MoveAttempts); err != nil {
					return err
				}
			}
		}
	}
	// Close the final gap (or cover the whole distance when no route).
	if err := e.moveDirect(ctx, point.Pos, snap.MoveTolerance, snap.MoveAttempts); err != nil {
		return err
	}

	if point.Adjust {
		return e.moveDirect(ctx, point.Pos, snap.AdjustTolerance, snap.MoveAttempts)
	}
	return nil
}

// moveDirect issues repeated directional impulses toward target until within
// tolerance or the attempt bound is exceeded. The cancellation token is
// checked before every impulse, so an in-flight movement aborts within one
// actuation.
func (e *Engine) moveDirect(ctx context.Context, target domain.Position, tolerance float64, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		cur, known := e.feed.CurrentPosition()
		if known && cur.Distance(target) <= tolerance {
			return nil
		}

		if known {
			if err := e.act.Step(ctx, cur.DirectionToward(target)); err != nil {
				return &domain.ActuatorError{Op: "step", Err: err}
			}
		}

		if err := sleepCtx(ctx, e.stepPause); err != nil {
			return err
		}
	}

	// One last check: the final impulse may have landed us inside tolerance.
	if cur, known := e.feed.CurrentPosition(); known && cur.Distance(target) <= tolerance {
		return nil
	}
	return &errNavigation{target: target, attempts: attempts}
}
