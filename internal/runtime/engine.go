// Package runtime implements the execution engine: a single-goroutine
// cooperative loop that walks a compiled routine, navigates to each point
// via the layout pathfinder, and dispatches the point's commands through the
// action catalog.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/rover/internal/layout"
	"github.com/aretw0/rover/internal/metrics"
	"github.com/aretw0/rover/pkg/catalog"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/aretw0/rover/pkg/ports"
)

// State is the engine's run state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Engine interprets one routine. It owns the execution context exclusively
// and is the only caller of the actuator; control methods (Pause, Resume,
// Stop) are safe from any goroutine.
type Engine struct {
	routine *domain.Routine
	layout  *layout.Layout
	catalog *catalog.Catalog
	feed    ports.PerceptionFeed
	act     ports.Actuator

	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	metrics *metrics.Metrics

	tickInterval time.Duration
	stepPause    time.Duration
	periodics    []*periodic

	throttle *throttle

	mu      sync.Mutex
	state   State
	exec    *Context
	stopFn  context.CancelFunc
	pauseCh chan struct{} // closed when resumed
}

type periodic struct {
	name  string
	every time.Duration
	last  time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTickInterval sets the tick cadence (default 100ms, bounded below by
// the perception feed's refresh rate in practice).
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tickInterval = d }
}

// WithStepPause sets the wait between movement impulses (default 50ms).
func WithStepPause(d time.Duration) Option {
	return func(e *Engine) { e.stepPause = d }
}

// WithPeriodic registers a catalog command invoked at most once per interval
// at tick boundaries while the engine is running (buff-style maintenance
// actions).
func WithPeriodic(command string, every time.Duration) Option {
	return func(e *Engine) {
		e.periodics = append(e.periodics, &periodic{name: command, every: every})
	}
}

// New creates an engine for the routine. The layout is shared with the
// caller, which may persist snapshots of it while the engine runs.
func New(routine *domain.Routine, lay *layout.Layout, cat *catalog.Catalog,
	feed ports.PerceptionFeed, act ports.Actuator, opts ...Option) *Engine {

	e := &Engine{
		routine:      routine,
		layout:       lay,
		catalog:      cat,
		feed:         feed,
		act:          act,
		logger:       slog.Default(),
		tickInterval: 100 * time.Millisecond,
		stepPause:    50 * time.Millisecond,
		state:        StateIdle,
		throttle:     newThrottle(5 * time.Second),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current run state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Status is a point-in-time view for introspection surfaces.
type Status struct {
	State       State           `json:"state"`
	Index       int             `json:"index"`
	Settings    domain.Settings `json:"settings"`
	LayoutNodes int             `json:"layout_nodes"`
}

// Status returns a snapshot of the engine's progress.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{State: e.state, LayoutNodes: e.layout.Len()}
	if e.exec != nil {
		st.Index = e.exec.Index
		st.Settings = e.exec.Settings.Clone()
	}
	return st
}

// Routine returns the routine under execution.
func (e *Engine) Routine() *domain.Routine { return e.routine }

// Layout returns the shared layout graph.
func (e *Engine) Layout() *layout.Layout { return e.layout }

// Pause suspends execution at the next tick boundary.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning {
		return
	}
	e.setStateLocked(StatePaused)
	e.pauseCh = make(chan struct{})
}

// Resume continues a paused engine.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePaused {
		return
	}
	e.setStateLocked(StateRunning)
	close(e.pauseCh)
	e.pauseCh = nil
}

// Stop terminates the run from any state. It is idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	stop := e.stopFn
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (e *Engine) setStateLocked(next State) {
	prev := e.state
	e.state = next
	if e.hooks.OnStateChange != nil && prev != next {
		e.hooks.OnStateChange(context.Background(), &domain.StateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStateChange},
			From:      string(prev),
			To:        string(next),
		})
	}
}

// Run drives the tick loop until ctx is cancelled, Stop is called, or a
// fatal actuator failure occurs. It always releases the actuator on the way
// out. Run returns domain.ErrStopped for an ordinary stop.
func (e *Engine) Run(ctx context.Context) error {
	// Periodic commands are invoked without parameters, so any command whose
	// schema requires one can never succeed. Reject the configuration up
	// front instead of failing on every tick.
	for _, p := range e.periodics {
		if err := e.catalog.Validate(p.name, map[string]any{}); err != nil {
			return fmt.Errorf("periodic command %q: %w", p.name, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return fmt.Errorf("engine already started (state %s)", e.state)
	}
	e.exec = NewContext()
	e.stopFn = cancel
	e.setStateLocked(StateRunning)
	e.mu.Unlock()

	err := e.loop(runCtx)

	// The release must be unconditional and idempotent: a held key on stop
	// is worse than a redundant release.
	if relErr := e.act.ReleaseAll(); relErr != nil {
		e.logger.Error("actuator release failed", "err", relErr)
	}

	e.mu.Lock()
	e.setStateLocked(StateStopped)
	e.exec = nil
	e.stopFn = nil
	e.mu.Unlock()

	return err
}

func (e *Engine) loop(ctx context.Context) error {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.ErrStopped
		case <-ticker.C:
		}

		e.mu.Lock()
		paused := e.state == StatePaused
		ch := e.pauseCh
		e.mu.Unlock()

		if paused {
			select {
			case <-ctx.Done():
				return domain.ErrStopped
			case <-ch:
			}
			continue
		}

		if err := e.tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrStopped) {
				return domain.ErrStopped
			}
			var actErr *domain.ActuatorError
			if errors.As(err, &actErr) {
				e.logger.Error("actuator unreachable, stopping", "err", err)
				return err
			}
			return err
		}
	}
}

// tick executes exactly one component. Jumps only move the pointer; control
// returns to the scheduler so a chain of jumps can never starve the
// cancellation check at the top of the loop.
func (e *Engine) tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.routine.Len() == 0 {
		return domain.ErrStopped
	}

	e.metrics.Tick()
	e.runPeriodics(ctx)

	e.mu.Lock()
	exec := e.exec
	idx := exec.Index
	e.mu.Unlock()

	comp := e.routine.Components[idx]
	switch c := comp.(type) {
	case *domain.Label:
		e.advance()

	case *domain.Jump:
		e.mu.Lock()
		exec.Index = e.routine.Labels[c.Target]
		e.mu.Unlock()

	case *domain.Setting:
		e.mu.Lock()
		exec.Settings[c.Key] = c.Value
		e.mu.Unlock()
		e.logger.Debug("setting applied", "key", c.Key, "value", c.Value)
		e.advance()

	case *domain.Point:
		proceed, err := e.executePoint(ctx, idx, c)
		if err != nil {
			return err
		}
		if proceed {
			e.advance()
		}
	}

	return nil
}

func (e *Engine) advance() {
	e.mu.Lock()
	e.exec.Advance(e.routine.Len())
	e.mu.Unlock()
}

// executePoint runs one pass of a point. The returned bool tells the tick
// whether to advance the pointer; it is false only while the agent's position
// is unknown, which holds both the pointer and the pass counter so the same
// pass is retried once perception recovers.
func (e *Engine) executePoint(ctx context.Context, idx int, point *domain.Point) (bool, error) {
	if _, known := e.feed.CurrentPosition(); !known {
		e.throttle.Do("perception", func() {
			e.logger.Warn("position unknown, holding at point", "index", idx)
		})
		return false, nil
	}

	e.mu.Lock()
	pass := e.exec.Pass(idx)
	snap, snapErr := e.exec.Settings.Snapshot()
	e.mu.Unlock()
	if snapErr != nil {
		return false, snapErr
	}

	execute := pass%point.Frequency == 0 && !(point.Skip && pass == 0)
	e.metrics.PointPass(execute)
	if !execute {
		e.emitPoint(ctx, domain.EventPointSkip, idx, point, pass)
		return true, nil
	}

	// Navigation failure skips the rest of this pass but never stalls the
	// routine: the engine advances past the point.
	if err := e.moveToPoint(ctx, point, snap); err != nil {
		if isFatal(err) {
			return false, err
		}
		e.metrics.NavFailure()
		e.throttle.Do("navigate", func() {
			e.logger.Warn("navigation failed, skipping point pass",
				"index", idx, "x", point.Pos.X, "y", point.Pos.Y, "err", err)
		})
		return true, nil
	}

	e.emitPoint(ctx, domain.EventPointArrive, idx, point, pass)
	e.recordArrival(idx, point, snap)

	return true, e.runCommands(ctx, idx, point, snap)
}

// recordArrival feeds the layout: the point's own position once per run, and
// the actually observed position whenever layout recording is enabled.
func (e *Engine) recordArrival(idx int, point *domain.Point, snap domain.SettingsSnapshot) {
	e.mu.Lock()
	first := e.exec.MarkRecorded(idx)
	e.mu.Unlock()

	if first {
		e.layout.Record(point.Pos)
	}
	if snap.RecordLayout {
		if cur, ok := e.feed.CurrentPosition(); ok {
			e.layout.Record(cur)
		}
	}
	e.metrics.Nodes(e.layout.Len())
}

func (e *Engine) runCommands(ctx context.Context, idx int, point *domain.Point, snap domain.SettingsSnapshot) error {
	cooldown := time.Duration(snap.CommandCooldown * float64(time.Second))

	for _, cmd := range point.Commands {
		// Cancellation between commands bounds abort latency to one command.
		if err := ctx.Err(); err != nil {
			return err
		}

		pos, _ := e.feed.CurrentPosition()
		call := catalog.Call{Params: cmd.Params, Settings: snap, Position: pos}

		e.emitCommand(ctx, domain.EventCommandCall, idx, cmd.Name, false)
		err := e.catalog.Invoke(ctx, cmd.Name, call)
		e.metrics.Command(cmd.Name, err)
		e.emitCommand(ctx, domain.EventCommandReturn, idx, cmd.Name, err != nil)

		if err != nil {
			if errors.Is(err, context.Canceled) || isFatal(err) {
				return err
			}
			// One bad command must not abort the point.
			e.throttle.Do("command:"+cmd.Name, func() {
				e.logger.Warn("command failed", "command", cmd.Name, "line", cmd.Line, "err", err)
			})
		}

		if cooldown > 0 {
			if err := sleepCtx(ctx, cooldown); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) runPeriodics(ctx context.Context) {
	now := time.Now()
	for _, p := range e.periodics {
		if !p.last.IsZero() && now.Sub(p.last) < p.every {
			continue
		}
		p.last = now

		e.mu.Lock()
		snap, err := e.exec.Settings.Snapshot()
		e.mu.Unlock()
		if err != nil {
			continue
		}

		pos, _ := e.feed.CurrentPosition()
		call := catalog.Call{Params: map[string]any{}, Settings: snap, Position: pos}
		invokeErr := e.catalog.Invoke(ctx, p.name, call)
		e.metrics.Command(p.name, invokeErr)
		if invokeErr != nil {
			e.throttle.Do("periodic:"+p.name, func() {
				e.logger.Warn("periodic command failed", "command", p.name, "err", invokeErr)
			})
		}
	}
}

func (e *Engine) emitPoint(ctx context.Context, typ domain.EventType, idx int, point *domain.Point, pass int) {
	var hook func(context.Context, *domain.PointEvent)
	switch typ {
	case domain.EventPointArrive:
		hook = e.hooks.OnPointArrive
	case domain.EventPointSkip:
		hook = e.hooks.OnPointSkip
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.PointEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Index:     idx,
		Pos:       point.Pos,
		Pass:      pass,
	})
}

func (e *Engine) emitCommand(ctx context.Context, typ domain.EventType, idx int, name string, isErr bool) {
	var hook func(context.Context, *domain.CommandEvent)
	switch typ {
	case domain.EventCommandCall:
		hook = e.hooks.OnCommandCall
	case domain.EventCommandReturn:
		hook = e.hooks.OnCommandReturn
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.CommandEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Index:     idx,
		Command:   name,
		IsError:   isErr,
	})
}

func isFatal(err error) bool {
	var actErr *domain.ActuatorError
	return errors.As(err, &actErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
