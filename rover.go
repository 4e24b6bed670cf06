package rover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/rover/internal/adapters/httpapi"
	"github.com/aretw0/rover/internal/compiler"
	"github.com/aretw0/rover/internal/layout"
	"github.com/aretw0/rover/internal/metrics"
	"github.com/aretw0/rover/internal/runtime"
	"github.com/aretw0/rover/pkg/catalog"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/aretw0/rover/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the release version, overridable at build time via -ldflags.
var Version = "0.2.0"

// Rover is the high-level entry point for the library. It wraps the internal
// runtime and provides a simplified API for consumers: compile a routine,
// hydrate the learned layout, run the engine, persist what it learned.
type Rover struct {
	Name string

	routine *domain.Routine
	diags   []domain.Diagnostic
	layout  *layout.Layout
	catalog *catalog.Catalog
	engine  *runtime.Engine

	feed  ports.PerceptionFeed
	act   ports.Actuator
	store ports.LayoutStore

	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	registry    *prometheus.Registry
	runtimeOpts []runtime.Option
	layoutOpts  []layout.Option
}

// Option defines a functional option for configuring a Rover.
type Option func(*Rover)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rover) { r.logger = logger }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Rover) { r.hooks = hooks }
}

// WithStore sets the layout persistence backend. When present, the saved
// layout for the routine is merged on startup and Flush persists snapshots.
func WithStore(store ports.LayoutStore) Option {
	return func(r *Rover) { r.store = store }
}

// WithCatalog replaces the default command catalog. The catalog must be
// populated before New is called, since compilation validates command lines
// against it.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(r *Rover) { r.catalog = cat }
}

// WithPeriodic schedules a catalog command on a fixed interval while the
// engine runs.
func WithPeriodic(command string, every time.Duration) Option {
	return func(r *Rover) {
		r.runtimeOpts = append(r.runtimeOpts, runtime.WithPeriodic(command, every))
	}
}

// WithTickInterval sets the engine tick cadence.
func WithTickInterval(d time.Duration) Option {
	return func(r *Rover) {
		r.runtimeOpts = append(r.runtimeOpts, runtime.WithTickInterval(d))
	}
}

// WithStepPause sets the wait between movement impulses.
func WithStepPause(d time.Duration) Option {
	return func(r *Rover) {
		r.runtimeOpts = append(r.runtimeOpts, runtime.WithStepPause(d))
	}
}

// WithMetrics registers prometheus collectors on the given registry and
// exposes them on the HTTP handler's /metrics endpoint.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(r *Rover) { r.registry = reg }
}

// WithConnectRadius overrides the layout's node linking radius.
func WithConnectRadius(radius float64) Option {
	return func(r *Rover) {
		r.layoutOpts = append(r.layoutOpts, layout.WithConnectRadius(radius))
	}
}

// New compiles the routine at path and assembles an engine around it. The
// perception feed and actuator are the two host-provided integration points.
//
// Local diagnostics do not fail New; retrieve them with Diagnostics. A fatal
// compile error (duplicate label, unresolved jump) is returned as a
// *domain.CompileError.
func New(path string, feed ports.PerceptionFeed, act ports.Actuator, opts ...Option) (*Rover, error) {
	if feed == nil || act == nil {
		return nil, fmt.Errorf("perception feed and actuator are required")
	}

	r := &Rover{feed: feed, act: act}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routine: %w", err)
	}
	r.Name = routineName(path)

	if r.catalog == nil {
		r.catalog = catalog.New()
		catalog.RegisterBuiltins(r.catalog, act)
	}

	routine, diags, err := compiler.New(r.catalog).Compile(r.Name, string(source))
	if err != nil {
		return nil, err
	}
	r.routine = routine
	r.diags = diags
	for _, d := range diags {
		r.logger.Warn("routine line dropped", "line", d.Line, "reason", d.Message)
	}

	r.layout = layout.New(r.Name, r.layoutOpts...)

	r.logger = r.logger.With("routine", r.Name)

	var m *metrics.Metrics
	if r.registry != nil {
		m = metrics.New(r.registry)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(r.logger),
		runtime.WithLifecycleHooks(r.hooks),
	}
	if m != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithMetrics(m))
	}
	runtimeOpts = append(runtimeOpts, r.runtimeOpts...)

	r.engine = runtime.New(r.routine, r.layout, r.catalog, feed, act, runtimeOpts...)
	return r, nil
}

func routineName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Hydrate merges the persisted layout for this routine into the live graph.
// A missing snapshot is not an error.
func (r *Rover) Hydrate(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	snap, err := r.store.Load(ctx, r.Name)
	if err != nil {
		if errors.Is(err, domain.ErrLayoutNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load layout: %w", err)
	}
	r.layout.Merge(snap)
	r.logger.Info("layout hydrated", "nodes", r.layout.Len())
	return nil
}

// Flush persists the current layout snapshot.
func (r *Rover) Flush(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Save(ctx, r.Name, r.layout.Snapshot())
}

// Run executes the routine until the context is cancelled or Stop is called.
// The layout is flushed once on exit regardless of the run's outcome.
func (r *Rover) Run(ctx context.Context) error {
	runErr := r.engine.Run(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Flush(flushCtx); err != nil {
		r.logger.Error("failed to flush layout", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// Pause suspends execution at the next tick boundary.
func (r *Rover) Pause() { r.engine.Pause() }

// Resume continues a paused run.
func (r *Rover) Resume() { r.engine.Resume() }

// Stop terminates the run. Safe from any goroutine, idempotent.
func (r *Rover) Stop() { r.engine.Stop() }

// Status returns a point-in-time view of the engine.
func (r *Rover) Status() runtime.Status { return r.engine.Status() }

// Routine returns the compiled routine.
func (r *Rover) Routine() *domain.Routine { return r.routine }

// Diagnostics returns the local diagnostics produced at compile time.
func (r *Rover) Diagnostics() []domain.Diagnostic { return r.diags }

// LayoutSnapshot returns a deep copy of the learned layout graph.
func (r *Rover) LayoutSnapshot() *domain.LayoutSnapshot { return r.layout.Snapshot() }

// Handler returns the HTTP control surface for this rover: status, control
// verbs, routine and layout introspection, and metrics when a registry was
// configured.
func (r *Rover) Handler() http.Handler {
	var gatherer prometheus.Gatherer
	if r.registry != nil {
		gatherer = r.registry
	}
	return httpapi.NewHandler(r.engine, r.routine, r.layout, gatherer)
}
