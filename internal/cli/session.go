package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/rover"
	"github.com/aretw0/rover/internal/adapters/sim"
	"github.com/aretw0/rover/internal/config"
	"github.com/aretw0/rover/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// RunOptions carries the flag and config values for one session.
type RunOptions struct {
	Config  config.Config
	Routine string
	Debug   bool
}

// RunSession compiles the routine, hydrates its layout and runs the engine
// against the simulated world until a signal or the context stops it.
func RunSession(opts RunOptions) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	err := runOnce(sigCtx, opts)
	if sig := sigCtx.Signal(); sig != nil {
		printSystemMessage("Interrupted by %s.", sig)
	}
	return err
}

func runOnce(ctx context.Context, opts RunOptions) error {
	logger := createLogger(opts.Debug)

	store, closeStore, err := newStore(opts.Config.Store)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	world := sim.New()
	registry := prometheus.NewRegistry()

	rvOpts := []rover.Option{
		rover.WithLogger(logger),
		rover.WithStore(store),
		rover.WithMetrics(registry),
	}
	if opts.Config.TickInterval > 0 {
		rvOpts = append(rvOpts, rover.WithTickInterval(opts.Config.TickInterval.Std()))
	}
	for _, p := range opts.Config.Periodics {
		rvOpts = append(rvOpts, rover.WithPeriodic(p.Command, p.Every.Std()))
	}

	rv, err := rover.New(opts.Routine, world, world, rvOpts...)
	if err != nil {
		var cerr *domain.CompileError
		if errors.As(err, &cerr) {
			for _, d := range cerr.Diagnostics {
				fmt.Printf("  line %d: %s\n", d.Line, d.Message)
			}
		}
		return fmt.Errorf("failed to initialize rover: %w", err)
	}

	for _, d := range rv.Diagnostics() {
		printSystemMessage("line %d dropped: %s", d.Line, d.Message)
	}

	if err := rv.Hydrate(ctx); err != nil {
		return err
	}

	if addr := opts.Config.Serve; addr != "" {
		srv := &http.Server{Addr: addr, Handler: rv.Handler()}
		go func() {
			logger.Info("control server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("control server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if every := opts.Config.FlushInterval.Std(); every > 0 && store != nil {
		go flushLoop(ctx, rv, every)
	}

	printSystemMessage("Running '%s' (%d components).", rv.Name, rv.Routine().Len())
	runErr := rv.Run(ctx)

	switch {
	case runErr == nil, errors.Is(runErr, domain.ErrStopped), errors.Is(runErr, context.Canceled):
		printSystemMessage("Stopped. Layout has %d nodes.", rv.Status().LayoutNodes)
		return nil
	default:
		return runErr
	}
}

// flushLoop persists the layout periodically so a crash loses at most one
// interval of learning.
func flushLoop(ctx context.Context, rv *rover.Rover, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			rv.Flush(flushCtx)
			cancel()
		}
	}
}
