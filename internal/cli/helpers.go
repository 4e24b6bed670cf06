// Package cli wires the rover facade, config, stores and signal handling
// into the session flows the cobra commands invoke.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/rover/internal/adapters/file"
	"github.com/aretw0/rover/internal/adapters/memory"
	"github.com/aretw0/rover/internal/adapters/redis"
	"github.com/aretw0/rover/internal/adapters/sqlite"
	"github.com/aretw0/rover/internal/config"
	"github.com/aretw0/rover/internal/logging"
	"github.com/aretw0/rover/pkg/ports"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows
// retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelInfo)
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// newStore builds the layout store selected by cfg. The returned closer
// releases backend resources and may be nil.
func newStore(cfg config.StoreConfig) (ports.LayoutStore, func() error, error) {
	switch cfg.Backend {
	case "", "file":
		return file.New(cfg.Path), nil, nil
	case "memory":
		return memory.New(), nil, nil
	case "redis":
		if cfg.Addr == "" {
			return nil, nil, fmt.Errorf("redis backend requires store.addr")
		}
		s := redis.New(cfg.Addr, "", 0)
		return s, s.Close, nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = ".rover/layouts.db"
		}
		s, err := sqlite.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
