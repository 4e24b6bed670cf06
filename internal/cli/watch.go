package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunWatch executes the routine in development mode, recompiling and
// restarting whenever the source file changes. Layout learning carries over
// between iterations through the configured store: each run flushes on exit
// and the next hydrates what the previous one learned.
func RunWatch(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save and
	// a watch on the old inode goes silent.
	if err := watcher.Add(filepath.Dir(opts.Routine)); err != nil {
		return err
	}

	reloadCh := make(chan struct{}, 1)
	go forwardChanges(sigCtx, watcher, opts.Routine, reloadCh)

	printSystemMessage("Watching '%s'.", opts.Routine)

	for {
		iterCtx, cancelIter := context.WithCancel(sigCtx)
		reloadHit := make(chan struct{}, 1)
		go func() {
			select {
			case <-iterCtx.Done():
			case <-reloadCh:
				reloadHit <- struct{}{}
				cancelIter()
			}
		}()

		runErr := runOnce(iterCtx, opts)
		cancelIter()

		select {
		case <-sigCtx.Done():
			logger.Info("stopping watcher", "signal", sigCtx.Signal())
			return nil
		default:
		}

		select {
		case <-reloadHit:
			// The change interrupted the run; restart immediately.
		default:
			if runErr != nil {
				logger.Error("run failed, waiting for changes", "error", runErr)
			}
			printSystemMessage("Waiting for changes...")
			select {
			case <-sigCtx.Done():
				return nil
			case <-reloadCh:
			}
		}
		printSystemMessage("Change detected, restarting.")
	}
}

// forwardChanges turns relevant filesystem events into reload signals for
// the whole watch session.
func forwardChanges(ctx context.Context, watcher *fsnotify.Watcher, path string, reloadCh chan<- struct{}) {
	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Editors emit bursts of events per save; let the file settle.
			time.Sleep(100 * time.Millisecond)
			select {
			case reloadCh <- struct{}{}:
			default:
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
