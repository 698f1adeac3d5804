package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bnema/focus-budget-cli/internal/application"
	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const (
	watchEventBuffer = 64
	watchDebounce    = 100 * time.Millisecond
)

func newWatchCmd(app *app) *cobra.Command {
	var (
		batch batchFlags
		tui   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rerun a cycle whenever the work item file changes",
		Long:  "watch runs a cycle at start and after every write to the item file, while the maintenance ticker retires finished allocations. Stop with Ctrl+C.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			emitter := application.NewEventEmitter(watchEventBuffer, app.logger)
			orchestrator, err := app.newOrchestrator(application.WithObserver(emitter))
			if err != nil {
				return err
			}

			session := &watchSession{app: app, batch: batch, orchestrator: orchestrator}

			changes, err := watchFile(ctx, batch.itemsPath, app.logger.Warn)
			if err != nil {
				return err
			}

			orchestrator.Start(ctx)

			// The producer owns every emit, so it closes the emitter once cycles
			// and maintenance ticks have stopped.
			submitted := make(chan struct{})
			go func() {
				defer close(submitted)
				defer emitter.Close()
				defer orchestrator.Stop()

				session.runCycle(ctx)
				for range changes {
					session.runCycle(ctx)
				}
			}()

			err = app.withHistory(func(repo ports.HistoryRepository) error {
				session.history = repo
				if tui {
					return runWatchTUI(ctx, cmd.OutOrStdout(), batch.itemsPath, emitter.Events(), session.handle)
				}
				return session.consume(ctx, cmd.OutOrStdout(), emitter.Events())
			})
			cancel()
			<-submitted

			return err
		},
	}

	batch.register(cmd)
	cmd.Flags().BoolVar(&tui, "tui", false, "Show a live terminal view instead of printing each cycle")

	return cmd
}

type watchSession struct {
	app          *app
	batch        batchFlags
	orchestrator *application.Orchestrator
	history      ports.HistoryRepository
}

// runCycle loads the item file and submits it. Results reach the output through
// the orchestrator's observers.
func (s *watchSession) runCycle(ctx context.Context) {
	loaded, err := s.batch.load(s.app)
	if err != nil {
		s.app.logger.Warn("load items", "path", s.batch.itemsPath, "error", err)
		return
	}

	if _, err := s.orchestrator.RunCycle(ctx, loaded.Items, loaded.Context); err != nil {
		s.app.logger.Warn("run cycle", "path", s.batch.itemsPath, "error", err)
	}
}

// handle persists completed cycles and returns the text to display, if any.
func (s *watchSession) handle(ctx context.Context, event application.Event) string {
	switch event.Type {
	case application.EventCycleCompleted:
		result := *event.Cycle
		if result.Status == domain.CycleCompleted && s.history != nil {
			// Cycles drained after shutdown are still persisted.
			persistCtx := context.WithoutCancel(ctx)
			if err := s.history.Append(persistCtx, []domain.HistoryEntry{domain.HistoryEntryFor(result)}); err != nil {
				s.app.logger.Warn("persist history", "cycle", result.CycleID, "error", err)
			}
		}
		return s.app.cycleView(result)
	case application.EventMaintenanceTick:
		tick := *event.Tick
		if len(tick.Completed) > 0 {
			s.app.logger.Info("allocations completed", "count", len(tick.Completed), "queue", tick.QueueLength, "load", tick.CognitiveLoad)
		} else {
			s.app.logger.Debug("maintenance tick", "queue", tick.QueueLength, "load", tick.CognitiveLoad)
		}
	}
	return ""
}

// consume prints events until the emitter is closed, which happens after ctx is done.
func (s *watchSession) consume(ctx context.Context, out io.Writer, events <-chan application.Event) error {
	for event := range events {
		if text := s.handle(ctx, event); text != "" {
			if _, err := fmt.Fprintln(out, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// watchFile reports writes to path on the returned channel until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func watchFile(ctx context.Context, path string, warn func(string, ...any)) (<-chan struct{}, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve items path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("stat items file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer watcher.Close()

		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					debounce = time.After(watchDebounce)
				}
			case <-debounce:
				debounce = nil
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				warn("file watcher", "error", err)
			}
		}
	}()

	return changes, nil
}
