package main

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/soypat/railkit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var quiet = railkit.DefaultQuiet

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate parts whenever the config file changes",
	Long: `Watch the config file. Each change runs a quick generation without holes
to validate the parameters, then a full generation once the file has been
quiet for a while. A full generation in flight is never interrupted by a
newer change. Full generations write every part to the output directory.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&quiet, "quiet", quiet, "Quiet period before a full generation")
}

// fullRunner runs full generations one at a time. A generation in flight
// always runs to completion. Runs requested meanwhile wait for it, and
// only the latest of them runs. stop cancels everything.
type fullRunner struct {
	ctx      context.Context
	cancel   context.CancelFunc
	generate func(ctx context.Context, p railkit.Parameters) error

	mu     sync.Mutex // guards seq and closed.
	seq    int
	closed bool
	busy   sync.Mutex // held by the generation in flight.
	wg     sync.WaitGroup
}

func newFullRunner(ctx context.Context, generate func(ctx context.Context, p railkit.Parameters) error) *fullRunner {
	ctx, cancel := context.WithCancel(ctx)
	return &fullRunner{ctx: ctx, cancel: cancel, generate: generate}
}

func (r *fullRunner) run(p railkit.Parameters) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.seq++
	seq := r.seq
	r.wg.Add(1)
	r.mu.Unlock()
	defer r.wg.Done()

	r.busy.Lock()
	defer r.busy.Unlock()
	r.mu.Lock()
	superseded := seq != r.seq || r.closed
	r.mu.Unlock()
	if superseded {
		return
	}
	if err := r.generate(r.ctx, p); err != nil {
		logger.Debug("full generation", zap.Error(err))
	}
}

func (r *fullRunner) stop() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}

func runWatch(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return errors.New("watch needs a config file, set --config")
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(0)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Editors often replace files on save, so the directory is watched.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	ws := railkit.NewWorkspace(railkit.WithLogger(logger))
	defer ws.Close()
	full := newFullRunner(ctx, func(ctx context.Context, p railkit.Parameters) error {
		if _, err := ws.Generate(ctx, p, false); err != nil {
			return err // Logged by the workspace.
		}
		if err := writeParts(ws, outDir, railkit.Roles); err != nil {
			logger.Error("writing parts", zap.Error(err))
		}
		return nil
	})
	defer full.stop()
	deb := railkit.NewDebouncer(quiet)
	defer deb.Stop()

	changed := func() {
		p, err := resolveParams(cmd)
		if err != nil {
			logger.Warn("ignoring parameters", zap.String("config", configPath), zap.Error(err))
			return
		}
		if _, err := ws.Generate(ctx, p, true); err != nil {
			return
		}
		deb.Schedule(func() { full.run(p) })
	}
	logger.Info("watching", zap.String("config", abs), zap.Duration("quiet", quiet))
	changed()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debug("config changed", zap.Stringer("op", ev.Op))
			changed()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
