// Package fswatch turns files created in the watch folders into file added
// events.
package fswatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ErrNoPaths is returned when there is nothing to watch
var ErrNoPaths = errors.New("no watch paths configured")

// Emitter receives created file paths
type Emitter interface {
	EmitFileAdded(path string)
}

// Watcher watches directories for new files
type Watcher struct {
	paths   []string
	emitter Emitter
	logger  zerolog.Logger
}

// New creates a watcher for the given directories
func New(paths []string, emitter Emitter, logger zerolog.Logger) *Watcher {
	return &Watcher{
		paths:   paths,
		emitter: emitter,
		logger:  logger.With().Str("component", "fswatch").Logger(),
	}
}

// Run watches until ctx is done. Files created or moved into a watched
// directory are emitted once per event.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.paths) == 0 {
		return ErrNoPaths
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range w.paths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		w.logger.Info().Str("path", p).Msg("Watching for torrent files")
	}

	return w.loop(ctx, watcher)
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			w.logger.Debug().Str("path", path).Msg("File added")
			w.emitter.EmitFileAdded(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}
