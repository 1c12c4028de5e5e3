// Package ingest submits torrent files dropped into watch folders to the
// download client and archives them afterwards.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/rs/zerolog"

	"github.com/s0up4200/seedkeeper/notify"
	"github.com/s0up4200/seedkeeper/pathutil"
	"github.com/s0up4200/seedkeeper/relocate"
)

// DefaultDelay is how long a new file is left alone before it is submitted
const DefaultDelay = 2 * time.Second

// Adder adds torrent files to the download client
type Adder interface {
	AddTorrentFile(ctx context.Context, path, destinationDir string) error
}

// Options configures the handler
type Options struct {
	// ArchiveDir receives torrent files once they were added
	ArchiveDir string
	// Delay before a new file is submitted
	Delay      time.Duration
	Workers    int
}

// Handler ingests torrent files
type Handler struct {
	client Adder
	sink   notify.Sink
	opts   Options
	logger zerolog.Logger

	pool   *workerPool
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a handler and starts its workers
func New(client Adder, sink notify.Sink, opts Options, logger zerolog.Logger) *Handler {
	if opts.Delay < 0 {
		opts.Delay = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		client: client,
		sink:   sink,
		opts:   opts,
		logger: logger.With().Str("component", "ingest").Logger(),
		pool:   newWorkerPool(opts.Workers),
		ctx:    ctx,
		cancel: cancel,
	}
}

// HandleFileAdded queues path for ingestion. Anything that is not a torrent
// file is ignored.
func (h *Handler) HandleFileAdded(path string) {
	if !pathutil.IsTorrentFile(path) {
		h.logger.Trace().Str("path", path).Msg("Ignoring non-torrent file")
		return
	}

	err := h.pool.Submit(func() {
		if h.opts.Delay > 0 {
			select {
			case <-time.After(h.opts.Delay):
			case <-h.ctx.Done():
				return
			}
		}
		_ = h.Ingest(h.ctx, path)
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("path", path).Msg("Dropped torrent file")
	}
}

// Ingest adds the torrent file at path, saving its content next to the file,
// then moves the file into the archive directory. A failed move is reported
// but does not undo the add.
func (h *Handler) Ingest(ctx context.Context, path string) error {
	if !pathutil.IsTorrentFile(path) {
		return nil
	}

	logger := h.logger.With().Str("path", path).Logger()
	name := h.torrentName(path, logger)

	destination := pathutil.ContainingDirectory(path)
	if err := h.client.AddTorrentFile(ctx, path, destination); err != nil {
		logger.Error().Err(err).Msg("Failed to add torrent")
		h.notify(ctx, notify.CategoryError, fmt.Sprintf("Error adding %s", path))
		return fmt.Errorf("failed to add %s: %w", path, err)
	}

	logger.Info().Str("save_path", destination).Msg("Added torrent")
	h.notify(ctx, notify.CategoryAdd, fmt.Sprintf("Added %s", name))

	archived, err := relocate.Move(path, h.opts.ArchiveDir)
	if err != nil {
		logger.Error().Err(err).Str("archive", h.opts.ArchiveDir).Msg("Failed to archive torrent file")
		h.notify(ctx, notify.CategoryError, fmt.Sprintf("Error moving %s to %s", path, h.opts.ArchiveDir))
		return nil
	}

	logger.Debug().Str("archived", archived).Msg("Archived torrent file")
	return nil
}

// torrentName reads the name from the torrent's info dictionary. Files that do
// not parse still go to the client, named after the file instead.
func (h *Handler) torrentName(path string, logger zerolog.Logger) string {
	name := pathutil.FileName(path)

	mi, err := metainfo.LoadFromFile(path)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not parse torrent file")
		return name
	}

	event := logger.Debug().Str("hash", mi.HashInfoBytes().HexString())
	if info, err := mi.UnmarshalInfo(); err == nil && info.Name != "" {
		name = info.Name
		event = event.Str("name", info.Name).Int64("size", info.TotalLength())
	}
	event.Msg("Parsed torrent file")
	return name
}

// Close stops accepting files and waits for queued ones
func (h *Handler) Close(ctx context.Context) error {
	err := h.pool.Stop(ctx)
	h.cancel()
	return err
}

func (h *Handler) notify(ctx context.Context, category notify.Category, text string) {
	if err := notify.Send(ctx, h.sink, category, text); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send notification")
	}
}
