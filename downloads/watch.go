// Package downloads notices torrents that finish downloading between polls.
package downloads

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// Lister lists torrents
type Lister interface {
	ListTorrents(ctx context.Context) ([]qbittorrent.Torrent, error)
}

// CompletionSink receives torrents that just finished
type CompletionSink interface {
	EmitDownloadComplete(t qbittorrent.Torrent)
}

// Watcher tracks in-progress torrents across polls. Only torrents seen
// downloading in a previous poll can complete, so torrents discovered
// already finished are never reported.
type Watcher struct {
	client Lister
	sink   CompletionSink
	logger zerolog.Logger

	mu         sync.Mutex
	inProgress map[string]struct{}
}

// NewWatcher creates a watcher with an empty in-progress set
func NewWatcher(client Lister, sink CompletionSink, logger zerolog.Logger) *Watcher {
	return &Watcher{
		client:     client,
		sink:       sink,
		logger:     logger.With().Str("component", "downloads").Logger(),
		inProgress: make(map[string]struct{}),
	}
}

// Run performs one poll and returns the torrents that completed in it
func (w *Watcher) Run(ctx context.Context) []qbittorrent.Torrent {
	torrents, err := w.client.ListTorrents(ctx)
	if err != nil {
		w.logger.Debug().Err(err).Msg("Skipping poll, could not list torrents")
		return nil
	}
	if len(torrents) == 0 {
		return nil
	}

	byHash := make(map[string]qbittorrent.Torrent, len(torrents))
	still := make(map[string]struct{})
	for _, t := range torrents {
		byHash[t.Hash] = t
		if t.AmountLeft > 0 {
			still[t.Hash] = struct{}{}
		}
	}

	w.mu.Lock()
	previous := w.inProgress
	w.inProgress = still
	w.mu.Unlock()

	var finished []qbittorrent.Torrent
	for hash := range previous {
		t, ok := byHash[hash]
		if !ok || !t.IsFinished() {
			continue
		}
		finished = append(finished, t)
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].Hash < finished[j].Hash })

	for _, t := range finished {
		w.logger.Info().Str("torrent", t.Name).Str("hash", t.Hash).Msg("Download finished")
		if w.sink != nil {
			w.sink.EmitDownloadComplete(t)
		}
	}

	return finished
}

// InProgress returns the tracked hashes in sorted order
func (w *Watcher) InProgress() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	hashes := make([]string, 0, len(w.inProgress))
	for hash := range w.inProgress {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)
	return hashes
}
