// Package reaper removes torrents that have seeded enough.
//
// One call to Run is one cycle: list, evaluate, delete. Scheduling cycles is
// left to the caller.
package reaper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/seedkeeper/notify"
	"github.com/s0up4200/seedkeeper/policy"
	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// DefaultConcurrency is the number of deletes in flight per cycle
const DefaultConcurrency = 4

// Client is the part of the download client the reaper needs
type Client interface {
	ListTorrents(ctx context.Context) ([]qbittorrent.Torrent, error)
	DeleteTorrent(ctx context.Context, hash string) error
}

// Options configures the reaper
type Options struct {
	Policy      policy.Policy
	Keep        *policy.KeepFilter
	DryRun      bool
	Concurrency int
	// Now defaults to time.Now
	Now         func() time.Time
}

// Candidate is a torrent the evaluator picked for removal
type Candidate struct {
	Torrent qbittorrent.Torrent
	Reason  policy.Reason
}

// DeleteError records a failed removal
type DeleteError struct {
	Hash string
	Name string
	Err  error
}

// Result describes one cycle
type Result struct {
	Listed  int
	Kept    int
	Planned []Candidate
	Removed []Candidate
	Failed  []DeleteError
	ListErr error
}

// Reaper evaluates and removes torrents
type Reaper struct {
	client Client
	sink   notify.Sink
	opts   Options
	logger zerolog.Logger
}

// New creates a reaper
func New(client Client, sink notify.Sink, opts Options, logger zerolog.Logger) *Reaper {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Reaper{
		client: client,
		sink:   sink,
		opts:   opts,
		logger: logger.With().Str("component", "reaper").Logger(),
	}
}

// Candidates evaluates every torrent and returns those eligible for removal.
// The second return value counts torrents spared by the keep filter.
func (r *Reaper) Candidates(torrents []qbittorrent.Torrent) ([]Candidate, int) {
	now := r.opts.Now()

	var (
		candidates []Candidate
		kept       int
	)
	for _, t := range torrents {
		reason := policy.Evaluate(t, r.opts.Policy, now)
		if reason == policy.None {
			continue
		}

		keep, err := r.opts.Keep.Match(t, now)
		if err != nil {
			r.logger.Warn().Err(err).Str("torrent", t.Name).Msg("Keep expression failed, keeping torrent")
		}
		if keep {
			kept++
			r.logger.Debug().Str("torrent", t.Name).Str("reason", reason.String()).Msg("Kept by filter")
			continue
		}

		candidates = append(candidates, Candidate{Torrent: t, Reason: reason})
	}
	return candidates, kept
}

// Run performs one cycle. A failed listing skips the cycle.
func (r *Reaper) Run(ctx context.Context) Result {
	logger := r.logger.With().Str("cycle", uuid.NewString()).Logger()

	torrents, err := r.client.ListTorrents(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Skipping cycle, could not list torrents")
		return Result{ListErr: err}
	}

	candidates, kept := r.Candidates(torrents)
	result := Result{
		Listed:  len(torrents),
		Kept:    kept,
		Planned: candidates,
	}

	if len(candidates) == 0 {
		logger.Debug().Int("torrents", len(torrents)).Msg("Nothing to remove")
		return result
	}

	if r.opts.DryRun {
		for _, c := range candidates {
			logger.Info().
				Str("torrent", c.Torrent.Name).
				Str("reason", c.Reason.String()).
				Msg("[DRY RUN] Would remove torrent")
		}
		return result
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	var mu sync.Mutex
	for _, c := range candidates {
		g.Go(func() error {
			err := r.client.DeleteTorrent(gctx, c.Torrent.Hash)

			mu.Lock()
			if err != nil {
				result.Failed = append(result.Failed, DeleteError{Hash: c.Torrent.Hash, Name: c.Torrent.Name, Err: err})
			} else {
				result.Removed = append(result.Removed, c)
			}
			mu.Unlock()

			if err != nil {
				logger.Error().Err(err).Str("torrent", c.Torrent.Name).Msg("Failed to remove torrent")
				r.notify(ctx, notify.CategoryError, FailedMessage(c.Torrent))
				return nil
			}

			logger.Info().
				Str("torrent", c.Torrent.Name).
				Str("reason", c.Reason.String()).
				Float64("ratio", c.Torrent.Ratio).
				Msg("Removed torrent")
			r.notify(ctx, notify.CategoryRemove, RemovedMessage(c.Torrent, c.Reason))
			return nil // keep going on individual errors
		})
	}
	_ = g.Wait()

	logger.Info().
		Int("removed", len(result.Removed)).
		Int("failed", len(result.Failed)).
		Int("kept", kept).
		Msg("Reaper cycle finished")

	return result
}

func (r *Reaper) notify(ctx context.Context, category notify.Category, text string) {
	if err := notify.Send(ctx, r.sink, category, text); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to send notification")
	}
}
