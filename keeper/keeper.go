// Package keeper owns the qBittorrent session: it logs in, retrying until the
// client is reachable, and then arms the reaper and download loops, the ingest
// handler and the status routes.
package keeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/s0up4200/seedkeeper/downloads"
	"github.com/s0up4200/seedkeeper/ingest"
	"github.com/s0up4200/seedkeeper/notify"
	"github.com/s0up4200/seedkeeper/qbittorrent"
	"github.com/s0up4200/seedkeeper/reaper"
	"github.com/s0up4200/seedkeeper/server"
)

const (
	DefaultSeedInterval     = 5 * time.Minute
	DefaultDownloadInterval = 5 * time.Second
	DefaultLoginRetry       = 60 * time.Second
)

// Client is everything the keeper and its loops need from the download client
type Client interface {
	Connect(ctx context.Context) error
	ListTorrents(ctx context.Context) ([]qbittorrent.Torrent, error)
	DeleteTorrent(ctx context.Context, hash string) error
	AddTorrentFile(ctx context.Context, path, destinationDir string) error
	TransferSummary(ctx context.Context) (*qbittorrent.TransferSummary, error)
}

// EventSource delivers file added events
type EventSource interface {
	OnFileAdded(fn func(path string))
}

// Deps are the collaborators of the keeper. Events and Routes are optional.
type Deps struct {
	Client      Client
	Events      EventSource
	Completions downloads.CompletionSink
	Sink        notify.Sink
	Routes      server.RouteRegistrar
}

// Options configures the keeper
type Options struct {
	Reaper reaper.Options
	Ingest ingest.Options

	SeedInterval     time.Duration
	DownloadInterval time.Duration
	LoginRetry       time.Duration

	// Host, Port and Username only appear in connection error messages
	Host     string
	Port     int
	Username string

	Prefix string
}

// Keeper runs the session lifecycle
type Keeper struct {
	deps   Deps
	opts   Options
	logger zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	ready     chan struct{}
	done      chan struct{}
	err       error

	mu      sync.Mutex
	cron    *cron.Cron
	ingest  *ingest.Handler
	watcher *downloads.Watcher
	initial sync.WaitGroup
}

// New creates a keeper. Nothing happens until Start.
func New(deps Deps, opts Options, logger zerolog.Logger) *Keeper {
	if opts.SeedInterval <= 0 {
		opts.SeedInterval = DefaultSeedInterval
	}
	if opts.DownloadInterval <= 0 {
		opts.DownloadInterval = DefaultDownloadInterval
	}
	if opts.LoginRetry <= 0 {
		opts.LoginRetry = DefaultLoginRetry
	}
	if opts.Prefix == "" {
		opts.Prefix = server.DefaultPrefix
	}

	return &Keeper{
		deps:   deps,
		opts:   opts,
		logger: logger.With().Str("component", "keeper").Logger(),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start logs in and arms the loops in the background. It returns immediately.
func (k *Keeper) Start(ctx context.Context) {
	k.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		k.cancel = cancel
		go k.session(ctx)
	})
}

// Ready is closed once the loops are armed
func (k *Keeper) Ready() <-chan struct{} {
	return k.ready
}

// Done is closed when the session ends, either because login was given up
// or because the keeper was stopped
func (k *Keeper) Done() <-chan struct{} {
	return k.done
}

// Err returns why the session ended without arming the loops. Only valid
// after Done is closed.
func (k *Keeper) Err() error {
	select {
	case <-k.done:
		return k.err
	default:
		return nil
	}
}

// Watcher returns the download watcher once the loops are armed
func (k *Keeper) Watcher() *downloads.Watcher {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.watcher
}

// Stop stops scheduling new runs and waits for running ones
func (k *Keeper) Stop(ctx context.Context) error {
	var err error

	k.stopOnce.Do(func() {
		if k.cancel == nil {
			return
		}

		k.cancel()

		select {
		case <-k.done:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}

		// the session has ended, so arm either ran to completion or never will
		k.mu.Lock()
		c, handler := k.cron, k.ingest
		k.mu.Unlock()

		if c != nil {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
				err = ctx.Err()
			}
		}

		if handler != nil {
			if herr := handler.Close(ctx); herr != nil && err == nil {
				err = herr
			}
		}
	})

	return err
}

func (k *Keeper) session(ctx context.Context) {
	defer close(k.done)

	if err := k.login(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			k.logger.Error().Err(err).Msg("Giving up on qBittorrent session")
		}
		k.err = err
		return
	}
	if err := ctx.Err(); err != nil {
		k.err = err
		return
	}

	k.arm(ctx)
	close(k.ready)

	k.initial.Wait()
	<-ctx.Done()
}

// login retries until the client accepts the session. Rejected credentials
// and IP bans are not retried.
func (k *Keeper) login(ctx context.Context) error {
	return retry.Do(
		func() error {
			err := k.deps.Client.Connect(ctx)
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				return retry.Unrecoverable(ctx.Err())
			}

			if qbittorrent.IsBadCredentials(err) {
				k.notify(ctx, notify.CategoryError, fmt.Sprintf(
					"qBittorrent at %s:%d rejected the login for %q, not retrying: %v",
					k.opts.Host, k.opts.Port, k.opts.Username, err))
				return retry.Unrecoverable(err)
			}

			if qbittorrent.IsConnectionRefused(err) {
				k.notify(ctx, notify.CategoryError, fmt.Sprintf(
					"Could not connect to qBittorrent at %s:%d as %q, retrying in %s",
					k.opts.Host, k.opts.Port, k.opts.Username, k.opts.LoginRetry))
			} else {
				k.notify(ctx, notify.CategoryError, fmt.Sprintf(
					"Failed to log in to qBittorrent at %s:%d, retrying in %s: %v",
					k.opts.Host, k.opts.Port, k.opts.LoginRetry, err))
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(k.opts.LoginRetry),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			k.logger.Debug().Err(err).Uint("attempt", n+1).Dur("delay", k.opts.LoginRetry).Msg("Login failed")
		}),
	)
}

// arm wires every component that needs a live session. Called exactly once.
func (k *Keeper) arm(ctx context.Context) {
	k.logger.Info().Str("host", k.opts.Host).Int("port", k.opts.Port).Msg("Connected to qBittorrent")

	reap := reaper.New(k.deps.Client, k.deps.Sink, k.opts.Reaper, k.logger)
	watcher := downloads.NewWatcher(k.deps.Client, k.deps.Completions, k.logger)
	handler := ingest.New(k.deps.Client, k.deps.Sink, k.opts.Ingest, k.logger)

	clog := cronLogger{logger: k.logger.With().Str("component", "scheduler").Logger()}
	// Recover sits inside SkipIfStillRunning so a panic still releases the run slot
	chain := cron.NewChain(cron.SkipIfStillRunning(clog), cron.Recover(clog))
	c := cron.New(cron.WithLogger(clog))

	reapJob := chain.Then(cron.FuncJob(func() { reap.Run(ctx) }))
	watchJob := chain.Then(cron.FuncJob(func() { watcher.Run(ctx) }))

	c.Schedule(cron.Every(k.opts.SeedInterval), reapJob)
	c.Schedule(cron.Every(k.opts.DownloadInterval), watchJob)

	k.mu.Lock()
	k.cron = c
	k.ingest = handler
	k.watcher = watcher
	k.mu.Unlock()

	// first runs happen right away, the schedule takes over afterwards
	for _, job := range []cron.Job{reapJob, watchJob} {
		k.initial.Add(1)
		go func() {
			defer k.initial.Done()
			job.Run()
		}()
	}
	c.Start()

	if k.deps.Events != nil {
		k.deps.Events.OnFileAdded(handler.HandleFileAdded)
	}
	if k.deps.Routes != nil {
		server.NewStatus(k.deps.Client, k.logger).Register(k.deps.Routes, k.opts.Prefix)
	}

	k.logger.Info().
		Dur("seed_interval", k.opts.SeedInterval).
		Dur("download_interval", k.opts.DownloadInterval).
		Msg("Loops armed")
}

func (k *Keeper) notify(ctx context.Context, category notify.Category, text string) {
	if err := notify.Send(ctx, k.deps.Sink, category, text); err != nil {
		k.logger.Warn().Err(err).Msg("Failed to send notification")
	}
}
