package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/seedkeeper/events"
	"github.com/s0up4200/seedkeeper/fswatch"
	"github.com/s0up4200/seedkeeper/ingest"
	"github.com/s0up4200/seedkeeper/keeper"
	"github.com/s0up4200/seedkeeper/notify"
	"github.com/s0up4200/seedkeeper/policy"
	"github.com/s0up4200/seedkeeper/qbittorrent"
	"github.com/s0up4200/seedkeeper/reaper"
	"github.com/s0up4200/seedkeeper/server"
)

const shutdownTimeout = 30 * time.Second

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon",
	Long: `Log in to qBittorrent and keep running: remove torrents that have seeded
enough, report finished downloads, add torrent files from the watch folders
and serve the status endpoints.`,
	PreRunE: initializeApp,
	RunE:    runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keep, err := policy.CompileKeep(cfg.Seed.Keep)
	if err != nil {
		return fmt.Errorf("invalid keep expression: %w", err)
	}

	sink := newSink()
	bus := events.NewBus()
	bus.OnDownloadComplete(func(t qbittorrent.Torrent) {
		if err := notify.Send(ctx, sink, notify.CategoryInfo, "Finished downloading "+reaper.DisplayName(t.Name)); err != nil {
			logger.Warn().Err(err).Msg("Failed to send notification")
		}
	})

	var (
		router *server.Router
		routes server.RouteRegistrar
	)
	if cfg.Server.Enabled {
		router = server.NewRouter(logger)
		routes = router
	}

	if cfg.Safety.DryRun {
		logger.Warn().Msg("Dry run enabled, torrents will not be removed")
	}

	k := keeper.New(keeper.Deps{
		Client:      qbClient,
		Events:      bus,
		Completions: bus,
		Sink:        sink,
		Routes:      routes,
	}, keeper.Options{
		Reaper: reaper.Options{
			Policy:      cfg.Seed.Policy(),
			Keep:        keep,
			DryRun:      cfg.Safety.DryRun,
			Concurrency: cfg.Seed.Concurrency,
		},
		Ingest: ingest.Options{
			ArchiveDir: cfg.Ingest.LoadedTorrentsPath,
			Delay:      cfg.Ingest.Delay,
			Workers:    cfg.Ingest.Workers,
		},
		SeedInterval:     cfg.Schedule.SeedInterval,
		DownloadInterval: cfg.Schedule.DownloadInterval,
		LoginRetry:       cfg.Schedule.LoginRetry,
		Host:             cfg.QBittorrent.Host,
		Port:             cfg.QBittorrent.Port,
		Username:         cfg.QBittorrent.Username,
		Prefix:           cfg.Server.Prefix,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	k.Start(gctx)

	g.Go(func() error {
		select {
		case <-k.Done():
			if err := k.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("qBittorrent session ended: %w", err)
			}
		case <-gctx.Done():
		}
		return nil
	})

	if router != nil {
		g.Go(func() error {
			// routes are registered on login, serve once they exist
			select {
			case <-k.Ready():
			case <-gctx.Done():
				return nil
			}
			return server.New(cfg.Server.Listen, router.Handler(), logger).Run(gctx)
		})
	}

	if len(cfg.Ingest.WatchPaths) > 0 {
		g.Go(func() error {
			select {
			case <-k.Ready():
			case <-gctx.Done():
				return nil
			}
			return fswatch.New(cfg.Ingest.WatchPaths, bus, logger).Run(gctx)
		})
	}

	logger.Info().Str("version", version).Msg("seedkeeper started")
	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := k.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Shutdown did not complete cleanly")
	}

	logger.Info().Msg("seedkeeper stopped")
	return runErr
}
