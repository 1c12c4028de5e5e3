package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/seedkeeper/config"
	"github.com/s0up4200/seedkeeper/notify"
	"github.com/s0up4200/seedkeeper/qbittorrent"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	qbClient *qbittorrent.Client

	// Command flags
	dryRun bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "seedkeeper",
	Short: "Keeps a qBittorrent instance tidy",
	Long: `seedkeeper adds torrent files dropped into watch folders to qBittorrent,
removes torrents once they have seeded long enough and tells you when
downloads finish.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "log removals instead of performing them")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reapCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp loads the configuration and creates the qBittorrent client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	// Override dry-run from command line if specified
	if cmd.Flags().Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}

	qbClient = newQBittorrentClient(cfg.QBittorrent, cfg.Seed)
	return nil
}

func newQBittorrentClient(qb config.QBittorrentConfig, seed config.SeedConfig) *qbittorrent.Client {
	opts := []qbittorrent.Option{
		qbittorrent.WithDeleteFiles(seed.DeleteFiles),
	}
	if qb.Timeout > 0 {
		opts = append(opts, qbittorrent.WithTimeout(qb.Timeout))
	}
	if qb.TLSSkipVerify {
		opts = append(opts, qbittorrent.WithInsecureSkipVerify())
	}
	if qb.BasicUser != "" {
		opts = append(opts, qbittorrent.WithBasicAuth(qb.BasicUser, qb.BasicPass))
	}

	return qbittorrent.NewClient(qb.Host, qb.Port, qb.Username, qb.Password, logger, opts...)
}

// newSink builds the notification sink from config. Log output is always on.
func newSink() notify.Sink {
	sinks := notify.Multi{notify.NewLogSink(logger)}

	pb := cfg.Notifications.Pushbullet
	if pb.Enabled {
		sinks = append(sinks, notify.NewPushbulletSink(pb.APIKey, pb.Device, logger))
	}
	return sinks
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
