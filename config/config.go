package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/s0up4200/seedkeeper/policy"
)

// EnvPrefix prefixes environment overrides, e.g. SEEDKEEPER_QBITTORRENT_PASSWORD
const EnvPrefix = "SEEDKEEPER"

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		path, err := homedir.Expand(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if dir, err := homedir.Expand("~/.seedkeeper"); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("/etc/seedkeeper/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := expandPaths(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// qBittorrent defaults
	v.SetDefault("qbittorrent.host", "localhost")
	v.SetDefault("qbittorrent.port", 8080)
	v.SetDefault("qbittorrent.username", "admin")
	v.SetDefault("qbittorrent.password", "")
	v.SetDefault("qbittorrent.tls_skip_verify", false)
	v.SetDefault("qbittorrent.timeout", "30s")
	v.SetDefault("qbittorrent.basic_user", "")
	v.SetDefault("qbittorrent.basic_pass", "")

	// Seed defaults
	v.SetDefault("seed.days", 14)
	v.SetDefault("seed.ratio", 2.0)
	v.SetDefault("seed.remove_public_tracker_when_complete", true)
	v.SetDefault("seed.delete_files", false)
	v.SetDefault("seed.keep", "")
	v.SetDefault("seed.concurrency", 4)

	// Ingest defaults
	v.SetDefault("ingest.watch_paths", []string{})
	v.SetDefault("ingest.loaded_torrents_path", "")
	v.SetDefault("ingest.delay", "2s")
	v.SetDefault("ingest.workers", 2)

	// Schedule defaults
	v.SetDefault("schedule.seed_interval", "5m")
	v.SetDefault("schedule.download_interval", "5s")
	v.SetDefault("schedule.login_retry", "60s")

	// Server defaults
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.listen", "127.0.0.1:7475")
	v.SetDefault("server.prefix", "/qbittorrent")

	// Notification defaults
	v.SetDefault("notifications.pushbullet.enabled", false)
	v.SetDefault("notifications.pushbullet.api_key", "")
	v.SetDefault("notifications.pushbullet.device", "")

	// Safety defaults
	v.SetDefault("safety.dry_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// expandPaths resolves ~ in every configured path
func expandPaths(cfg *Config) error {
	for i, p := range cfg.Ingest.WatchPaths {
		expanded, err := homedir.Expand(p)
		if err != nil {
			return fmt.Errorf("failed to expand watch path %s: %w", p, err)
		}
		cfg.Ingest.WatchPaths[i] = expanded
	}

	expanded, err := homedir.Expand(cfg.Ingest.LoadedTorrentsPath)
	if err != nil {
		return fmt.Errorf("failed to expand loaded_torrents_path: %w", err)
	}
	cfg.Ingest.LoadedTorrentsPath = expanded
	return nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.QBittorrent.Host == "" {
		return fmt.Errorf("qbittorrent.host is required")
	}
	if cfg.QBittorrent.Port < 1 || cfg.QBittorrent.Port > 65535 {
		return fmt.Errorf("invalid qbittorrent.port: %d", cfg.QBittorrent.Port)
	}

	if cfg.Seed.Days < 0 {
		return fmt.Errorf("seed.days must not be negative")
	}
	if cfg.Seed.Ratio < 0 {
		return fmt.Errorf("seed.ratio must not be negative")
	}
	if _, err := policy.CompileKeep(cfg.Seed.Keep); err != nil {
		return fmt.Errorf("invalid seed.keep: %w", err)
	}

	if cfg.Schedule.SeedInterval <= 0 {
		return fmt.Errorf("schedule.seed_interval must be positive")
	}
	if cfg.Schedule.DownloadInterval <= 0 {
		return fmt.Errorf("schedule.download_interval must be positive")
	}
	if cfg.Schedule.LoginRetry <= 0 {
		return fmt.Errorf("schedule.login_retry must be positive")
	}

	if len(cfg.Ingest.WatchPaths) > 0 && cfg.Ingest.LoadedTorrentsPath == "" {
		return fmt.Errorf("ingest.loaded_torrents_path is required when watch_paths are set")
	}
	if cfg.Ingest.Delay < 0 {
		return fmt.Errorf("ingest.delay must not be negative")
	}

	if cfg.Server.Enabled && cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required when the server is enabled")
	}

	if cfg.Notifications.Pushbullet.Enabled && cfg.Notifications.Pushbullet.APIKey == "" {
		return fmt.Errorf("notifications.pushbullet.api_key is required when pushbullet is enabled")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
