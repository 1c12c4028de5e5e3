package config

import (
	"time"

	"github.com/s0up4200/seedkeeper/policy"
)

// Config represents the complete configuration structure
type Config struct {
	QBittorrent   QBittorrentConfig   `mapstructure:"qbittorrent"`
	Seed          SeedConfig          `mapstructure:"seed"`
	Ingest        IngestConfig        `mapstructure:"ingest"`
	Schedule      ScheduleConfig      `mapstructure:"schedule"`
	Server        ServerConfig        `mapstructure:"server"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Safety        SafetyConfig        `mapstructure:"safety"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// QBittorrentConfig holds qBittorrent Web UI connection details
type QBittorrentConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	TLSSkipVerify bool          `mapstructure:"tls_skip_verify"`
	Timeout       time.Duration `mapstructure:"timeout"`
	BasicUser     string        `mapstructure:"basic_user"`
	BasicPass     string        `mapstructure:"basic_pass"`
}

// SeedConfig contains the removal thresholds
type SeedConfig struct {
	Days                            int     `mapstructure:"days"`
	Ratio                           float64 `mapstructure:"ratio"`
	RemovePublicTrackerWhenComplete bool    `mapstructure:"remove_public_tracker_when_complete"`
	DeleteFiles                     bool    `mapstructure:"delete_files"`
	// Keep is an expression; matching torrents are never removed
	Keep                            string  `mapstructure:"keep"`
	Concurrency                     int     `mapstructure:"concurrency"`
}

// Policy returns the thresholds as an evaluator policy
func (s SeedConfig) Policy() policy.Policy {
	return policy.Policy{
		RemovePublicTrackerWhenComplete: s.RemovePublicTrackerWhenComplete,
		SeedDays:                        s.Days,
		SeedRatio:                       s.Ratio,
	}
}

// IngestConfig contains watch folder settings
type IngestConfig struct {
	WatchPaths         []string      `mapstructure:"watch_paths"`
	LoadedTorrentsPath string        `mapstructure:"loaded_torrents_path"`
	Delay              time.Duration `mapstructure:"delay"`
	Workers            int           `mapstructure:"workers"`
}

// ScheduleConfig contains loop intervals
type ScheduleConfig struct {
	SeedInterval     time.Duration `mapstructure:"seed_interval"`
	DownloadInterval time.Duration `mapstructure:"download_interval"`
	LoginRetry       time.Duration `mapstructure:"login_retry"`
}

// ServerConfig contains the status endpoint settings
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Prefix  string `mapstructure:"prefix"`
}

// NotificationsConfig contains notification targets
type NotificationsConfig struct {
	Pushbullet PushbulletConfig `mapstructure:"pushbullet"`
}

// PushbulletConfig holds Pushbullet settings
type PushbulletConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Device  string `mapstructure:"device"`
}

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun bool `mapstructure:"dry_run"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
