package qbittorrent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
)

// Client wraps the qBittorrent API client
type Client struct {
	client      API
	logger      zerolog.Logger
	deleteFiles bool
}

// NewClient creates a new qBittorrent client. No request is made until Connect.
func NewClient(host string, port int, username, password string, logger zerolog.Logger, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	client := qbittorrent.NewClient(qbittorrent.Config{
		Host:          BaseURL(host, port),
		Username:      username,
		Password:      password,
		TLSSkipVerify: o.tlsSkipVerify,
		BasicUser:     o.basicUser,
		BasicPass:     o.basicPass,
		Timeout:       int(o.timeout.Seconds()),
	})

	return &Client{
		client:      client,
		logger:      logger.With().Str("component", "qbittorrent").Logger(),
		deleteFiles: o.deleteFiles,
	}
}

// NewClientWithAPI creates a client around an existing API implementation
func NewClientWithAPI(api API, logger zerolog.Logger, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		client:      api,
		logger:      logger,
		deleteFiles: o.deleteFiles,
	}
}

// BaseURL builds the WebUI address from host and port. Hosts that already
// carry a scheme are kept as they are.
func BaseURL(host string, port int) string {
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	if port > 0 && !hasPort(host) {
		host = host + ":" + strconv.Itoa(port)
	}
	return host
}

func hasPort(url string) bool {
	rest := url[strings.Index(url, "://")+3:]
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return strings.Contains(rest, ":")
}

// Connect logs in to qBittorrent. Retrying is left to the caller.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.logger.Debug().Msg("Successfully connected to qBittorrent")
	return nil
}

// ListTorrents retrieves all torrents from qBittorrent
func (c *Client) ListTorrents(ctx context.Context) ([]Torrent, error) {
	torrents, err := c.client.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get torrents: %w", err)
	}

	c.logger.Debug().Msgf("Retrieved %d torrents from qBittorrent", len(torrents))

	results := make([]Torrent, 0, len(torrents))
	for _, t := range torrents {
		results = append(results, convertTorrent(t))
	}

	return results, nil
}

// DeleteTorrent removes a single torrent
func (c *Client) DeleteTorrent(ctx context.Context, hash string) error {
	if err := c.client.DeleteTorrentsCtx(ctx, []string{hash}, c.deleteFiles); err != nil {
		return fmt.Errorf("failed to delete torrent %s: %w", hash, err)
	}

	c.logger.Debug().
		Str("hash", hash).
		Bool("delete_files", c.deleteFiles).
		Msg("Deleted torrent")
	return nil
}

// AddTorrentFile uploads a .torrent file and saves its content into destinationDir
func (c *Client) AddTorrentFile(ctx context.Context, path, destinationDir string) error {
	options := map[string]string{
		"autoTMM": "false",
	}
	if destinationDir != "" {
		options["savepath"] = destinationDir
	}

	if err := c.client.AddTorrentFromFileCtx(ctx, path, options); err != nil {
		return fmt.Errorf("failed to add torrent %s: %w", path, err)
	}

	c.logger.Debug().
		Str("path", path).
		Str("save_path", destinationDir).
		Msg("Added torrent file")
	return nil
}

// TransferSummary retrieves global transfer statistics
func (c *Client) TransferSummary(ctx context.Context) (*TransferSummary, error) {
	info, err := c.client.GetTransferInfoCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer info: %w", err)
	}
	if info == nil {
		return nil, ErrNoTransferInfo
	}

	return convertTransferInfo(info), nil
}
