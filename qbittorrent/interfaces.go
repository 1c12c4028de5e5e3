package qbittorrent

import (
	"context"

	"github.com/autobrr/go-qbittorrent"
)

// API defines the go-qbittorrent operations the client relies on
type API interface {
	LoginCtx(ctx context.Context) error
	GetTorrentsCtx(ctx context.Context, o qbittorrent.TorrentFilterOptions) ([]qbittorrent.Torrent, error)
	DeleteTorrentsCtx(ctx context.Context, hashes []string, deleteFiles bool) error
	AddTorrentFromFileCtx(ctx context.Context, filePath string, options map[string]string) error
	GetTransferInfoCtx(ctx context.Context) (*qbittorrent.TransferInfo, error)
}
