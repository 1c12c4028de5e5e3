package qbittorrent

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAPI implements API for testing
type mockAPI struct {
	loginErr     error
	torrents     []qbittorrent.Torrent
	torrentsErr  error
	deleteErr    error
	addErr       error
	transferInfo *qbittorrent.TransferInfo
	transferErr  error

	// Track calls for verification
	deleted     []string
	deleteFiles bool
	addedPath   string
	addedOpts   map[string]string
}

func (m *mockAPI) LoginCtx(ctx context.Context) error {
	return m.loginErr
}

func (m *mockAPI) GetTorrentsCtx(ctx context.Context, o qbittorrent.TorrentFilterOptions) ([]qbittorrent.Torrent, error) {
	return m.torrents, m.torrentsErr
}

func (m *mockAPI) DeleteTorrentsCtx(ctx context.Context, hashes []string, deleteFiles bool) error {
	m.deleted = append(m.deleted, hashes...)
	m.deleteFiles = deleteFiles
	return m.deleteErr
}

func (m *mockAPI) AddTorrentFromFileCtx(ctx context.Context, filePath string, options map[string]string) error {
	m.addedPath = filePath
	m.addedOpts = options
	return m.addErr
}

func (m *mockAPI) GetTransferInfoCtx(ctx context.Context) (*qbittorrent.TransferInfo, error) {
	return m.transferInfo, m.transferErr
}

func TestClient_ListTorrents(t *testing.T) {
	api := &mockAPI{
		torrents: []qbittorrent.Torrent{
			{
				Hash:         "abc",
				Name:         "Some.Show.S01E01",
				Progress:     1,
				Ratio:        1.5,
				Category:     "public",
				Tags:         "tv, hd",
				CompletionOn: 1700000000,
				AmountLeft:   0,
				Tracker:      "http://tracker.example.com/announce",
				Uploaded:     1024,
				State:        qbittorrent.TorrentStateStalledUp,
			},
			{
				Hash:         "def",
				Progress:     0.2,
				CompletionOn: -1,
				AmountLeft:   500,
			},
		},
	}

	client := NewClientWithAPI(api, zerolog.Nop())
	torrents, err := client.ListTorrents(context.Background())
	require.NoError(t, err)
	require.Len(t, torrents, 2)

	first := torrents[0]
	assert.Equal(t, "abc", first.Hash)
	assert.Equal(t, "public", first.Label)
	assert.Equal(t, []string{"tv", "hd"}, first.Tags)
	assert.Equal(t, "stalledUP", first.State)
	assert.True(t, first.IsFinished())
	completed, ok := first.Completed()
	assert.True(t, ok)
	assert.Equal(t, int64(1700000000), completed.Unix())

	second := torrents[1]
	assert.Equal(t, int64(0), second.CompletionOn)
	_, ok = second.Completed()
	assert.False(t, ok)
	assert.False(t, second.IsFinished())
	assert.Nil(t, second.Tags)
}

func TestClient_ListTorrentsError(t *testing.T) {
	api := &mockAPI{torrentsErr: errors.New("boom")}

	client := NewClientWithAPI(api, zerolog.Nop())
	_, err := client.ListTorrents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get torrents")
}

func TestClient_DeleteTorrent(t *testing.T) {
	api := &mockAPI{}

	client := NewClientWithAPI(api, zerolog.Nop(), WithDeleteFiles(true))
	require.NoError(t, client.DeleteTorrent(context.Background(), "abc"))
	assert.Equal(t, []string{"abc"}, api.deleted)
	assert.True(t, api.deleteFiles)

	api.deleteErr = errors.New("nope")
	err := client.DeleteTorrent(context.Background(), "def")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "def")
}

func TestClient_AddTorrentFile(t *testing.T) {
	api := &mockAPI{}

	client := NewClientWithAPI(api, zerolog.Nop())
	require.NoError(t, client.AddTorrentFile(context.Background(), "/watch/a.torrent", "/watch"))
	assert.Equal(t, "/watch/a.torrent", api.addedPath)
	assert.Equal(t, "/watch", api.addedOpts["savepath"])
	assert.Equal(t, "false", api.addedOpts["autoTMM"])
}

func TestClient_TransferSummary(t *testing.T) {
	api := &mockAPI{
		transferInfo: &qbittorrent.TransferInfo{
			ConnectionStatus: "connected",
			DHTNodes:         300,
			DlInfoSpeed:      1000,
			UpInfoData:       42,
		},
	}

	client := NewClientWithAPI(api, zerolog.Nop())
	summary, err := client.TransferSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connected", summary.ConnectionStatus)
	assert.Equal(t, int64(300), summary.DHTNodes)
	assert.Equal(t, int64(1000), summary.DlInfoSpeed)
	assert.Equal(t, int64(42), summary.UpInfoData)

	api.transferInfo = nil
	_, err = client.TransferSummary(context.Background())
	assert.ErrorIs(t, err, ErrNoTransferInfo)
}

func TestClient_Connect(t *testing.T) {
	api := &mockAPI{loginErr: fmt.Errorf("dial tcp 127.0.0.1:8080: %w", syscall.ECONNREFUSED)}

	client := NewClientWithAPI(api, zerolog.Nop())
	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.True(t, IsConnectionRefused(err))
	assert.False(t, IsBadCredentials(err))

	api.loginErr = qbittorrent.ErrBadCredentials
	err = client.Connect(context.Background())
	assert.True(t, IsBadCredentials(err))
	assert.False(t, IsConnectionRefused(err))

	api.loginErr = nil
	assert.NoError(t, client.Connect(context.Background()))
}

func TestIsConnectionRefusedMessage(t *testing.T) {
	assert.True(t, IsConnectionRefused(errors.New("Post \"http://x/api/v2/auth/login\": dial tcp: connect: connection refused")))
	assert.False(t, IsConnectionRefused(errors.New("timeout")))
	assert.False(t, IsConnectionRefused(nil))
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{host: "localhost", port: 8080, want: "http://localhost:8080"},
		{host: "https://qbit.example.com", port: 443, want: "https://qbit.example.com:443"},
		{host: "http://127.0.0.1:9090", port: 8080, want: "http://127.0.0.1:9090"},
		{host: "qbit.lan", port: 0, want: "http://qbit.lan"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseURL(tt.host, tt.port))
		})
	}
}
