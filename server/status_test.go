package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/seedkeeper/qbittorrent"
)

type mockStatusClient struct {
	torrents []qbittorrent.Torrent
	summary  *qbittorrent.TransferSummary
	err      error
}

func (m *mockStatusClient) ListTorrents(ctx context.Context) ([]qbittorrent.Torrent, error) {
	return m.torrents, m.err
}

func (m *mockStatusClient) TransferSummary(ctx context.Context) (*qbittorrent.TransferSummary, error) {
	return m.summary, m.err
}

func newTestHandler(client StatusClient) http.Handler {
	router := NewRouter(zerolog.Nop())
	NewStatus(client, zerolog.Nop()).Register(router, DefaultPrefix)
	return router.Handler()
}

func TestList(t *testing.T) {
	client := &mockStatusClient{torrents: []qbittorrent.Torrent{
		{Hash: "a", Name: "A", Tracker: "http://tracker.example.com:6969/announce"},
		{Hash: "b", Name: "B", Tracker: "udp://open.tracker.co.uk:1337"},
	}}

	rec := httptest.NewRecorder()
	newTestHandler(client).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qbittorrent/list", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0]["hash"])
	assert.Equal(t, "example", entries[0]["trackerName"])
	assert.Equal(t, "tracker", entries[1]["trackerName"])
}

func TestListEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&mockStatusClient{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qbittorrent/list", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestStatusFailures(t *testing.T) {
	client := &mockStatusClient{err: errors.New("forbidden")}
	handler := newTestHandler(client)

	for _, path := range []string{"/qbittorrent/list", "/qbittorrent/transferinfo"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestTransferInfo(t *testing.T) {
	client := &mockStatusClient{summary: &qbittorrent.TransferSummary{
		ConnectionStatus: "connected",
		DHTNodes:         350,
		DlInfoSpeed:      1024,
		UpInfoData:       4096,
	}}

	rec := httptest.NewRecorder()
	newTestHandler(client).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qbittorrent/transferinfo", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "connected", got["connection_status"])
	assert.EqualValues(t, 350, got["dht_nodes"])
	assert.EqualValues(t, 1024, got["dl_info_speed"])
	assert.EqualValues(t, 4096, got["up_info_data"])
}

func TestRoutesAreReadOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&mockStatusClient{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/qbittorrent/list", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRegisterPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
	}{
		{"/qbittorrent", "/qbittorrent/list"},
		{"qbittorrent/", "/qbittorrent/list"},
		{"", "/list"},
		{"/", "/list"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			router := NewRouter(zerolog.Nop())
			NewStatus(&mockStatusClient{}, zerolog.Nop()).Register(router, tt.prefix)

			rec := httptest.NewRecorder()
			router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRecoversFromPanic(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	router.RegisterGet("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServerShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(ln.Addr().String(), newTestHandler(&mockStatusClient{}), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/qbittorrent/list")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
