package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/seedkeeper/pathutil"
	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// DefaultPrefix is where the status routes live
const DefaultPrefix = "/qbittorrent"

// StatusClient is the part of the download client the endpoints read from
type StatusClient interface {
	ListTorrents(ctx context.Context) ([]qbittorrent.Torrent, error)
	TransferSummary(ctx context.Context) (*qbittorrent.TransferSummary, error)
}

// TorrentEntry is a torrent as returned by the list endpoint
type TorrentEntry struct {
	qbittorrent.Torrent
	TrackerName string `json:"trackerName"`
}

// Status serves the torrent list and transfer info
type Status struct {
	client StatusClient
	logger zerolog.Logger
}

// NewStatus creates the status handlers
func NewStatus(client StatusClient, logger zerolog.Logger) *Status {
	return &Status{
		client: client,
		logger: logger.With().Str("component", "status").Logger(),
	}
}

// Register adds the status routes under prefix
func (s *Status) Register(r RouteRegistrar, prefix string) {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	r.RegisterGet(prefix+"/list", s.List)
	r.RegisterGet(prefix+"/transferinfo", s.TransferInfo)
}

// List responds with every torrent and its tracker name. Client failures
// yield 400 with an empty body.
func (s *Status) List(w http.ResponseWriter, r *http.Request) {
	torrents, err := s.client.ListTorrents(r.Context())
	if err != nil {
		s.logger.Debug().Err(err).Msg("List failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	entries := make([]TorrentEntry, 0, len(torrents))
	for _, t := range torrents {
		entries = append(entries, TorrentEntry{
			Torrent:     t,
			TrackerName: pathutil.SecondLevelDomain(t.Tracker),
		})
	}
	s.writeJSON(w, entries)
}

// TransferInfo responds with the session transfer summary
func (s *Status) TransferInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.client.TransferSummary(r.Context())
	if err != nil {
		s.logger.Debug().Err(err).Msg("Transfer info failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.writeJSON(w, info)
}

func (s *Status) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}
