package qbittorrent

import (
	"strings"
	"time"

	"github.com/autobrr/go-qbittorrent"
)

// Torrent is the subset of qBittorrent torrent state seedkeeper works with
type Torrent struct {
	Hash         string   `json:"hash"`
	Name         string   `json:"name"`
	Progress     float64  `json:"progress"`
	Ratio        float64  `json:"ratio"`
	Label        string   `json:"label"`
	Tags         []string `json:"tags"`
	CompletionOn int64    `json:"completion_on"`
	AmountLeft   int64    `json:"amount_left"`
	Tracker      string   `json:"tracker"`
	Uploaded     int64    `json:"uploaded"`
	Downloaded   int64    `json:"downloaded"`
	Size         int64    `json:"size"`
	State        string   `json:"state"`
	SavePath     string   `json:"save_path"`
	AddedOn      int64    `json:"added_on"`
}

// Completed returns the completion time, or false if the torrent never completed
func (t Torrent) Completed() (time.Time, bool) {
	if t.CompletionOn <= 0 {
		return time.Time{}, false
	}
	return time.Unix(t.CompletionOn, 0), true
}

// IsFinished reports whether there is nothing left to download
func (t Torrent) IsFinished() bool {
	return t.AmountLeft == 0
}

// HasTag checks the torrent tags case-insensitively
func (t Torrent) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// TransferSummary mirrors qBittorrent's global transfer info
type TransferSummary struct {
	ConnectionStatus string `json:"connection_status"`
	DHTNodes         int64  `json:"dht_nodes"`
	DlInfoData       int64  `json:"dl_info_data"`
	DlInfoSpeed      int64  `json:"dl_info_speed"`
	DlRateLimit      int64  `json:"dl_rate_limit"`
	UpInfoData       int64  `json:"up_info_data"`
	UpInfoSpeed      int64  `json:"up_info_speed"`
	UpRateLimit      int64  `json:"up_rate_limit"`
}

func convertTorrent(t qbittorrent.Torrent) Torrent {
	completion := t.CompletionOn
	if completion < 0 {
		completion = 0
	}

	return Torrent{
		Hash:         t.Hash,
		Name:         t.Name,
		Progress:     t.Progress,
		Ratio:        t.Ratio,
		Label:        t.Category,
		Tags:         splitTags(t.Tags),
		CompletionOn: completion,
		AmountLeft:   t.AmountLeft,
		Tracker:      t.Tracker,
		Uploaded:     t.Uploaded,
		Downloaded:   t.Downloaded,
		Size:         t.Size,
		State:        string(t.State),
		SavePath:     t.SavePath,
		AddedOn:      t.AddedOn,
	}
}

func convertTransferInfo(info *qbittorrent.TransferInfo) *TransferSummary {
	return &TransferSummary{
		ConnectionStatus: string(info.ConnectionStatus),
		DHTNodes:         info.DHTNodes,
		DlInfoData:       info.DlInfoData,
		DlInfoSpeed:      info.DlInfoSpeed,
		DlRateLimit:      info.DlRateLimit,
		UpInfoData:       info.UpInfoData,
		UpInfoSpeed:      info.UpInfoSpeed,
		UpRateLimit:      info.UpRateLimit,
	}
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}

	parts := strings.Split(tags, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
