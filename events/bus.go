// Package events is the in-process bus that connects the file watcher, the
// download poller and whoever wants to hear about them.
package events

import (
	"sync"

	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// FileAddedFunc handles a new file on disk
type FileAddedFunc func(path string)

// DownloadCompleteFunc handles a torrent that just finished downloading
type DownloadCompleteFunc func(t qbittorrent.Torrent)

// Bus dispatches events synchronously to subscribers in subscription order
type Bus struct {
	mu               sync.RWMutex
	fileAdded        []FileAddedFunc
	downloadComplete []DownloadCompleteFunc
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// OnFileAdded subscribes fn to file added events
func (b *Bus) OnFileAdded(fn func(path string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fileAdded = append(b.fileAdded, fn)
}

// EmitFileAdded notifies every file added subscriber
func (b *Bus) EmitFileAdded(path string) {
	b.mu.RLock()
	subs := append([]FileAddedFunc(nil), b.fileAdded...)
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(path)
	}
}

// OnDownloadComplete subscribes fn to download complete events
func (b *Bus) OnDownloadComplete(fn func(t qbittorrent.Torrent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.downloadComplete = append(b.downloadComplete, fn)
}

// EmitDownloadComplete notifies every download complete subscriber
func (b *Bus) EmitDownloadComplete(t qbittorrent.Torrent) {
	b.mu.RLock()
	subs := append([]DownloadCompleteFunc(nil), b.downloadComplete...)
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(t)
	}
}
