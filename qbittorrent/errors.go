package qbittorrent

import (
	"errors"
	"strings"
	"syscall"

	"github.com/autobrr/go-qbittorrent"
)

// Common errors returned by the qBittorrent client.
var (
	// ErrConnectionFailed is returned when a session cannot be established.
	ErrConnectionFailed = errors.New("connection to qBittorrent failed")

	// ErrNoTransferInfo is returned when qBittorrent answers without transfer data.
	ErrNoTransferInfo = errors.New("no transfer info returned")
)

// IsConnectionRefused reports whether err was caused by nothing listening on
// the configured host and port.
func IsConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	// go-qbittorrent does not always keep the syscall error in the chain
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// IsBadCredentials reports whether qBittorrent rejected the login itself.
// Retrying these only risks an IP ban.
func IsBadCredentials(err error) bool {
	return errors.Is(err, qbittorrent.ErrBadCredentials) || errors.Is(err, qbittorrent.ErrIPBanned)
}
