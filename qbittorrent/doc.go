// Package qbittorrent provides a client for interacting with the qBittorrent Web API.
//
// This package wraps the autobrr/go-qbittorrent library with the handful of
// calls seedkeeper needs and converts results into its own Torrent and
// TransferSummary types.
//
// # Features
//
//   - Explicit login so callers decide how to retry
//   - Torrent listing, deletion and upload of .torrent files
//   - Global transfer statistics
//   - Classification of connection-refused and bad-credential failures
//
// Every call is a fresh round trip; nothing is cached. go-qbittorrent
// re-authenticates on its own when the session cookie expires.
//
// # Usage
//
//	client := qbittorrent.NewClient("localhost", 8080, "admin", "adminadmin", logger)
//	if err := client.Connect(ctx); err != nil {
//	    if qbittorrent.IsConnectionRefused(err) {
//	        // try again later
//	    }
//	}
//
//	torrents, err := client.ListTorrents(ctx)
package qbittorrent
