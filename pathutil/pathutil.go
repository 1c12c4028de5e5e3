// Package pathutil holds the small string helpers used to route torrent files
// and label trackers. Paths are treated as plain strings so that Windows paths
// reported by a remote client are handled the same way on every platform.
package pathutil

import "strings"

const torrentExtension = ".torrent"

// ContainingDirectory returns the part of path before its last separator.
// Backslashes take precedence over forward slashes. A path without any
// separator is returned unchanged.
func ContainingDirectory(path string) string {
	if i := strings.LastIndex(path, `\`); i >= 0 {
		return path[:i]
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}

// FileName returns the last element of path, accepting either separator.
func FileName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// IsTorrentFile reports whether path names a .torrent file (case-sensitive).
func IsTorrentFile(path string) bool {
	return strings.HasSuffix(path, torrentExtension)
}

// Hostname extracts the host part of a tracker URL without scheme, path,
// port or query.
func Hostname(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "//"); i >= 0 {
		host = host[i+2:]
	}
	host = firstSegment(host, "/")
	host = firstSegment(host, ":")
	return firstSegment(host, "?")
}

// SecondLevelDomain returns the registrable name of a tracker URL without its
// suffix, e.g. "example" for http://tracker.example.com:6969/announce.
//
// This is a best-effort heuristic rather than a public suffix lookup. When the
// last two labels are both two characters long, as in co.uk, one more label is
// kept before truncating. Suffixes like com.au are not recognised.
func SecondLevelDomain(rawURL string) string {
	domain := Hostname(rawURL)

	labels := strings.Split(domain, ".")
	if n := len(labels); n > 2 {
		domain = labels[n-2] + "." + labels[n-1]
		if len(labels[n-2]) == 2 && len(labels[n-1]) == 2 {
			domain = labels[n-3] + "." + domain
		}
	}

	return firstSegment(domain, ".")
}

func firstSegment(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}
