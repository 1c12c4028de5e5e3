// Package policy decides whether a finished torrent has seeded enough to be
// removed from the download client.
package policy

import (
	"math"
	"time"

	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// PublicLabel is the category that marks torrents from public trackers
const PublicLabel = "public"

const msPerDay = 24 * 60 * 60 * 1000

// Reason explains why a torrent is eligible for removal
type Reason int

const (
	// None means the torrent stays
	None Reason = iota
	// PublicTracker means the torrent came from a public tracker and finished
	PublicTracker
	// SeededDays means the torrent seeded for the configured number of days
	SeededDays
	// SeededRatio means the torrent reached the configured ratio
	SeededRatio
)

// String returns the string representation of the reason
func (r Reason) String() string {
	switch r {
	case PublicTracker:
		return "public_tracker"
	case SeededDays:
		return "seeded_days"
	case SeededRatio:
		return "seeded_ratio"
	default:
		return "none"
	}
}

// Policy holds the seeding thresholds
type Policy struct {
	RemovePublicTrackerWhenComplete bool
	SeedDays                        int
	SeedRatio                       float64
}

// Evaluate returns the removal reason for a torrent.
//
// Torrents that are still downloading are never removed. For finished torrents
// the public tracker, seed days and seed ratio checks run in that order and the
// last one that holds wins. Only the public tracker check needs a completion
// timestamp; without one the seed days are counted from the unix epoch.
func Evaluate(t qbittorrent.Torrent, p Policy, now time.Time) Reason {
	reason := None
	if t.Progress < 1 {
		return reason
	}

	_, completed := t.Completed()

	if t.Label == PublicLabel && p.RemovePublicTrackerWhenComplete && completed {
		reason = PublicTracker
	}

	if DaysSince(t.CompletionOn, now) >= p.SeedDays {
		reason = SeededDays
	}

	if t.Ratio >= p.SeedRatio {
		reason = SeededRatio
	}

	return reason
}

// DaysSince returns the number of whole days between a unix timestamp and now.
// The distance is absolute so a timestamp slightly in the future yields zero.
func DaysSince(unixSeconds int64, now time.Time) int {
	diff := math.Abs(float64(now.UnixMilli() - unixSeconds*1000))
	return int(math.Floor(diff / msPerDay))
}
