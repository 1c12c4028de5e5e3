package reaper

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/s0up4200/seedkeeper/policy"
	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// DisplayName turns a torrent name into something readable:
// "Some.Show.S01.torrent" becomes "Some Show S01".
func DisplayName(name string) string {
	name = strings.TrimSuffix(name, ".torrent")
	return strings.ReplaceAll(name, ".", " ")
}

// SeedInfo summarises how much a torrent gave back
func SeedInfo(t qbittorrent.Torrent) string {
	return fmt.Sprintf("[UL: %s RATIO: %.2f]", humanize.Bytes(nonNegative(t.Uploaded)), t.Ratio)
}

// RemovedMessage builds the notification text for a successful removal
func RemovedMessage(t qbittorrent.Torrent, reason policy.Reason) string {
	name := DisplayName(t.Name)

	switch reason {
	case policy.PublicTracker:
		return fmt.Sprintf("Removed %s because it was on a public tracker.", name)
	case policy.SeededDays:
		return fmt.Sprintf("Removed %s because it has been seeded long enough. %s", name, SeedInfo(t))
	case policy.SeededRatio:
		return fmt.Sprintf("Removed %s because the ratio was enough. %s", name, SeedInfo(t))
	default:
		return fmt.Sprintf("Removed %s. %s", name, SeedInfo(t))
	}
}

// FailedMessage builds the notification text for a failed removal
func FailedMessage(t qbittorrent.Torrent) string {
	return fmt.Sprintf("Error removing %s", t.Name)
}
