package reaper

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/s0up4200/seedkeeper/pathutil"
	"github.com/s0up4200/seedkeeper/policy"
	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// ConsoleFormatter renders torrents and cycle results for the terminal
type ConsoleFormatter struct {
	policy policy.Policy
	keep   *policy.KeepFilter
	now    func() time.Time
}

// NewConsoleFormatter creates a formatter that annotates torrents with the
// reason p would give for removing them
func NewConsoleFormatter(p policy.Policy) *ConsoleFormatter {
	return &ConsoleFormatter{policy: p, now: time.Now}
}

// WithKeep makes the formatter report torrents the keep filter protects
// instead of listing them as due for removal
func (f *ConsoleFormatter) WithKeep(keep *policy.KeepFilter) *ConsoleFormatter {
	f.keep = keep
	return f
}

// FormatTorrentList formats torrents as a tree
func (f *ConsoleFormatter) FormatTorrentList(torrents []qbittorrent.Torrent) string {
	if len(torrents) == 0 {
		return "No torrents found"
	}

	var sb strings.Builder
	now := f.now()

	sb.WriteString("\nTorrent")
	if len(torrents) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(torrents))

	for i, t := range torrents {
		isLast := i == len(torrents)-1
		prefix := "\u251c"
		indent := "\u2502   "
		if isLast {
			prefix = "\u2570"
			indent = "    "
		}

		fmt.Fprintf(&sb, "%s\u2500\u2500 %s\n", prefix, t.Name)

		var parts []string
		if name := pathutil.SecondLevelDomain(t.Tracker); name != "" {
			parts = append(parts, "Tracker: "+name)
		}
		if t.Label != "" {
			parts = append(parts, "Label: "+t.Label)
		}
		if len(t.Tags) > 0 {
			parts = append(parts, "Tags: "+strings.Join(t.Tags, ", "))
		}
		if len(parts) > 0 {
			fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(parts, " | "))
		}

		fmt.Fprintf(&sb, "%sSize: %s | Progress: %.0f%% | %s\n", indent, humanize.Bytes(nonNegative(t.Size)), t.Progress*100, SeedInfo(t))

		if completed, ok := t.Completed(); ok {
			fmt.Fprintf(&sb, "%sCompleted: %s (%d days)\n", indent, completed.Format("2006-01-02"), policy.DaysSince(t.CompletionOn, now))
		}

		if reason := policy.Evaluate(t, f.policy, now); reason != policy.None {
			if kept, err := f.keep.Match(t, now); kept {
				if err != nil {
					fmt.Fprintf(&sb, "%sKept by filter (%v)\n", indent, err)
				} else {
					fmt.Fprintf(&sb, "%sKept by filter\n", indent)
				}
			} else {
				fmt.Fprintf(&sb, "%sEligible for removal: %s\n", indent, reason)
			}
		}

		if !isLast {
			sb.WriteString("\u2502\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatResult summarises a cycle
func (f *ConsoleFormatter) FormatResult(result Result, dryRun bool) string {
	if result.ListErr != nil {
		return fmt.Sprintf("Could not list torrents: %v", result.ListErr)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Checked %d torrents", result.Listed)
	if result.Kept > 0 {
		fmt.Fprintf(&sb, ", %d kept by filter", result.Kept)
	}
	sb.WriteString(".\n")

	if dryRun {
		if len(result.Planned) == 0 {
			sb.WriteString("Nothing would be removed.\n")
			return sb.String()
		}
		fmt.Fprintf(&sb, "Would remove %d:\n", len(result.Planned))
		for _, c := range result.Planned {
			fmt.Fprintf(&sb, "  \u2022 %s (%s)\n", c.Torrent.Name, c.Reason)
		}
		return sb.String()
	}

	for _, c := range result.Removed {
		fmt.Fprintf(&sb, "  \u2713 %s\n", RemovedMessage(c.Torrent, c.Reason))
	}
	for _, e := range result.Failed {
		fmt.Fprintf(&sb, "  \u2717 %s: %v\n", e.Name, e.Err)
	}
	if len(result.Removed) == 0 && len(result.Failed) == 0 {
		sb.WriteString("Nothing to remove.\n")
	}
	return sb.String()
}

func nonNegative(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}
