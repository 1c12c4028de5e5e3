package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/seedkeeper/qbittorrent"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) int64 {
	return now.Add(-time.Duration(days) * 24 * time.Hour).Unix()
}

func TestEvaluate(t *testing.T) {
	p := Policy{
		RemovePublicTrackerWhenComplete: true,
		SeedDays:                        14,
		SeedRatio:                       2.0,
	}

	tests := []struct {
		name    string
		torrent qbittorrent.Torrent
		policy  Policy
		want    Reason
	}{
		{
			name: "still downloading ignores everything",
			torrent: qbittorrent.Torrent{
				Progress:     0.99,
				Ratio:        10,
				Label:        PublicLabel,
				CompletionOn: daysAgo(100),
			},
			policy: p,
			want:   None,
		},
		{
			name: "public tracker",
			torrent: qbittorrent.Torrent{
				Progress:     1,
				Ratio:        0.1,
				Label:        PublicLabel,
				CompletionOn: daysAgo(1),
			},
			policy: p,
			want:   PublicTracker,
		},
		{
			name: "public tracker disabled",
			torrent: qbittorrent.Torrent{
				Progress:     1,
				Ratio:        0.1,
				Label:        PublicLabel,
				CompletionOn: daysAgo(1),
			},
			policy: Policy{SeedDays: 14, SeedRatio: 2},
			want:   None,
		},
		{
			name: "public label without completion timestamp",
			torrent: qbittorrent.Torrent{
				Progress: 1,
				Ratio:    0.1,
				Label:    PublicLabel,
			},
			policy: p,
			want:   SeededDays,
		},
		{
			name: "public label without completion timestamp and tracker check only",
			torrent: qbittorrent.Torrent{
				Progress: 1,
				Ratio:    0.1,
				Label:    PublicLabel,
			},
			policy: Policy{RemovePublicTrackerWhenComplete: true, SeedDays: 1 << 30, SeedRatio: 2},
			want:   None,
		},
		{
			name: "no completion timestamp counts from the epoch with zero days",
			torrent: qbittorrent.Torrent{
				Progress: 1,
				Ratio:    0.1,
			},
			policy: Policy{SeedDays: 0, SeedRatio: 2},
			want:   SeededDays,
		},
		{
			name: "no completion timestamp counts from the epoch with two weeks",
			torrent: qbittorrent.Torrent{
				Progress: 1,
				Ratio:    0.1,
			},
			policy: Policy{SeedDays: 14, SeedRatio: 2},
			want:   SeededDays,
		},
		{
			name: "seeded long enough",
			torrent: qbittorrent.Torrent{
				Progress:     1,
				Ratio:        0.5,
				Label:        "movies",
				CompletionOn: daysAgo(14),
			},
			policy: p,
			want:   SeededDays,
		},
		{
			name: "days beat public tracker",
			torrent: qbittorrent.Torrent{
				Progress:     1,
				Ratio:        0.5,
				Label:        PublicLabel,
				CompletionOn: daysAgo(20),
			},
			policy: p,
			want:   SeededDays,
		},
		{
			name: "ratio wins over days",
			torrent: qbittorrent.Torrent{
				Progress:     1,
				Ratio:        2.0,
				CompletionOn: daysAgo(30),
			},
			policy: p,
			want:   SeededRatio,
		},
		{
			name: "ratio reached without completion timestamp",
			torrent: qbittorrent.Torrent{
				Progress: 1,
				Ratio:    3,
			},
			policy: p,
			want:   SeededRatio,
		},
		{
			name: "nothing reached",
			torrent: qbittorrent.Torrent{
				Progress:     1,
				Ratio:        1.99,
				Label:        "movies",
				CompletionOn: daysAgo(13),
			},
			policy: p,
			want:   None,
		},
		{
			name: "zero thresholds remove anything finished",
			torrent: qbittorrent.Torrent{
				Progress:     1,
				CompletionOn: daysAgo(0),
			},
			policy: Policy{},
			want:   SeededRatio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.torrent, tt.policy, now))
		})
	}
}

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, DaysSince(now.Unix(), now))
	assert.Equal(t, 3, DaysSince(daysAgo(3), now))
	assert.Equal(t, 2, DaysSince(now.Add(-71*time.Hour).Unix(), now))
	// clock skew: a completion slightly in the future is not negative
	assert.Equal(t, 0, DaysSince(now.Add(5*time.Minute).Unix(), now))
	assert.Equal(t, 1, DaysSince(now.Add(25*time.Hour).Unix(), now))
}

func TestReasonString(t *testing.T) {
	tests := []struct {
		reason   Reason
		expected string
	}{
		{None, "none"},
		{PublicTracker, "public_tracker"},
		{SeededDays, "seeded_days"},
		{SeededRatio, "seeded_ratio"},
		{Reason(99), "none"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.String())
		})
	}
}
