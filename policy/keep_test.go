package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/seedkeeper/qbittorrent"
)

func TestCompileKeep(t *testing.T) {
	t.Run("empty expression gives nil filter", func(t *testing.T) {
		f, err := CompileKeep("   ")
		require.NoError(t, err)
		assert.Nil(t, f)

		keep, err := f.Match(qbittorrent.Torrent{Name: "x"}, now)
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := CompileKeep("Ratio >")
		assert.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := CompileKeep("Bogus == 1")
		assert.Error(t, err)
	})

	t.Run("non bool expression", func(t *testing.T) {
		_, err := CompileKeep("Ratio + 1")
		assert.Error(t, err)
	})
}

func TestKeepFilterMatch(t *testing.T) {
	torrent := qbittorrent.Torrent{
		Name:         "Some.Linux.ISO",
		Label:        "linux",
		Tags:         []string{"Keep", "iso"},
		Ratio:        0.4,
		Tracker:      "https://tracker.example.co.uk:443/announce",
		CompletionOn: daysAgo(10),
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"tag match ignores case", `HasTag("keep")`, true},
		{"tag missing", `HasTag("archive")`, false},
		{"tracker name", `TrackerName() == "example"`, true},
		{"label and ratio", `Label == "linux" && Ratio < 1`, true},
		{"seeding days", `SeedingDays() >= 10`, true},
		{"seeding days too few", `SeedingDays() > 10`, false},
		{"name contains", `Name contains "Linux"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileKeep(tt.expr)
			require.NoError(t, err)
			require.NotNil(t, f)
			assert.Equal(t, tt.expr, f.String())

			keep, err := f.Match(torrent, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keep)
		})
	}
}

func TestKeepEnvSeedingDaysWithoutCompletion(t *testing.T) {
	env := NewKeepEnv(qbittorrent.Torrent{}, now)
	assert.Equal(t, -1, env.SeedingDays())
}
