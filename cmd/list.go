package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/seedkeeper/pathutil"
	"github.com/s0up4200/seedkeeper/policy"
	"github.com/s0up4200/seedkeeper/qbittorrent"
	"github.com/s0up4200/seedkeeper/reaper"
)

var listTracker string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List torrents and whether they are due for removal",
	Long: `List every torrent in qBittorrent with its tracker, size, seeding summary
and the reason it would be removed on the next reaper cycle, if any.`,
	PreRunE: initializeApp,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVarP(&listTracker, "tracker", "t", "", "only show torrents from this tracker name")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	keep, err := policy.CompileKeep(cfg.Seed.Keep)
	if err != nil {
		return fmt.Errorf("invalid keep expression: %w", err)
	}

	if err := qbClient.Connect(ctx); err != nil {
		return err
	}

	torrents, err := qbClient.ListTorrents(ctx)
	if err != nil {
		return err
	}

	if listTracker != "" {
		filtered := torrents[:0]
		for _, t := range torrents {
			if strings.EqualFold(pathutil.SecondLevelDomain(t.Tracker), listTracker) {
				filtered = append(filtered, t)
			}
		}
		torrents = filtered
	}

	sort.Slice(torrents, func(i, j int) bool {
		return strings.ToLower(torrents[i].Name) < strings.ToLower(torrents[j].Name)
	})

	fmt.Print(formatTorrents(torrents, keep))
	return nil
}

func formatTorrents(torrents []qbittorrent.Torrent, keep *policy.KeepFilter) string {
	return reaper.NewConsoleFormatter(cfg.Seed.Policy()).WithKeep(keep).FormatTorrentList(torrents)
}
