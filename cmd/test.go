package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/s0up4200/seedkeeper/notify"
	"github.com/s0up4200/seedkeeper/qbittorrent"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:     "test",
	Short:   "Test connection to qBittorrent",
	Long:    `Log in to qBittorrent, show the transfer summary and check configured notification targets.`,
	PreRunE: initializeApp,
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("Testing connection to qBittorrent at %s...\n", qbittorrent.BaseURL(cfg.QBittorrent.Host, cfg.QBittorrent.Port))

	if err := qbClient.Connect(ctx); err != nil {
		return err
	}
	fmt.Println("✓ Connection successful!")

	torrents, err := qbClient.ListTorrents(ctx)
	if err != nil {
		return fmt.Errorf("failed to get torrents: %w", err)
	}

	info, err := qbClient.TransferSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to get transfer info: %w", err)
	}

	fmt.Printf("\nqBittorrent Statistics:\n")
	fmt.Printf("- Connection status: %s\n", info.ConnectionStatus)
	fmt.Printf("- Total torrents: %d\n", len(torrents))
	fmt.Printf("- DHT nodes: %d\n", info.DHTNodes)
	fmt.Printf("- Downloaded this session: %s (%s/s)\n", humanize.Bytes(uint64(max(info.DlInfoData, 0))), humanize.Bytes(uint64(max(info.DlInfoSpeed, 0))))
	fmt.Printf("- Uploaded this session: %s (%s/s)\n", humanize.Bytes(uint64(max(info.UpInfoData, 0))), humanize.Bytes(uint64(max(info.UpInfoSpeed, 0))))

	pb := cfg.Notifications.Pushbullet
	if pb.Enabled {
		fmt.Printf("\nTesting Pushbullet...\n")
		if err := notify.NewPushbulletSink(pb.APIKey, pb.Device, logger).Test(); err != nil {
			return err
		}
		fmt.Println("✓ Pushbullet connection successful!")
	} else {
		fmt.Println("\nPushbullet notifications: Disabled")
	}

	return nil
}
