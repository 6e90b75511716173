package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardpulse/boardpulse/internal/api"
	"github.com/boardpulse/boardpulse/internal/archive"
	"github.com/boardpulse/boardpulse/internal/config"
	"github.com/boardpulse/boardpulse/internal/feed"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ BoardPulse Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and archive status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 BoardPulse Status")
		fmt.Printf("Version: %s\n", version)

		// Check config
		configPath, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults in effect)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:  ✗ Unreadable: %v\n", err)
			return
		}
		fmt.Printf("Server:  %s (board %s)\n", cfg.API.BaseURL, cfg.API.Board)

		// Reachability
		client := api.New(cfg.API.BaseURL, cfg.API.Board, cfg.API.Token)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err == nil {
			fmt.Println("Link:    ✓ Reachable")
		} else {
			fmt.Printf("Link:    ✗ %v\n", err)
		}

		// Local archive
		if arch, err := archive.Open(cfg.Paths.ArchivePath, cfg.API.Board); err == nil {
			if n, err := arch.Count(feed.SurfaceActivity); err == nil {
				fmt.Printf("Archive: ✓ %d activity items (%s)\n", n, cfg.Paths.ArchivePath)
			}
			arch.Close()
		} else {
			fmt.Printf("Archive: ✗ %v\n", err)
		}

		if cfg.Kafka.Enabled {
			fmt.Printf("Kafka:   ✓ Enabled (%s)\n", cfg.Kafka.Brokers)
		} else {
			fmt.Println("Kafka:   ✗ Disabled")
		}
		if cfg.Slack.Token != "" && cfg.Slack.Channel != "" {
			fmt.Println("Slack:   ✓ Enabled (" + cfg.Slack.Channel + ")")
		} else {
			fmt.Println("Slack:   ✗ Disabled")
		}
	},
}
