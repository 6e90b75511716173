package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardpulse/boardpulse/internal/api"
	"github.com/boardpulse/boardpulse/internal/archive"
	"github.com/boardpulse/boardpulse/internal/config"
	"github.com/boardpulse/boardpulse/internal/feed"
)

var (
	historyLimit int
	historyLocal bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent board activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if historyLocal {
			return printLocalHistory(cfg)
		}
		return printServerHistory(cfg)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 25, "maximum items to show")
	historyCmd.Flags().BoolVar(&historyLocal, "local", false, "read from the local archive instead of the server")
}

func printLocalHistory(cfg *config.Config) error {
	arch, err := archive.Open(cfg.Paths.ArchivePath, cfg.API.Board)
	if err != nil {
		return err
	}
	defer arch.Close()

	items, err := arch.RecentItems(feed.SurfaceActivity, historyLimit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Archive is empty. Run 'boardpulse watch' to populate it.")
		return nil
	}
	for i := len(items) - 1; i >= 0; i-- {
		printItem(items[i])
	}
	return nil
}

func printServerHistory(cfg *config.Config) error {
	client := api.New(cfg.API.BaseURL, cfg.API.Board, cfg.API.Token)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recs, err := client.Activity(ctx, historyLimit, 0)
	if err != nil {
		return err
	}
	items := make([]feed.Item, 0, len(recs))
	for _, r := range recs {
		if it := feed.NormalizeActivity(r); it != nil {
			items = append(items, *it)
		}
	}
	items = feed.Merge(nil, items, feed.MergeOptions[feed.Item]{Order: feed.OldestFirst, Cap: historyLimit})
	for _, it := range items {
		printItem(it)
	}
	return nil
}
