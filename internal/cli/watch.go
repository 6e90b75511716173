package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/boardpulse/boardpulse/internal/api"
	"github.com/boardpulse/boardpulse/internal/archive"
	"github.com/boardpulse/boardpulse/internal/bus"
	"github.com/boardpulse/boardpulse/internal/config"
	"github.com/boardpulse/boardpulse/internal/feed"
	"github.com/boardpulse/boardpulse/internal/notify"
	"github.com/boardpulse/boardpulse/internal/source"
)

var watchSurface string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live board activity to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cfg)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchSurface, "surface", "s", "activity", "surface to watch: activity, chat, notes, tasks, approvals or agents")
}

func runWatch(ctx context.Context, cfg *config.Config) error {
	client := api.New(cfg.API.BaseURL, cfg.API.Board, cfg.API.Token)

	switch watchSurface {
	case "activity":
		return watchActivity(ctx, cfg, client)
	case "chat", "notes":
		return watchTranscript(ctx, cfg, client, watchSurface == "chat")
	case "tasks", "approvals", "agents":
		return watchRoster(ctx, cfg, client, watchSurface)
	default:
		return fmt.Errorf("unknown surface %q", watchSurface)
	}
}

// watchActivity streams the unified feed. Snapshots flow through the update
// bus to the printer, the local archive, and the Slack notifier.
func watchActivity(ctx context.Context, cfg *config.Config, client *api.Client) error {
	printHeader("📡 Watching " + cfg.API.Board)

	arch, err := archive.Open(cfg.Paths.ArchivePath, cfg.API.Board)
	if err != nil {
		fmt.Fprintf(os.Stderr, "archive unavailable: %v\n", err)
		arch = nil
	} else {
		defer arch.Close()
	}
	notifier := notify.NewSlackNotifier(cfg.Slack.Token, cfg.Slack.Channel, cfg.Slack.Kinds)

	updates := bus.NewUpdateBus()
	seen := make(map[string]bool)
	updates.Subscribe(feed.SurfaceActivity, func(u *bus.Update) {
		fresh := make([]feed.Item, 0, len(u.Items))
		// Newest first in the view; print oldest new item first.
		for i := len(u.Items) - 1; i >= 0; i-- {
			if it := u.Items[i]; !seen[it.ID] {
				seen[it.ID] = true
				fresh = append(fresh, it)
				printItem(it)
			}
		}
		if len(fresh) == 0 {
			return
		}
		if arch != nil {
			if err := arch.UpsertItems(feed.SurfaceActivity, fresh); err != nil {
				fmt.Fprintf(os.Stderr, "archive write failed: %v\n", err)
			}
		}
		notifier.Notify(ctx, fresh)
	})
	go updates.Dispatch(ctx)

	c := feed.NewActivityController(client, cfg.Backoff, func(s feed.Surface, items []feed.Item) {
		updates.Publish(&bus.Update{Surface: s, Items: items})
	})
	c.Start()
	defer c.Stop()

	if cfg.Kafka.Enabled {
		src := source.NewKafkaSource(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topics)
		if err := c.AttachSource(src); err != nil {
			fmt.Fprintf(os.Stderr, "kafka source failed: %v\n", err)
		}
	}

	<-ctx.Done()
	return nil
}

// watchRoster streams one record roster, re-rendering on every upsert.
func watchRoster(ctx context.Context, cfg *config.Config, client *api.Client, name string) error {
	printHeader("🗂 Watching " + cfg.API.Board + " " + name)

	switch name {
	case "tasks":
		c := feed.NewTaskController(client, cfg.Backoff, func(_ feed.Surface, recs []feed.TaskRecord) {
			for _, r := range recs {
				fmt.Printf("%s  %-12s %s\n", r.Timestamp(), r.Status, r.Title)
			}
			fmt.Println("---")
		})
		c.Start()
		defer c.Stop()
	case "approvals":
		c := feed.NewApprovalController(client, cfg.Backoff, func(_ feed.Surface, recs []feed.ApprovalRecord) {
			for _, r := range recs {
				fmt.Printf("%s  %-10s %s\n", r.Timestamp(), r.Status, r.Title)
			}
			fmt.Println("---")
		})
		c.Start()
		defer c.Stop()
	case "agents":
		c := feed.NewAgentController(client, cfg.Backoff, func(_ feed.Surface, recs []feed.AgentRecord) {
			for _, r := range recs {
				lead := ""
				if r.IsLead {
					lead = " (lead)"
				}
				fmt.Printf("%s  %-10s %s%s\n", r.Timestamp(), r.Status, r.Name, lead)
			}
			fmt.Println("---")
		})
		c.Start()
		defer c.Stop()
	}

	<-ctx.Done()
	return nil
}

// watchTranscript streams one half of the memory partition, oldest first.
func watchTranscript(ctx context.Context, cfg *config.Config, client *api.Client, isChat bool) error {
	name := "notes"
	if isChat {
		name = "chat"
	}
	printHeader("💬 Watching " + cfg.API.Board + " " + name)

	seen := make(map[string]bool)
	onUpdate := func(_ feed.Surface, msgs []feed.ChatMessage) {
		for _, m := range msgs {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			if it := feed.NormalizeMemory(m); it != nil {
				printItem(*it)
			}
		}
	}

	var c *feed.Controller[feed.ChatMessage]
	if isChat {
		c = feed.NewChatController(client, cfg.Backoff, onUpdate)
	} else {
		c = feed.NewNotesController(client, cfg.Backoff, onUpdate)
	}
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	return nil
}
