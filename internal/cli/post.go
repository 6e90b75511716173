package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardpulse/boardpulse/internal/api"
	"github.com/boardpulse/boardpulse/internal/config"
)

var (
	postAsNote bool
	postTaskID string
	postTags   []string
)

var postCmd = &cobra.Command{
	Use:   "post [message]",
	Short: "Post a chat message, note or task comment to the board",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client := api.New(cfg.API.BaseURL, cfg.API.Board, cfg.API.Token)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		text := strings.Join(args, " ")
		if postTaskID != "" {
			cm, err := client.PostComment(ctx, postTaskID, text)
			if err != nil {
				return err
			}
			fmt.Printf("Comment %s added to task %s\n", cm.ID, cm.TaskID)
			return nil
		}

		msg, err := client.PostMemory(ctx, text, !postAsNote, postTags...)
		if err != nil {
			return err
		}
		kind := "Message"
		if postAsNote {
			kind = "Note"
		}
		fmt.Printf("%s %s posted to %s\n", kind, msg.ID, cfg.API.Board)
		return nil
	},
}

func init() {
	postCmd.Flags().BoolVar(&postAsNote, "note", false, "post as a note instead of a chat message")
	postCmd.Flags().StringVar(&postTaskID, "task", "", "post as a comment on the given task")
	postCmd.Flags().StringSliceVar(&postTags, "tag", nil, "tag the posted memory (repeatable)")
}
