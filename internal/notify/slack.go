// Package notify forwards selected feed items to Slack.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/slack-go/slack"

	"github.com/boardpulse/boardpulse/internal/feed"
)

// poster is the slice of the Slack API the notifier uses. *slack.Client
// satisfies it.
type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts feed items matching a kind allow-list to one Slack
// channel. Items are deduplicated by id, so re-merged snapshots do not
// produce duplicate messages.
type SlackNotifier struct {
	api     poster
	channel string
	kinds   map[feed.Kind]bool

	mu   sync.Mutex
	seen map[string]bool
}

// NewSlackNotifier creates a notifier. Returns nil when the token is empty;
// a nil notifier is safe to call and does nothing.
func NewSlackNotifier(token, channel string, kinds []string) *SlackNotifier {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(channel) == "" {
		return nil
	}
	return newSlackNotifier(slack.New(token), channel, kinds)
}

func newSlackNotifier(api poster, channel string, kinds []string) *SlackNotifier {
	allowed := make(map[feed.Kind]bool, len(kinds))
	for _, k := range kinds {
		if k = strings.TrimSpace(k); k != "" {
			allowed[feed.Kind(k)] = true
		}
	}
	return &SlackNotifier{
		api:     api,
		channel: channel,
		kinds:   allowed,
		seen:    make(map[string]bool),
	}
}

// Notify posts any not-yet-seen items that match the allow-list. Failures
// are logged, not returned; a missed notification must not disturb the feed.
func (n *SlackNotifier) Notify(ctx context.Context, items []feed.Item) {
	if n == nil {
		return
	}
	for _, it := range items {
		if !n.kinds[it.Kind] || !n.markSeen(it.ID) {
			continue
		}
		text := formatItem(it)
		if _, _, err := n.api.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false)); err != nil {
			slog.Warn("slack notify failed", "item", it.ID, "error", err)
		}
	}
}

// markSeen records an id, reporting whether it was new.
func (n *SlackNotifier) markSeen(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seen[id] {
		return false
	}
	n.seen[id] = true
	return true
}

func formatItem(it feed.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", it.Kind)
	if it.ActorName != "" {
		fmt.Fprintf(&b, " %s:", it.ActorName)
	}
	if it.Title != "" {
		fmt.Fprintf(&b, " %s", it.Title)
	}
	if it.Message != "" {
		fmt.Fprintf(&b, " %s", it.Message)
	}
	if it.TaskID != "" {
		fmt.Fprintf(&b, " (task %s)", it.TaskID)
	}
	return b.String()
}
