package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"github.com/boardpulse/boardpulse/internal/feed"
)

type fakePoster struct {
	channels []string
	texts    []string
	err      error
}

func (f *fakePoster) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channels = append(f.channels, channelID)
	f.texts = append(f.texts, "")
	return channelID, "1", f.err
}

func TestNotifyFiltersAndDeduplicates(t *testing.T) {
	fp := &fakePoster{}
	n := newSlackNotifier(fp, "#ops", []string{"approval.created", "agent.offline"})

	items := []feed.Item{
		{ID: "i1", Kind: feed.KindApprovalCreated, CreatedAt: "2024-01-01T00:00:01Z", Title: "deploy"},
		{ID: "i2", Kind: feed.KindBoardChat, CreatedAt: "2024-01-01T00:00:02Z", Message: "hi"},
		{ID: "i3", Kind: feed.KindAgentOffline, CreatedAt: "2024-01-01T00:00:03Z", AgentID: "a1"},
	}
	n.Notify(context.Background(), items)
	if len(fp.channels) != 2 {
		t.Fatalf("posted %d messages, want 2 (chat filtered out)", len(fp.channels))
	}
	if fp.channels[0] != "#ops" {
		t.Fatalf("posted to %q", fp.channels[0])
	}

	// A re-merged snapshot redelivers the same items.
	n.Notify(context.Background(), items)
	if len(fp.channels) != 2 {
		t.Fatalf("duplicate notifications sent: %d total", len(fp.channels))
	}
}

func TestNotifierDisabledWithoutToken(t *testing.T) {
	if n := NewSlackNotifier("", "#ops", nil); n != nil {
		t.Fatal("notifier built without a token")
	}
	if n := NewSlackNotifier("xoxb-token", "", nil); n != nil {
		t.Fatal("notifier built without a channel")
	}

	// A nil notifier is callable.
	var n *SlackNotifier
	n.Notify(context.Background(), []feed.Item{{ID: "i1", Kind: feed.KindBoardChat}})
}

func TestFormatItem(t *testing.T) {
	got := formatItem(feed.Item{
		ID:        "i1",
		Kind:      feed.KindApprovalApproved,
		ActorName: "lead",
		Title:     "deploy v2",
		TaskID:    "t1",
	})
	for _, want := range []string{"approval.approved", "lead", "deploy v2", "task t1"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted %q missing %q", got, want)
		}
	}
}
