package bus

import (
	"context"
	"testing"
	"time"

	"github.com/boardpulse/boardpulse/internal/feed"
)

func TestDispatchRoutesBySurface(t *testing.T) {
	b := NewUpdateBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chat := make(chan *Update, 1)
	activity := make(chan *Update, 1)
	b.Subscribe(feed.SurfaceChat, func(u *Update) { chat <- u })
	b.Subscribe(feed.SurfaceActivity, func(u *Update) { activity <- u })

	go b.Dispatch(ctx)

	b.Publish(&Update{Surface: feed.SurfaceChat, Items: []feed.Item{{ID: "m1", Kind: feed.KindBoardChat}}})

	select {
	case u := <-chat:
		if len(u.Items) != 1 || u.Items[0].ID != "m1" {
			t.Fatalf("unexpected update %+v", u)
		}
		if u.At.IsZero() {
			t.Fatal("publish did not stamp the update")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("chat subscriber never invoked")
	}

	select {
	case u := <-activity:
		t.Fatalf("activity subscriber got a chat update: %+v", u)
	default:
	}
}

func TestDispatchFansOutToAllSubscribers(t *testing.T) {
	b := NewUpdateBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan *Update, 1)
	second := make(chan *Update, 1)
	b.Subscribe(feed.SurfaceActivity, func(u *Update) { first <- u })
	b.Subscribe(feed.SurfaceActivity, func(u *Update) { second <- u })

	go b.Dispatch(ctx)
	b.Publish(&Update{Surface: feed.SurfaceActivity})

	for i, ch := range []chan *Update{first, second} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %d never invoked", i)
		}
	}
}

func TestDispatchStopsOnCancel(t *testing.T) {
	b := NewUpdateBus()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Dispatch(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("dispatch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not stop on cancel")
	}
}
