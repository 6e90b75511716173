package sse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// State is the lifecycle phase of a subscription.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateBackoff
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// SubscriptionConfig wires one resumable stream connection.
type SubscriptionConfig struct {
	// URL builds the stream endpoint for the next connect attempt. It is
	// called before every connect, so reconnects resume from the latest
	// locally-known cursor rather than the cursor at Start time.
	URL func() string
	// Handler receives each decoded frame.
	Handler func(Frame)
	// Backoff is the reconnect policy. DefaultBackoff is used when zero.
	Backoff BackoffConfig
	// Client is the HTTP client. http.DefaultClient when nil.
	Client *http.Client
}

// Subscription owns one long-lived, resumable event-stream connection:
// connect, read, decode, dispatch, reconnect. Transport errors are never
// surfaced to the caller; they schedule a reconnect with capped exponential
// delay. The only way out of the retry loop is Stop.
type Subscription struct {
	url     func() string
	handler func(Frame)
	backoff *Backoff
	client  *http.Client

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	started bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewSubscription creates a subscription. It does not connect until Start.
func NewSubscription(cfg SubscriptionConfig) *Subscription {
	bo := cfg.Backoff
	if bo.BaseMs == 0 {
		bo = DefaultBackoff()
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Subscription{
		url:     cfg.URL,
		handler: cfg.Handler,
		backoff: NewBackoff(bo),
		client:  client,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle phase.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins the connect loop. It is a no-op unless the subscription is
// idle, so at most one loop runs per subscription.
func (s *Subscription) Start() {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.started = true
	s.mu.Unlock()
	go s.run()
}

// Stop tears the subscription down from any state. It is idempotent, aborts
// an in-flight request, clears a pending backoff wait, and blocks until the
// loop has exited, so no handler invocation happens after Stop returns.
func (s *Subscription) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.done
		}
		return
	}
	s.state = StateStopped
	started := s.started
	cancel := s.cancel
	close(s.stopCh)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-s.done
	}
}

func (s *Subscription) stopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *Subscription) setState(st State) {
	s.mu.Lock()
	if s.state != StateStopped {
		s.state = st
	}
	s.mu.Unlock()
}

func (s *Subscription) run() {
	defer close(s.done)
	for {
		if s.stopped() {
			return
		}
		if err := s.connectOnce(); err != nil && !s.stopped() {
			slog.Debug("stream connection lost", "error", err)
		}
		if s.stopped() {
			return
		}
		if !s.waitBackoff(s.backoff.NextDelay()) {
			return
		}
	}
}

// connectOnce opens the stream at the current cursor and reads it until the
// transport fails, the server closes it, or Stop aborts it. A nil return is
// a clean termination; the caller reconnects either way.
func (s *Subscription) connectOnce() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.cancel = cancel
	s.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stream status %d", resp.StatusCode)
	}

	s.setState(StateStreaming)
	dec := &Decoder{}
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			// Any bytes at all, keep-alive pings included, count as
			// liveness and reset the reconnect delay.
			s.backoff.Reset()
			for _, f := range dec.Feed(string(buf[:n])) {
				if s.stopped() {
					return nil
				}
				s.handler(f)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}

// waitBackoff sleeps for the reconnect delay. It returns false when Stop
// interrupted the wait.
func (s *Subscription) waitBackoff(d time.Duration) bool {
	s.setState(StateBackoff)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return !s.stopped()
	case <-s.stopCh:
		return false
	}
}
