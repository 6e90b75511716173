package feed

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/boardpulse/boardpulse/internal/sse"
)

const (
	defaultPageSize = 50
	defaultMaxPages = 4
)

// History fetches bounded pages of past records for the feed surfaces and
// builds stream URLs. Implemented by the REST client.
type History interface {
	Memories(ctx context.Context, isChat bool, limit, offset int) ([]ChatMessage, error)
	Activity(ctx context.Context, limit, offset int) ([]ActivityRecord, error)
	Tasks(ctx context.Context, limit, offset int) ([]TaskRecord, error)
	Approvals(ctx context.Context, limit, offset int) ([]ApprovalRecord, error)
	Agents(ctx context.Context, limit, offset int) ([]AgentRecord, error)
	StreamURL(surface Surface, since string) string
}

// EventSource is an alternate provider of stream frames (e.g. a broker
// consumer). Its frames run through the same normalize+merge path as the
// SSE subscription's.
type EventSource interface {
	Start(ctx context.Context) error
	Frames() <-chan sse.Frame
	Close() error
}

// ControllerConfig wires one surface.
type ControllerConfig[T Keyed] struct {
	Surface  Surface
	Options  MergeOptions[T]
	PageSize int
	MaxPages int
	// Prime runs before the history backfill, best-effort (used by the
	// activity surface to seed previous-record state).
	Prime func(ctx context.Context)
	// Fetch loads one history page. n is the raw record count of the page
	// before any normalization filtering, used to detect the last page.
	Fetch func(ctx context.Context, limit, offset int) (items []T, n int, err error)
	// Ingest normalizes one stream frame into zero or more view entries.
	// Malformed or unrecognized frames return nil.
	Ingest    func(f sse.Frame) []T
	StreamURL func(since string) string
	Backoff   sse.BackoffConfig
	Client    *http.Client
	// OnUpdate receives each merged view snapshot.
	OnUpdate func(Surface, []T)
}

// Controller drives one surface: it backfills bounded paginated history,
// then keeps the view current from a resumable stream subscription. A
// history failure is surfaced via Err and does not block the stream. The
// controller exclusively owns its merge state and subscription.
type Controller[T Keyed] struct {
	cfg ControllerConfig[T]

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	items   []T
	histErr error
	loaded  bool
	started bool
	stopped bool
	sub     *sse.Subscription
	sources []EventSource
}

// NewController creates a controller for one surface. Most callers use the
// per-surface constructors instead.
func NewController[T Keyed](cfg ControllerConfig[T]) *Controller[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	return &Controller[T]{cfg: cfg}
}

// Surface returns the surface this controller feeds.
func (c *Controller[T]) Surface() Surface { return c.cfg.Surface }

// Items returns the current merged view. The slice is never mutated after
// publication, so callers may hold it.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Err returns the feed-level history error, if any. The live stream keeps
// running regardless.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.histErr
}

// Start activates the surface: history backfill, then the stream
// subscription resuming from the merged cursor. Calling it again is a
// no-op.
func (c *Controller[T]) Start() {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	ctx, cancel := context.WithCancel(context.Background())
	c.ctx, c.cancel = ctx, cancel
	c.mu.Unlock()

	go func() {
		if c.cfg.Prime != nil {
			c.cfg.Prime(ctx)
		}
		c.loadHistory(ctx)
		c.openStream()
	}()
}

// Reload retries the history backfill after a failure. A no-op once history
// has loaded.
func (c *Controller[T]) Reload() {
	c.mu.Lock()
	ctx := c.ctx
	if c.loaded || c.stopped || ctx == nil {
		c.mu.Unlock()
		return
	}
	c.histErr = nil
	c.mu.Unlock()
	go c.loadHistory(ctx)
}

// Stop deactivates the surface: the subscription is torn down, pending
// history fetches are abandoned, and no state mutation or update callback
// happens afterwards. Idempotent.
func (c *Controller[T]) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	cancel := c.cancel
	sub := c.sub
	sources := c.sources
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Stop()
	}
	for _, src := range sources {
		if err := src.Close(); err != nil {
			slog.Warn("event source close failed", "surface", c.cfg.Surface, "error", err)
		}
	}
}

// AttachSource adds an alternate event source feeding this surface.
func (c *Controller[T]) AttachSource(src EventSource) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return src.Close()
	}
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	c.sources = append(c.sources, src)
	c.mu.Unlock()

	if err := src.Start(ctx); err != nil {
		return err
	}
	go func() {
		for f := range src.Frames() {
			if batch := c.cfg.Ingest(f); len(batch) > 0 {
				c.merge(batch)
			}
		}
	}()
	return nil
}

func (c *Controller[T]) loadHistory(ctx context.Context) {
	for page := 0; page < c.cfg.MaxPages; page++ {
		batch, n, err := c.cfg.Fetch(ctx, c.cfg.PageSize, page*c.cfg.PageSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("history fetch failed", "surface", c.cfg.Surface, "page", page, "error", err)
			c.mu.Lock()
			if !c.stopped {
				c.histErr = err
			}
			c.mu.Unlock()
			return
		}
		c.merge(batch)
		if n < c.cfg.PageSize {
			break
		}
	}
	c.mu.Lock()
	if !c.stopped {
		c.loaded = true
	}
	c.mu.Unlock()
}

func (c *Controller[T]) openStream() {
	c.mu.Lock()
	if c.stopped || c.sub != nil {
		c.mu.Unlock()
		return
	}
	sub := sse.NewSubscription(sse.SubscriptionConfig{
		URL: func() string {
			since, _ := SinceCursor(c.Items())
			return c.cfg.StreamURL(since)
		},
		Handler: func(f sse.Frame) {
			if batch := c.cfg.Ingest(f); len(batch) > 0 {
				c.merge(batch)
			}
		},
		Backoff: c.cfg.Backoff,
		Client:  c.cfg.Client,
	})
	c.sub = sub
	c.mu.Unlock()
	sub.Start()
}

// merge folds a batch into the view and publishes the new snapshot. Merge
// computes new-from-old, so interleaved batches from the subscription and
// attached sources cannot corrupt the view; at worst an intermediate
// ordering is transient until the next merge pass.
func (c *Controller[T]) merge(incoming []T) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.items = Merge(c.items, incoming, c.cfg.Options)
	snapshot := c.items
	c.mu.Unlock()

	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate(c.cfg.Surface, snapshot)
	}
}
