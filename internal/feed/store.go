package feed

import (
	"sort"
	"time"
)

// Keyed is anything the merge store can deduplicate and order: feed items,
// chat messages, and roster records.
type Keyed interface {
	Key() string
	Timestamp() string
}

// Order is the sort direction of a merged view.
type Order int

const (
	// NewestFirst orders by created_at descending (live/activity feeds).
	NewestFirst Order = iota
	// OldestFirst orders by created_at ascending (chat/notes transcripts).
	OldestFirst
)

// MergeOptions control ordering, partitioning, and bounding for one view.
type MergeOptions[T Keyed] struct {
	Order Order
	// Cap bounds the view; items beyond it are dropped oldest-first.
	// Zero means unbounded.
	Cap int
	// Filter rejects incoming items that do not belong to this view's
	// partition (e.g. notes arriving on the chat transcript).
	Filter func(T) bool
}

// Merge upserts incoming into existing keyed by id. For a colliding id the
// version with the later created_at wins (the already-held version wins a
// tie, which makes re-applying a batch a no-op). The result is re-sorted
// and truncated to the cap. Merge never mutates its inputs, so interleaved
// callers can always compute new-from-old safely.
func Merge[T Keyed](existing, incoming []T, opts MergeOptions[T]) []T {
	byID := make(map[string]T, len(existing)+len(incoming))
	for _, it := range existing {
		byID[it.Key()] = it
	}
	for _, it := range incoming {
		if opts.Filter != nil && !opts.Filter(it) {
			continue
		}
		held, ok := byID[it.Key()]
		if !ok || tsLess(held.Timestamp(), it.Timestamp()) {
			byID[it.Key()] = it
		}
	}

	out := make([]T, 0, len(byID))
	for _, it := range byID {
		out = append(out, it)
	}
	// Equal timestamps tie-break on id so the ordering is deterministic
	// rather than dependent on arrival order.
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Timestamp(), out[j].Timestamp()
		if ti != tj && (tsLess(ti, tj) || tsLess(tj, ti)) {
			if opts.Order == OldestFirst {
				return tsLess(ti, tj)
			}
			return tsLess(tj, ti)
		}
		if opts.Order == OldestFirst {
			return out[i].Key() < out[j].Key()
		}
		return out[i].Key() > out[j].Key()
	})

	if opts.Cap > 0 && len(out) > opts.Cap {
		if opts.Order == OldestFirst {
			out = out[len(out)-opts.Cap:]
		} else {
			out = out[:opts.Cap]
		}
	}
	return out
}

// tsLess compares two ISO-8601 timestamps. Parsed comparison tolerates
// mixed offsets; unparseable values fall back to lexicographic order.
func tsLess(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return a < b
}
