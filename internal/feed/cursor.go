package feed

// SinceCursor derives the resume point for a view: the maximum created_at
// among currently held items. ok is false when the view is empty, in which
// case the next connect or fetch omits the cursor and receives the server's
// full retention window.
func SinceCursor[T Keyed](items []T) (since string, ok bool) {
	for _, it := range items {
		ts := it.Timestamp()
		if !ok || tsLess(since, ts) {
			since, ok = ts, true
		}
	}
	return since, ok
}
