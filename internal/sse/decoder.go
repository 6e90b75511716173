// Package sse implements the client side of the dashboard's event streams:
// frame decoding, capped exponential backoff, and resumable subscriptions.
package sse

import "strings"

// DefaultEventName is used for frames that carry no event: line.
const DefaultEventName = "message"

// Frame is one decoded server-sent event.
type Frame struct {
	Event string
	Data  string
}

// Decoder splits an incrementally delivered SSE text stream into frames.
// A partial frame at the end of a chunk is buffered until the next Feed
// call, so a frame split across network reads is never dropped.
type Decoder struct {
	carry string
}

// Feed appends a raw chunk to the decoder and returns every frame completed
// by it. CRLF line endings are normalized to LF before splitting.
func (d *Decoder) Feed(chunk string) []Frame {
	raw := strings.ReplaceAll(d.carry+chunk, "\r\n", "\n")
	blocks := strings.Split(raw, "\n\n")
	d.carry = blocks[len(blocks)-1]

	var frames []Frame
	for _, block := range blocks[:len(blocks)-1] {
		if f, ok := parseFrame(block); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Buffered reports whether a partial frame is waiting for more input.
func (d *Decoder) Buffered() bool {
	return d.carry != ""
}

// parseFrame extracts the event name and concatenated data payload from one
// frame block. Frames without a data: line (comments, bare pings) are not
// dispatched.
func parseFrame(block string) (Frame, bool) {
	f := Frame{Event: DefaultEventName}
	var data []string
	for _, line := range strings.Split(block, "\n") {
		switch {
		case strings.HasPrefix(line, "event:"):
			f.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if len(data) == 0 {
		return Frame{}, false
	}
	f.Data = strings.Join(data, "\n")
	return f, true
}
