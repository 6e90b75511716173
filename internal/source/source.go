// Package source provides alternate stream providers for the feed surfaces.
// A source emits the same framed events the SSE endpoint carries, so its
// output runs through the identical normalize and merge path.
package source

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/boardpulse/boardpulse/internal/sse"
)

// KafkaSource consumes board event topics mirrored to Kafka. Each topic
// carries one event family; the topic's final dot-separated segment is the
// event name (boardpulse.ops.memory -> memory), and the message value is the
// same JSON envelope the SSE stream delivers.
type KafkaSource struct {
	brokers       string
	consumerGroup string
	topics        []string
	readers       []*kafka.Reader
	frames        chan sse.Frame
	mu            sync.Mutex
}

// NewKafkaSource creates a source reading the given topics. brokers is a
// comma-separated list.
func NewKafkaSource(brokers, consumerGroup string, topics []string) *KafkaSource {
	return &KafkaSource{
		brokers:       brokers,
		consumerGroup: consumerGroup,
		topics:        topics,
		frames:        make(chan sse.Frame, 100),
	}
}

// Start begins consuming from all configured topics.
func (s *KafkaSource) Start(ctx context.Context) error {
	brokerList := strings.Split(s.brokers, ",")
	for _, topic := range s.topics {
		s.startReader(ctx, brokerList, topic)
	}
	return nil
}

func (s *KafkaSource) startReader(ctx context.Context, brokerList []string, topic string) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokerList,
		Topic:    topic,
		GroupID:  s.consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	s.mu.Lock()
	s.readers = append(s.readers, reader)
	s.mu.Unlock()

	event := eventNameFor(topic)
	go func(r *kafka.Reader, t string) {
		for {
			msg, err := r.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("KafkaSource: read error", "topic", t, "error", err)
				continue
			}
			s.frames <- sse.Frame{Event: event, Data: string(msg.Value)}
		}
	}(reader, topic)
}

// Frames returns the channel of consumed frames.
func (s *KafkaSource) Frames() <-chan sse.Frame {
	return s.frames
}

// Close stops all readers.
func (s *KafkaSource) Close() error {
	s.mu.Lock()
	readers := s.readers
	s.mu.Unlock()
	for _, r := range readers {
		r.Close()
	}
	close(s.frames)
	return nil
}

// eventNameFor maps a topic name to its event family.
func eventNameFor(topic string) string {
	if i := strings.LastIndex(topic, "."); i >= 0 {
		return topic[i+1:]
	}
	return topic
}

// ChannelSource is an in-process source backed by a Go channel, used in
// tests and by local publishers.
type ChannelSource struct {
	ch     chan sse.Frame
	closed sync.Once
}

// NewChannelSource creates an in-process frame source.
func NewChannelSource() *ChannelSource {
	return &ChannelSource{ch: make(chan sse.Frame, 100)}
}

// Start is a no-op; the channel is live from construction.
func (s *ChannelSource) Start(ctx context.Context) error { return nil }

// Publish injects a frame.
func (s *ChannelSource) Publish(f sse.Frame) {
	s.ch <- f
}

// Frames returns the frame channel.
func (s *ChannelSource) Frames() <-chan sse.Frame {
	return s.ch
}

// Close closes the frame channel. Safe to call more than once.
func (s *ChannelSource) Close() error {
	s.closed.Do(func() { close(s.ch) })
	return nil
}
