package notify

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const streamBuffer = 256

type streamEntry struct {
	message string
	kind    Kind
	ttl     time.Duration
}

// StreamSink appends each notification to a Redis stream for the worker
// to pick up. Publishing happens on a single background goroutine; when
// its buffer is full new notifications are dropped. Publish failures are
// logged and dropped.
type StreamSink struct {
	client     *redis.Client
	stream     string
	defaultTTL time.Duration
	timeout    time.Duration
	log        zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	entries chan streamEntry
	done    chan struct{}
}

func NewStreamSink(client *redis.Client, stream string, defaultTTL time.Duration, log zerolog.Logger) *StreamSink {
	return newStreamSink(client, stream, defaultTTL, streamBuffer, log)
}

func newStreamSink(client *redis.Client, stream string, defaultTTL time.Duration, buffer int, log zerolog.Logger) *StreamSink {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	s := &StreamSink{
		client:     client,
		stream:     stream,
		defaultTTL: defaultTTL,
		timeout:    2 * time.Second,
		log:        log,
		entries:    make(chan streamEntry, buffer),
		done:       make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *StreamSink) Notify(message string, kind Kind, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.entries <- streamEntry{message: message, kind: kind, ttl: ttl}:
	default:
		s.log.Warn().Str("stream", s.stream).Msg("notification buffer full, dropping")
	}
}

// Close stops accepting notifications and waits until the buffered ones
// have been published.
func (s *StreamSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *StreamSink) run() {
	defer close(s.done)
	for entry := range s.entries {
		s.publish(entry)
	}
}

func (s *StreamSink) publish(entry streamEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"message": entry.message,
			"kind":    string(entry.kind),
			"ttl_ms":  strconv.FormatInt(entry.ttl.Milliseconds(), 10),
		},
	}).Result()
	if err != nil {
		s.log.Error().Err(err).Str("stream", s.stream).Msg("publish notification failed")
	}
}
