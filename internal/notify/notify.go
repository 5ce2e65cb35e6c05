// Package notify delivers fire-and-forget user feedback.
package notify

import (
	"time"

	"github.com/rs/zerolog"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DefaultTTL is how long a notification stays visible when the caller
// passes a zero ttl.
const DefaultTTL = 3 * time.Second

// Sink accepts notifications. Implementations must not block the caller
// on delivery and never report failure.
type Sink interface {
	Notify(message string, kind Kind, ttl time.Duration)
}

type Fanout []Sink

func (f Fanout) Notify(message string, kind Kind, ttl time.Duration) {
	for _, sink := range f {
		sink.Notify(message, kind, ttl)
	}
}

// LogSink mirrors notifications into the application log.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Notify(message string, kind Kind, ttl time.Duration) {
	event := s.Log.Info()
	if kind == KindError {
		event = s.Log.Warn()
	}
	event.
		Str("kind", string(kind)).
		Dur("ttl", ttl).
		Msg(message)
}

type Discard struct{}

func (Discard) Notify(string, Kind, time.Duration) {}
