package tasks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ticketdesk/internal/notify"
)

// Processor handles notifications published to the stream by the API.
type Processor struct {
	logger zerolog.Logger
}

type NotificationPayload struct {
	Message string
	Kind    notify.Kind
	TTL     time.Duration
}

func NewProcessor(logger zerolog.Logger) *Processor {
	return &Processor{
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	payload, err := decodePayload(msg.Values)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	event := p.logger.Info()
	switch payload.Kind {
	case notify.KindError:
		event = p.logger.Warn()
	case notify.KindSuccess, notify.KindInfo:
	default:
		p.logger.Warn().Str("kind", string(payload.Kind)).Str("message_id", msg.ID).Msg("unknown notification kind")
		return nil
	}

	event.
		Str("message_id", msg.ID).
		Str("kind", string(payload.Kind)).
		Dur("ttl", payload.TTL).
		Msg(payload.Message)
	return nil
}

func decodePayload(values map[string]interface{}) (NotificationPayload, error) {
	message, ok := values["message"].(string)
	if !ok {
		return NotificationPayload{}, fmt.Errorf("missing message")
	}
	kind, _ := values["kind"].(string)

	var ttl time.Duration
	if raw, ok := values["ttl_ms"].(string); ok && raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return NotificationPayload{}, fmt.Errorf("ttl_ms: %w", err)
		}
		ttl = time.Duration(ms) * time.Millisecond
	}

	return NotificationPayload{Message: message, Kind: notify.Kind(kind), TTL: ttl}, nil
}
