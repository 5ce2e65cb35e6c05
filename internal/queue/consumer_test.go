package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type collectingHandler struct {
	mu   sync.Mutex
	seen []string
	fail bool
}

func (h *collectingHandler) Handle(_ context.Context, msg redis.XMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fail {
		return errors.New("rejected")
	}
	h.seen = append(h.seen, msg.Values["message"].(string))
	return nil
}

func newTestConsumer(t *testing.T, handler MessageHandler) (*Consumer, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewConsumer(client, "notifications", "workers", "w1", time.Minute, zerolog.Nop(), handler)
	c.block = 50 * time.Millisecond
	if err := c.EnsureGroup(context.Background()); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	return c, client
}

func TestEnsureGroupIsIdempotent(t *testing.T) {
	c, _ := newTestConsumer(t, &collectingHandler{})
	if err := c.EnsureGroup(context.Background()); err != nil {
		t.Fatalf("second EnsureGroup: %v", err)
	}
}

func TestReadOnceHandlesAndAcks(t *testing.T) {
	handler := &collectingHandler{}
	c, client := newTestConsumer(t, handler)
	ctx := context.Background()

	for _, m := range []string{"Ticket created", "Ticket deleted"} {
		client.XAdd(ctx, &redis.XAddArgs{Stream: "notifications", Values: map[string]any{"message": m}})
	}

	acked, err := c.ReadOnce(ctx)
	if err != nil {
		t.Fatalf("ReadOnce: %v", err)
	}
	if acked != 2 || len(handler.seen) != 2 || handler.seen[0] != "Ticket created" {
		t.Fatalf("acked=%d seen=%v", acked, handler.seen)
	}

	pending, err := client.XPending(ctx, "notifications", "workers").Result()
	if err != nil {
		t.Fatal(err)
	}
	if pending.Count != 0 {
		t.Fatalf("pending = %d, want 0", pending.Count)
	}
}

func TestReadOnceLeavesFailedMessagesPending(t *testing.T) {
	handler := &collectingHandler{fail: true}
	c, client := newTestConsumer(t, handler)
	ctx := context.Background()

	client.XAdd(ctx, &redis.XAddArgs{Stream: "notifications", Values: map[string]any{"message": "x"}})

	acked, err := c.ReadOnce(ctx)
	if err != nil {
		t.Fatalf("ReadOnce: %v", err)
	}
	if acked != 0 {
		t.Fatalf("acked = %d", acked)
	}

	pending, err := client.XPending(ctx, "notifications", "workers").Result()
	if err != nil {
		t.Fatal(err)
	}
	if pending.Count != 1 {
		t.Fatalf("pending = %d, want 1", pending.Count)
	}
}

func TestReadOnceWithNothingToRead(t *testing.T) {
	c, _ := newTestConsumer(t, &collectingHandler{})
	acked, err := c.ReadOnce(context.Background())
	if err != nil || acked != 0 {
		t.Fatalf("ReadOnce = %d, %v", acked, err)
	}
}
