package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ticketdesk/internal/cache"
	"ticketdesk/internal/config"
	"ticketdesk/internal/confirm"
	"ticketdesk/internal/navigation"
	"ticketdesk/internal/notify"
	"ticketdesk/internal/repository"
	"ticketdesk/internal/security"
)

type note struct {
	message string
	kind    notify.Kind
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) Notify(message string, kind notify.Kind, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{message: message, kind: kind})
}

func (r *recorder) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type harness struct {
	store   *repository.Store
	server  *miniredis.Miniredis
	clock   clockwork.FakeClock
	nav     *navigation.Navigator
	notes   *recorder
	answer  atomic.Bool
	prompts atomic.Int32
	auth    *AuthService
	tickets *TicketService
	guard   *Guard
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		server: miniredis.RunT(t),
		clock:  clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		notes:  &recorder{},
	}
	client := redis.NewClient(&redis.Options{Addr: h.server.Addr()})
	t.Cleanup(func() { client.Close() })

	store, err := repository.Open(context.Background(), cache.NewRedisKV(client), "ticketapp", zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	h.store = store

	var gate *confirm.Gate
	gate = confirm.NewGate(confirm.PresenterFunc(func(p confirm.Prompt) error {
		h.prompts.Add(1)
		return gate.Resolve(p.ID, h.answer.Load())
	}), h.clock, zerolog.Nop())

	cfg := &config.AppConfig{
		Security: config.SecurityConfig{SessionSecret: "test-secret", SessionTTL: time.Hour},
		UI: config.UIConfig{
			SignupRedirect: 800 * time.Millisecond,
			LoginRedirect:  600 * time.Millisecond,
			LogoutRedirect: 600 * time.Millisecond,
			GuardRedirect:  800 * time.Millisecond,
		},
	}

	h.nav = navigation.NewNavigator(h.clock, zerolog.Nop())
	h.auth = NewAuthService(store, security.Plaintext{}, gate, h.notes, h.nav, h.clock, cfg, zerolog.Nop())
	h.tickets = NewTicketService(store, gate, h.notes, h.clock, zerolog.Nop())
	h.guard = NewGuard(store, h.notes, h.nav, cfg.UI.GuardRedirect, zerolog.Nop())
	return h
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (h *harness) signupAndLogin(t *testing.T) LoginResult {
	t.Helper()
	ctx := context.Background()
	if _, err := h.auth.Signup(ctx, SignupInput{Name: "Ana", Email: "ana@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	res, err := h.auth.Login(ctx, LoginInput{Email: "ana@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return res
}
