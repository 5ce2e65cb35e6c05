package navigation

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

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

func TestParsePage(t *testing.T) {
	tests := []struct {
		id        string
		want      Page
		protected bool
	}{
		{"home", PageHome, false},
		{"", PageHome, false},
		{"nope", PageHome, false},
		{"auth/login", PageLogin, false},
		{"auth/signup", PageSignup, false},
		{"dashboard", PageDashboard, true},
		{"tickets", PageTickets, true},
	}
	for _, tt := range tests {
		got := ParsePage(tt.id)
		if got != tt.want {
			t.Errorf("ParsePage(%q) = %q, want %q", tt.id, got, tt.want)
		}
		if got.IsProtected() != tt.protected {
			t.Errorf("%q protected = %v, want %v", got, got.IsProtected(), tt.protected)
		}
	}
}

func TestRedirectAppliesAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	nav := NewNavigator(clock, zerolog.Nop())
	nav.Visit(PageSignup)

	var mu sync.Mutex
	var seen []Page
	nav.OnNavigate(func(p Page) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})

	intent := nav.Redirect(PageLogin, 800*time.Millisecond)
	if intent.Delay != 800 {
		t.Fatalf("delay = %d, want 800", intent.Delay)
	}
	if len(nav.Pending()) != 1 {
		t.Fatal("redirect not pending")
	}

	clock.Advance(799 * time.Millisecond)
	if nav.Current() != PageSignup {
		t.Fatalf("redirect applied early: %q", nav.Current())
	}

	clock.Advance(time.Millisecond)
	waitFor(t, func() bool { return nav.Current() == PageLogin })
	waitFor(t, func() bool { return len(nav.Pending()) == 0 })
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0] == PageLogin
	})
}
