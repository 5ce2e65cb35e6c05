package service

import (
	"context"
	"testing"
	"time"

	"ticketdesk/internal/navigation"
	"ticketdesk/internal/notify"
)

func TestGuardRedirectsWithoutSession(t *testing.T) {
	h := newHarness(t)

	ok, err := h.guard.Enter(context.Background(), navigation.PageDashboard)
	if err != nil || ok {
		t.Fatalf("Enter = %v, %v", ok, err)
	}
	if got := h.notes.last(); got.message != "Your session has expired — please log in again." || got.kind != notify.KindError {
		t.Fatalf("notification = %+v", got)
	}

	pending := h.nav.Pending()
	if len(pending) != 1 || pending[0].Page != navigation.PageLogin || pending[0].Delay != 800 {
		t.Fatalf("pending = %+v", pending)
	}

	h.clock.Advance(800 * time.Millisecond)
	waitFor(t, func() bool { return h.nav.Current() == navigation.PageLogin })
}

func TestGuardAllowsPublicPages(t *testing.T) {
	h := newHarness(t)

	for _, page := range []navigation.Page{navigation.PageHome, navigation.PageLogin, navigation.PageSignup} {
		ok, err := h.guard.Enter(context.Background(), page)
		if err != nil || !ok {
			t.Fatalf("Enter(%s) = %v, %v", page, ok, err)
		}
	}
	if h.notes.count() != 0 {
		t.Fatal("public page notified")
	}
}

func TestGuardAllowsLiveSession(t *testing.T) {
	h := newHarness(t)
	h.signupAndLogin(t)
	before := h.notes.count()

	ok, err := h.guard.Enter(context.Background(), navigation.PageTickets)
	if err != nil || !ok {
		t.Fatalf("Enter = %v, %v", ok, err)
	}
	if h.notes.count() != before {
		t.Fatal("live session notified")
	}
	if h.nav.Current() != navigation.PageTickets {
		t.Fatalf("current = %s", h.nav.Current())
	}
}

func TestGuardTreatsCorruptSessionAsMissing(t *testing.T) {
	h := newHarness(t)
	h.server.Set("ticketapp_session", "{not json")

	ok, err := h.guard.Enter(context.Background(), navigation.PageDashboard)
	if err != nil || ok {
		t.Fatalf("Enter = %v, %v", ok, err)
	}
}
