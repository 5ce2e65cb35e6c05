package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ticketdesk/internal/navigation"
	"ticketdesk/internal/notify"
	"ticketdesk/internal/repository"
)

const sessionExpiredMessage = "Your session has expired — please log in again."

// Guard gates protected pages behind a live session.
type Guard struct {
	store    *repository.Store
	notifier notify.Sink
	nav      *navigation.Navigator
	delay    time.Duration
	log      zerolog.Logger
}

func NewGuard(store *repository.Store, notifier notify.Sink, nav *navigation.Navigator, delay time.Duration, log zerolog.Logger) *Guard {
	return &Guard{store: store, notifier: notifier, nav: nav, delay: delay, log: log}
}

// Enter records a visit to page and reports whether its content may be
// shown. A protected page without a session schedules a redirect to
// login instead.
func (g *Guard) Enter(ctx context.Context, page navigation.Page) (bool, error) {
	g.nav.Visit(page)
	if !page.IsProtected() {
		return true, nil
	}

	session, err := g.store.LoadSession(ctx)
	if err != nil {
		return false, err
	}
	if session != nil {
		return true, nil
	}

	g.log.Debug().Str("page", string(page)).Msg("protected page without session")
	g.notifier.Notify(sessionExpiredMessage, notify.KindError, 0)
	g.nav.Redirect(navigation.PageLogin, g.delay)
	return false, nil
}
