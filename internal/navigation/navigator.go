package navigation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type Page string

const (
	PageHome      Page = "home"
	PageLogin     Page = "auth/login"
	PageSignup    Page = "auth/signup"
	PageDashboard Page = "dashboard"
	PageTickets   Page = "tickets"
)

// ParsePage maps a page identifier to a known page. Anything unknown is
// served as the landing page.
func ParsePage(id string) Page {
	switch p := Page(id); p {
	case PageLogin, PageSignup, PageDashboard, PageTickets:
		return p
	}
	return PageHome
}

// IsProtected reports whether the page requires a live session.
func (p Page) IsProtected() bool {
	return p == PageDashboard || p == PageTickets
}

// Intent is a requested navigation.
type Intent struct {
	Page   Page      `json:"page"`
	Delay  int64     `json:"delayMs"`
	DueAt  time.Time `json:"dueAt"`
	Issued time.Time `json:"issuedAt"`
}

// Navigator tracks the current page and applies delayed redirects. A
// scheduled redirect cannot be cancelled; when several are pending they
// apply in the order their timers fire.
type Navigator struct {
	clock clockwork.Clock
	log   zerolog.Logger

	mu        sync.Mutex
	current   Page
	pending   []Intent
	listeners []func(Page)
}

func NewNavigator(clock clockwork.Clock, log zerolog.Logger) *Navigator {
	return &Navigator{
		clock:   clock,
		log:     log,
		current: PageHome,
	}
}

// OnNavigate registers fn to run after each applied redirect.
func (n *Navigator) OnNavigate(fn func(Page)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Visit records that page is being shown now.
func (n *Navigator) Visit(page Page) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = page
}

func (n *Navigator) Current() Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Pending lists redirects that have been scheduled but not yet applied.
func (n *Navigator) Pending() []Intent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Intent, len(n.pending))
	copy(out, n.pending)
	return out
}

// Redirect schedules a navigation to page after delay and returns the
// intent that was scheduled.
func (n *Navigator) Redirect(page Page, delay time.Duration) Intent {
	now := n.clock.Now()
	intent := Intent{
		Page:   page,
		Delay:  delay.Milliseconds(),
		DueAt:  now.Add(delay),
		Issued: now,
	}

	n.mu.Lock()
	n.pending = append(n.pending, intent)
	n.mu.Unlock()

	n.log.Debug().Str("page", string(page)).Dur("delay", delay).Msg("redirect scheduled")
	n.clock.AfterFunc(delay, func() { n.apply(intent) })
	return intent
}

func (n *Navigator) apply(intent Intent) {
	n.mu.Lock()
	for i, p := range n.pending {
		if p == intent {
			n.pending = append(n.pending[:i], n.pending[i+1:]...)
			break
		}
	}
	n.current = intent.Page
	listeners := append([]func(Page){}, n.listeners...)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(intent.Page)
	}
}
