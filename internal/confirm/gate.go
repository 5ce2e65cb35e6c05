// Package confirm implements the asynchronous yes/no prompt that guards
// destructive operations.
//
// Confirm suspends only the calling goroutine. The prompt stays pending
// until Resolve is called with its id, the caller's context ends, or the
// gate is closed; whichever happens first decides the answer and the
// prompt is dropped from the pending set. Every path other than an
// explicit Resolve answers false.
package confirm

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var ErrPromptNotFound = errors.New("prompt not found")

// Prompt is one open question.
type Prompt struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Presenter puts a prompt in front of the user. A returned error means
// the prompt could not be shown and the gate answers false.
type Presenter interface {
	Present(prompt Prompt) error
}

type PresenterFunc func(prompt Prompt) error

func (f PresenterFunc) Present(prompt Prompt) error { return f(prompt) }

type pending struct {
	prompt Prompt
	once   sync.Once
	answer chan bool
}

func (p *pending) resolve(answer bool) bool {
	resolved := false
	p.once.Do(func() {
		p.answer <- answer
		resolved = true
	})
	return resolved
}

type Gate struct {
	presenter Presenter
	clock     clockwork.Clock
	log       zerolog.Logger

	mu      sync.Mutex
	prompts map[string]*pending
	closed  bool
}

func NewGate(presenter Presenter, clock clockwork.Clock, log zerolog.Logger) *Gate {
	return &Gate{
		presenter: presenter,
		clock:     clock,
		log:       log,
		prompts:   make(map[string]*pending),
	}
}

// Confirm asks message and blocks until the prompt is answered. It
// reports false without asking when no presenter is configured or the
// gate has been closed.
func (g *Gate) Confirm(ctx context.Context, message string) bool {
	if g == nil || g.presenter == nil {
		return false
	}

	p := &pending{
		prompt: Prompt{
			ID:        uuid.NewString(),
			Message:   message,
			CreatedAt: g.clock.Now(),
		},
		answer: make(chan bool, 1),
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	g.prompts[p.prompt.ID] = p
	g.mu.Unlock()

	if err := g.presenter.Present(p.prompt); err != nil {
		g.log.Warn().Err(err).Str("prompt_id", p.prompt.ID).Msg("confirmation surface unavailable")
		g.settle(p, false)
	}

	select {
	case answer := <-p.answer:
		return answer
	case <-ctx.Done():
		g.settle(p, false)
		// The prompt may have been answered concurrently; the buffered
		// channel holds whichever answer won.
		return <-p.answer
	}
}

// Resolve answers the prompt with the given id.
func (g *Gate) Resolve(id string, answer bool) error {
	g.mu.Lock()
	p, ok := g.prompts[id]
	g.mu.Unlock()
	if !ok {
		return ErrPromptNotFound
	}
	if !g.settle(p, answer) {
		return ErrPromptNotFound
	}
	g.log.Debug().Str("prompt_id", id).Bool("answer", answer).Msg("prompt resolved")
	return nil
}

// settle removes p from the pending set and delivers answer if p has not
// been answered yet.
func (g *Gate) settle(p *pending, answer bool) bool {
	g.mu.Lock()
	delete(g.prompts, p.prompt.ID)
	g.mu.Unlock()
	return p.resolve(answer)
}

// Pending lists open prompts, oldest first.
func (g *Gate) Pending() []Prompt {
	g.mu.Lock()
	out := make([]Prompt, 0, len(g.prompts))
	for _, p := range g.prompts {
		out = append(out, p.prompt)
	}
	g.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close answers every open prompt with false and refuses new ones.
func (g *Gate) Close() {
	g.mu.Lock()
	g.closed = true
	open := make([]*pending, 0, len(g.prompts))
	for id, p := range g.prompts {
		open = append(open, p)
		delete(g.prompts, id)
	}
	g.mu.Unlock()

	for _, p := range open {
		p.resolve(false)
	}
}
