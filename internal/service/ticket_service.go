package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"ticketdesk/internal/confirm"
	"ticketdesk/internal/models"
	"ticketdesk/internal/notify"
	"ticketdesk/internal/repository"
)

const deletePrompt = "Delete this ticket?"

type TicketInput struct {
	Title       string `json:"title"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

func (in TicketInput) normalize() TicketInput {
	return TicketInput{
		Title:       strings.TrimSpace(in.Title),
		Status:      strings.TrimSpace(in.Status),
		Priority:    strings.TrimSpace(in.Priority),
		Description: strings.TrimSpace(in.Description),
	}
}

type TicketService struct {
	store    *repository.Store
	gate     *confirm.Gate
	notifier notify.Sink
	clock    clockwork.Clock
	log      zerolog.Logger

	mu        sync.Mutex
	listeners []func(Summary)
}

func NewTicketService(store *repository.Store, gate *confirm.Gate, notifier notify.Sink, clock clockwork.Clock, log zerolog.Logger) *TicketService {
	return &TicketService{
		store:    store,
		gate:     gate,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// OnChange registers fn to receive the recomputed summary after every
// successful mutation.
func (s *TicketService) OnChange(fn func(Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *TicketService) List(ctx context.Context) ([]models.Ticket, error) {
	return s.store.LoadTickets(ctx)
}

func (s *TicketService) Get(ctx context.Context, id int64) (models.Ticket, error) {
	tickets, err := s.store.LoadTickets(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	if i := indexOf(tickets, id); i >= 0 {
		return tickets[i], nil
	}
	return models.Ticket{}, ErrTicketNotFound
}

func (s *TicketService) Summary(ctx context.Context) (Summary, error) {
	tickets, err := s.store.LoadTickets(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tickets), nil
}

func (s *TicketService) Create(ctx context.Context, input TicketInput) (models.Ticket, error) {
	input = input.normalize()
	if err := ValidateTicket(input.Title, input.Status, input.Priority); err != nil {
		return models.Ticket{}, err
	}

	var created models.Ticket
	var snapshot []models.Ticket
	err := s.store.UpdateTickets(ctx, func(tickets []models.Ticket) ([]models.Ticket, error) {
		now := s.clock.Now()
		created = ticketFrom(input, nextID(tickets, now.UnixMilli()), now)
		snapshot = append(tickets, created)
		return snapshot, nil
	})
	if err != nil {
		return models.Ticket{}, err
	}

	s.log.Info().Int64("ticket_id", created.ID).Msg("ticket created")
	s.notifier.Notify("Ticket created", notify.KindSuccess, 0)
	s.changed(snapshot)
	return created, nil
}

// Update replaces every field of the ticket except its id. The creation
// time is reset to now.
func (s *TicketService) Update(ctx context.Context, id int64, input TicketInput) (models.Ticket, error) {
	input = input.normalize()
	if err := ValidateTicket(input.Title, input.Status, input.Priority); err != nil {
		return models.Ticket{}, err
	}

	var updated models.Ticket
	var snapshot []models.Ticket
	err := s.store.UpdateTickets(ctx, func(tickets []models.Ticket) ([]models.Ticket, error) {
		i := indexOf(tickets, id)
		if i < 0 {
			return nil, ErrTicketNotFound
		}
		updated = ticketFrom(input, id, s.clock.Now())
		tickets[i] = updated
		snapshot = tickets
		return tickets, nil
	})
	if err != nil {
		return models.Ticket{}, err
	}

	s.log.Info().Int64("ticket_id", id).Msg("ticket updated")
	s.notifier.Notify("Ticket updated", notify.KindSuccess, 0)
	s.changed(snapshot)
	return updated, nil
}

// UpdateAt updates the ticket at position in the current list.
func (s *TicketService) UpdateAt(ctx context.Context, position int, input TicketInput) (models.Ticket, error) {
	id, err := s.resolve(ctx, position)
	if err != nil {
		return models.Ticket{}, err
	}
	return s.Update(ctx, id, input)
}

// Remove asks for confirmation and deletes the ticket if the user agrees.
// It reports whether the ticket was deleted.
func (s *TicketService) Remove(ctx context.Context, id int64) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}

	if !s.gate.Confirm(ctx, deletePrompt) {
		s.log.Debug().Int64("ticket_id", id).Msg("delete declined")
		return false, nil
	}

	var snapshot []models.Ticket
	err := s.store.UpdateTickets(ctx, func(tickets []models.Ticket) ([]models.Ticket, error) {
		i := indexOf(tickets, id)
		if i < 0 {
			return nil, ErrTicketNotFound
		}
		snapshot = append(tickets[:i], tickets[i+1:]...)
		return snapshot, nil
	})
	if err != nil {
		return false, err
	}

	s.log.Info().Int64("ticket_id", id).Msg("ticket deleted")
	s.notifier.Notify("Ticket deleted", notify.KindSuccess, 0)
	s.changed(snapshot)
	return true, nil
}

// RemoveAt deletes the ticket at position in the current list.
func (s *TicketService) RemoveAt(ctx context.Context, position int) (bool, error) {
	id, err := s.resolve(ctx, position)
	if err != nil {
		return false, err
	}
	return s.Remove(ctx, id)
}

func (s *TicketService) resolve(ctx context.Context, position int) (int64, error) {
	tickets, err := s.store.LoadTickets(ctx)
	if err != nil {
		return 0, err
	}
	if position < 0 || position >= len(tickets) {
		return 0, fmt.Errorf("%w: position %d", ErrTicketNotFound, position)
	}
	return tickets[position].ID, nil
}

func (s *TicketService) changed(tickets []models.Ticket) {
	summary := Summarize(tickets)
	s.log.Debug().
		Int("total", summary.Total).
		Int("open", summary.Open).
		Int("closed", summary.Closed).
		Msg("dashboard refreshed")

	s.mu.Lock()
	listeners := append([]func(Summary){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(summary)
	}
}

func ticketFrom(input TicketInput, id int64, now time.Time) models.Ticket {
	return models.Ticket{
		ID:          id,
		Title:       input.Title,
		Status:      models.TicketStatus(input.Status),
		Priority:    models.TicketPriority(input.Priority),
		Description: input.Description,
		CreatedAt:   now,
	}
}

// nextID returns candidate unless an existing ticket already holds it, in
// which case it moves past the largest id in use.
func nextID(tickets []models.Ticket, candidate int64) int64 {
	if indexOf(tickets, candidate) < 0 {
		return candidate
	}
	var maxID int64
	for _, t := range tickets {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}

func indexOf(tickets []models.Ticket, id int64) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}
