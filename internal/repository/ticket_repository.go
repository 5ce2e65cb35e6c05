package repository

import (
	"context"

	"ticketdesk/internal/models"
)

func (s *Store) LoadTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	found, err := s.read(ctx, ticketsKey, &tickets)
	if err != nil {
		return nil, err
	}
	if !found || tickets == nil {
		return []models.Ticket{}, nil
	}
	return tickets, nil
}

func (s *Store) SaveTickets(ctx context.Context, tickets []models.Ticket) error {
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return s.write(ctx, ticketsKey, tickets)
}

// UpdateTickets re-reads the tickets collection, hands it to fn, and
// writes back whatever fn returns. Nothing is written when fn fails.
func (s *Store) UpdateTickets(ctx context.Context, fn func([]models.Ticket) ([]models.Ticket, error)) error {
	s.ticketsMu.Lock()
	defer s.ticketsMu.Unlock()

	tickets, err := s.LoadTickets(ctx)
	if err != nil {
		return err
	}
	next, err := fn(tickets)
	if err != nil {
		return err
	}
	return s.SaveTickets(ctx, next)
}
