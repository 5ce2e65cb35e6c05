package service

import "ticketdesk/internal/models"

type Summary struct {
	Total  int `json:"total"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// Summarize counts tickets. In-progress tickets count as open.
func Summarize(tickets []models.Ticket) Summary {
	s := Summary{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case models.TicketStatusOpen, models.TicketStatusInProgress:
			s.Open++
		case models.TicketStatusClosed:
			s.Closed++
		}
	}
	return s
}
