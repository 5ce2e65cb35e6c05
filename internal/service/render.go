package service

import (
	"html"
	"iter"

	"ticketdesk/internal/models"
)

const (
	EmptyListMessage   = "No tickets found. Create one above."
	NoDescriptionLabel = "No description"
)

// Row is one ticket prepared for display. Text fields are HTML-escaped.
type Row struct {
	Position       int    `json:"position"`
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	StatusClass    string `json:"statusClass"`
	HasDescription bool   `json:"hasDescription"`
}

// RenderList yields one row per ticket in stored order.
func RenderList(tickets []models.Ticket) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i, t := range tickets {
			if !yield(renderRow(i, t)) {
				return
			}
		}
	}
}

func renderRow(position int, t models.Ticket) Row {
	row := Row{
		Position:       position,
		ID:             t.ID,
		Title:          html.EscapeString(t.Title),
		Priority:       html.EscapeString(string(t.Priority)),
		Status:         html.EscapeString(string(t.Status)),
		StatusClass:    StatusClass(t.Status),
		HasDescription: t.Description != "",
	}
	if row.HasDescription {
		row.Description = html.EscapeString(t.Description)
	} else {
		row.Description = NoDescriptionLabel
	}
	return row
}

// StatusClass returns the styling class for status. Unknown values are
// styled as closed.
func StatusClass(status models.TicketStatus) string {
	switch status {
	case models.TicketStatusOpen:
		return "status-open"
	case models.TicketStatusInProgress:
		return "status-in_progress"
	}
	return "status-closed"
}
