package handlers

import (
	"context"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"ticketdesk/internal/service"
)

type ticketListResponse struct {
	Rows    []service.Row   `json:"rows"`
	Summary service.Summary `json:"summary"`
	Empty   string          `json:"empty,omitempty"`
}

func (h HandlerSet) Dashboard(c *gin.Context) {
	summary, err := h.ticketService.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h HandlerSet) ListTickets(c *gin.Context) {
	tickets, err := h.ticketService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := ticketListResponse{
		Rows:    slices.Collect(service.RenderList(tickets)),
		Summary: service.Summarize(tickets),
	}
	if resp.Rows == nil {
		resp.Rows = []service.Row{}
		resp.Empty = service.EmptyListMessage
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) CreateTicket(c *gin.Context) {
	var req service.TicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h HandlerSet) GetTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h HandlerSet) UpdateTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var req service.TicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.ticketService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h HandlerSet) UpdateTicketAt(c *gin.Context) {
	position, ok := ticketPosition(c)
	if !ok {
		return
	}
	var req service.TicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.ticketService.UpdateAt(c.Request.Context(), position, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h HandlerSet) DeleteTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	if _, err := h.ticketService.Get(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	h.goDetached(c, "delete_ticket", func(ctx context.Context) error {
		_, err := h.ticketService.Remove(ctx, id)
		return err
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "awaiting_confirmation", "id": id})
}

func (h HandlerSet) DeleteTicketAt(c *gin.Context) {
	position, ok := ticketPosition(c)
	if !ok {
		return
	}
	tickets, err := h.ticketService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if position >= len(tickets) {
		h.fail(c, service.ErrTicketNotFound)
		return
	}

	h.goDetached(c, "delete_ticket", func(ctx context.Context) error {
		_, err := h.ticketService.RemoveAt(ctx, position)
		return err
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "awaiting_confirmation", "position": position})
}

func ticketID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_ticket_id"})
		return 0, false
	}
	return id, true
}

func ticketPosition(c *gin.Context) (int, bool) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil || position < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_position"})
		return 0, false
	}
	return position, true
}
