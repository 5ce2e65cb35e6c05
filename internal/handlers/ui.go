package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ticketdesk/internal/navigation"
)

type pageResponse struct {
	Page    navigation.Page     `json:"page"`
	Allowed bool                `json:"allowed"`
	Pending []navigation.Intent `json:"pending"`
}

// Page records a page visit and reports whether its content may be shown.
func (h HandlerSet) Page(c *gin.Context) {
	page := navigation.ParsePage(strings.TrimPrefix(c.Param("page"), "/"))

	allowed, err := h.guard.Enter(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse{
		Page:    page,
		Allowed: allowed,
		Pending: h.runtime.Navigator.Pending(),
	})
}

func (h HandlerSet) Navigation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"current": h.runtime.Navigator.Current(),
		"pending": h.runtime.Navigator.Pending(),
	})
}

func (h HandlerSet) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"notifications": h.runtime.Feed.Visible(),
	})
}

func (h HandlerSet) ListConfirmations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"prompts": h.runtime.Gate.Pending(),
	})
}

type resolveRequest struct {
	Confirm *bool `json:"confirm" binding:"required"`
}

func (h HandlerSet) ResolveConfirmation(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.runtime.Gate.Resolve(c.Param("id"), *req.Confirm); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
