package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketdesk/internal/navigation"
	"ticketdesk/internal/service"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":     userResponse{Name: result.User.Name, Email: result.User.Email},
		"redirect": result.Redirect,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string            `json:"accessToken"`
	Email       string            `json:"email"`
	Redirect    navigation.Intent `json:"redirect"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		Email:       result.Session.Email,
		Redirect:    result.Redirect,
	})
}

// Logout waits on a confirmation prompt, so it is accepted immediately and
// completed in the background.
func (h HandlerSet) Logout(c *gin.Context) {
	h.goDetached(c, "logout", func(ctx context.Context) error {
		_, err := h.authService.Logout(ctx)
		return err
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "awaiting_confirmation"})
}
