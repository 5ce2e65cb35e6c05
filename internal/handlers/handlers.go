package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"ticketdesk/internal/config"
	"ticketdesk/internal/confirm"
	"ticketdesk/internal/middleware"
	"ticketdesk/internal/navigation"
	"ticketdesk/internal/notify"
	"ticketdesk/internal/repository"
	"ticketdesk/internal/security"
	"ticketdesk/internal/service"
)

// Runtime groups the in-process UI state shared by every request.
type Runtime struct {
	Clock     clockwork.Clock
	Gate      *confirm.Gate
	Feed      *notify.Feed
	Navigator *navigation.Navigator
	Notifier  notify.Sink
}

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	store         *repository.Store
	runtime       Runtime
	authService   *service.AuthService
	ticketService *service.TicketService
	guard         *service.Guard
	background    *sync.WaitGroup
}

func NewHandlerSet(log zerolog.Logger, store *repository.Store, runtime Runtime, cfg *config.AppConfig) (HandlerSet, error) {
	passwords, err := security.NewPasswordScheme(cfg.Security.PasswordHashing)
	if err != nil {
		return HandlerSet{}, err
	}

	auth := service.NewAuthService(store, passwords, runtime.Gate, runtime.Notifier, runtime.Navigator, runtime.Clock, cfg, log)
	tickets := service.NewTicketService(store, runtime.Gate, runtime.Notifier, runtime.Clock, log)
	guard := service.NewGuard(store, runtime.Notifier, runtime.Navigator, cfg.UI.GuardRedirect, log)

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		store:         store,
		runtime:       runtime,
		authService:   auth,
		ticketService: tickets,
		guard:         guard,
		background:    &sync.WaitGroup{},
	}, nil
}

// Tickets exposes the ticket service so other components can subscribe to
// changes.
func (h HandlerSet) Tickets() *service.TicketService {
	return h.ticketService
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		v1.GET("/pages/*page", h.Page)
		v1.GET("/navigation", h.Navigation)
		v1.GET("/notifications", h.Notifications)
		v1.GET("/confirmations", h.ListConfirmations)
		v1.POST("/confirmations/:id", h.ResolveConfirmation)

		auth := v1.Group("/auth")
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	protected := v1.Group("")
	protected.Use(middleware.SessionGuard(h.authService))
	{
		protected.GET("/dashboard", h.Dashboard)

		tickets := protected.Group("/tickets")
		tickets.GET("", h.ListTickets)
		tickets.POST("", h.CreateTicket)
		tickets.GET("/:id", h.GetTicket)
		tickets.PUT("/:id", h.UpdateTicket)
		tickets.DELETE("/:id", h.DeleteTicket)
		tickets.PUT("/at/:position", h.UpdateTicketAt)
		tickets.DELETE("/at/:position", h.DeleteTicketAt)
	}
}

// Wait blocks until every operation started in the background has
// finished.
func (h HandlerSet) Wait() {
	h.background.Wait()
}

// goDetached runs fn outside the request lifetime. Operations that wait on
// a confirmation outlive the request that started them.
func (h HandlerSet) goDetached(c *gin.Context, op string, fn func(ctx context.Context) error) {
	ctx := context.WithoutCancel(c.Request.Context())
	requestID := middleware.RequestIDFrom(c)

	h.background.Add(1)
	go func() {
		defer h.background.Done()
		if err := fn(ctx); err != nil {
			h.log.Error().Err(err).Str("op", op).Str("request_id", requestID).Msg("background operation failed")
		}
	}()
}

func (h HandlerSet) fail(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "fields": verr.Fields})
	case errors.Is(err, service.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket_not_found"})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email_registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, confirm.ErrPromptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "prompt_not_found"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}
