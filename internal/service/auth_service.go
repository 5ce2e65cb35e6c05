package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"ticketdesk/internal/config"
	"ticketdesk/internal/confirm"
	"ticketdesk/internal/ids"
	"ticketdesk/internal/models"
	"ticketdesk/internal/navigation"
	"ticketdesk/internal/notify"
	"ticketdesk/internal/repository"
	"ticketdesk/internal/security"
)

const logoutPrompt = "Are you sure you want to logout?"

type AuthService struct {
	store     *repository.Store
	passwords security.PasswordScheme
	gate      *confirm.Gate
	notifier  notify.Sink
	nav       *navigation.Navigator
	clock     clockwork.Clock
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewAuthService(
	store *repository.Store,
	passwords security.PasswordScheme,
	gate *confirm.Gate,
	notifier notify.Sink,
	nav *navigation.Navigator,
	clock clockwork.Clock,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		passwords: passwords,
		gate:      gate,
		notifier:  notifier,
		nav:       nav,
		clock:     clock,
		cfg:       cfg,
		log:       log,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type SignupResult struct {
	User     models.User
	Redirect navigation.Intent
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (SignupResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	password := strings.TrimSpace(input.Password)

	if err := validateSignup(name, email, password); err != nil {
		s.notifyValidation(err)
		return SignupResult{}, err
	}

	stored, err := s.passwords.Hash(password)
	if err != nil {
		return SignupResult{}, err
	}
	user := models.User{Name: name, Email: email, Password: stored}

	err = s.store.UpdateUsers(ctx, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return nil, ErrDuplicateEmail
			}
		}
		return append(users, user), nil
	})
	if errors.Is(err, ErrDuplicateEmail) {
		s.notifier.Notify("Email already registered. Please log in.", notify.KindError, 0)
		return SignupResult{}, err
	}
	if err != nil {
		return SignupResult{}, err
	}

	s.log.Info().Str("email", email).Msg("user registered")
	s.notifier.Notify("Signup successful — please login", notify.KindSuccess, 0)
	intent := s.nav.Redirect(navigation.PageLogin, s.cfg.UI.SignupRedirect)

	return SignupResult{User: user, Redirect: intent}, nil
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Session     models.Session
	AccessToken string
	Redirect    navigation.Intent
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	password := strings.TrimSpace(input.Password)

	if err := validateLogin(email, password); err != nil {
		s.notifyValidation(err)
		return LoginResult{}, err
	}

	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return LoginResult{}, err
	}

	var user *models.User
	for i := range users {
		if strings.EqualFold(users[i].Email, email) && s.passwords.Verify(password, users[i].Password) {
			user = &users[i]
			break
		}
	}
	if user == nil {
		s.notifier.Notify("Invalid email or password", notify.KindError, 0)
		return LoginResult{}, ErrInvalidCredentials
	}

	session := models.Session{Email: user.Email, Token: ids.New()}
	accessToken, err := security.GenerateSessionToken(
		s.cfg.Security.SessionSecret,
		session.Email,
		session.Token,
		s.clock.Now(),
		s.cfg.Security.SessionTTL,
	)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return LoginResult{}, err
	}

	s.log.Info().Str("email", session.Email).Msg("session issued")
	s.notifier.Notify("Login successful", notify.KindSuccess, 0)
	intent := s.nav.Redirect(navigation.PageDashboard, s.cfg.UI.LoginRedirect)

	return LoginResult{Session: session, AccessToken: accessToken, Redirect: intent}, nil
}

// Logout asks for confirmation and clears the session if the user agrees.
// It reports whether the session was cleared.
func (s *AuthService) Logout(ctx context.Context) (bool, error) {
	if !s.gate.Confirm(ctx, logoutPrompt) {
		return false, nil
	}

	if err := s.store.ClearSession(ctx); err != nil {
		return false, err
	}

	s.log.Info().Msg("session cleared")
	s.notifier.Notify("Logged out — redirecting", notify.KindInfo, 0)
	s.nav.Redirect(navigation.PageLogin, s.cfg.UI.LogoutRedirect)
	return true, nil
}

// CurrentSession returns the live session or nil.
func (s *AuthService) CurrentSession(ctx context.Context) (*models.Session, error) {
	return s.store.LoadSession(ctx)
}

// Authenticate accepts a bearer token only if it refers to the session
// that is currently stored.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (models.Session, error) {
	claims, err := security.ParseSessionToken(bearer, s.cfg.Security.SessionSecret, s.clock.Now())
	if err != nil {
		return models.Session{}, err
	}

	session, err := s.store.LoadSession(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if session == nil || session.Token != claims.SessionToken || session.Email != claims.Email {
		return models.Session{}, ErrNoSession
	}
	return *session, nil
}

func (s *AuthService) notifyValidation(err error) {
	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		s.notifier.Notify(verr.Fields[0].Message, notify.KindError, 0)
	}
}
