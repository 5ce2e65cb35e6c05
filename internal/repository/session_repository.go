package repository

import (
	"context"

	"ticketdesk/internal/models"
)

// LoadSession returns nil when no session is stored or the stored value
// cannot be decoded.
func (s *Store) LoadSession(ctx context.Context) (*models.Session, error) {
	var session models.Session
	found, err := s.read(ctx, sessionKey, &session)
	if err != nil || !found {
		return nil, err
	}
	// A JSON null decodes without error but carries no session.
	if session.Email == "" && session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

// SaveSession replaces any existing session.
func (s *Store) SaveSession(ctx context.Context, session models.Session) error {
	return s.write(ctx, sessionKey, session)
}

func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.kv.Delete(ctx, s.key(sessionKey))
}
