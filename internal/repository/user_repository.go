package repository

import (
	"context"

	"ticketdesk/internal/models"
)

func (s *Store) LoadUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	found, err := s.read(ctx, usersKey, &users)
	if err != nil {
		return nil, err
	}
	if !found || users == nil {
		return []models.User{}, nil
	}
	return users, nil
}

func (s *Store) SaveUsers(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	return s.write(ctx, usersKey, users)
}

// UpdateUsers re-reads the users collection, hands it to fn, and writes
// back whatever fn returns. Nothing is written when fn fails.
func (s *Store) UpdateUsers(ctx context.Context, fn func([]models.User) ([]models.User, error)) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.LoadUsers(ctx)
	if err != nil {
		return err
	}
	next, err := fn(users)
	if err != nil {
		return err
	}
	return s.SaveUsers(ctx, next)
}
