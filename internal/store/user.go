package store

import (
	"context"
	"fmt"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/model"
)

type userRecord struct {
	user model.User
	hash string
}

func (s *Store) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := s.users[id].user
	return &u, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u := rec.user
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, email, password string) (*model.User, error) {
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(password); err != nil {
		return nil, err
	}

	// cheap early exit; the authoritative check is under the write lock
	if u, _ := s.FindByEmail(ctx, email); u != nil {
		return nil, EmailTaken(email)
	}

	hash, err := auth.HashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", model.ErrInternal, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, EmailTaken(email)
	}
	s.lastUser++
	rec := userRecord{
		user: model.User{ID: s.lastUser, Email: email, CreatedAt: s.now().UTC()},
		hash: hash,
	}
	s.users[rec.user.ID] = rec
	s.byEmail[email] = rec.user.ID

	u := rec.user
	return &u, nil
}

func (s *Store) ValidateCredentials(_ context.Context, email, password string) (*model.User, error) {
	s.mu.RLock()
	rec, ok := s.users[s.byEmail[email]]
	s.mu.RUnlock()

	hash := s.dummy
	if ok {
		hash = rec.hash
	}
	// always compare, found or not
	if !auth.CheckPassword(hash, password) || !ok {
		return nil, model.ErrAuth
	}
	u := rec.user
	return &u, nil
}

// EmailTaken is the conflict returned for a duplicate registration.
func EmailTaken(email string) error {
	return fmt.Errorf("%w: email %s is already registered", model.ErrConflict, email)
}
