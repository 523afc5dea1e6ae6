package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"arc-backend/internal/model"
	"arc-backend/internal/repository"
	"arc-backend/utilities"
)

// SessionService signs users in by email and issues arc_session tokens.
type SessionService interface {
	StartSession(ctx context.Context, email string) (*model.User, string, error)
}

type sessionService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewSessionService(users repository.UserRepository) SessionService {
	return &sessionService{users: users, now: time.Now}
}

// StartSession - Finds or creates the user for email and signs a session token
func (s *sessionService) StartSession(ctx context.Context, email string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: email", ErrInvalidInput)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &model.User{ID: uuid.NewString(), Email: email}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, "", fmt.Errorf("creating user: %w", err)
		}
	case err != nil:
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	token, err := utilities.GenerateSessionToken(user.ID, user.EmailVerified, s.now())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
