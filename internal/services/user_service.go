package services

import (
	"context"
	"fmt"

	"github.com/nutrisync/nutrisync-bot/internal/domain"
)

// UserService handles profile registration and lookup
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterUser returns the existing profile for the Telegram user or creates
// a fresh FREE-tier one with the configured starting credits.
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*domain.UserProfile, error) {
	user, err := s.users.GetOrCreate(ctx, telegramID, username, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// GetUserByTelegramID looks up a profile by Telegram ID
func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.UserProfile, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
