package service

import (
	"context"

	"dmchat/internal/domain"
)

// UserService provides user-related operations.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) ListActive(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	return s.users.ListActive(ctx, offset, limit)
}

func (s *UserService) SetOnlineStatus(ctx context.Context, id string, isOnline bool) error {
	return s.users.SetOnlineStatus(ctx, id, isOnline)
}
