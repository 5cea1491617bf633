package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campavao/my-places/internal/places/domain"
)

// UserService manages profile documents.
type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateProfile writes the profile created right after sign-up. An existing
// profile keeps its place list.
func (s *UserService) CreateProfile(ctx context.Context, id, name, email string) (domain.UserProfile, error) {
	profile, err := s.users.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		profile = domain.UserProfile{ID: id, PlaceIDs: []string{}}
	case err != nil:
		return domain.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}
	profile.Name = strings.TrimSpace(name)
	profile.Email = strings.TrimSpace(email)
	if err := s.users.Put(ctx, profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (domain.UserProfile, error) {
	return s.users.Get(ctx, id)
}
