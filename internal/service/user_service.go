package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
)

var (
	// ErrUserNotFound indicates no local record exists for the identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates a role outside the closed trainee/trainer set.
	ErrInvalidRole = errors.New("invalid role")
)

// UserService owns local user records for identity-provider accounts.
type UserService interface {
	// Resolve returns the local user for the identity, provisioning the row
	// on first sight. Satisfies middleware.UserResolver.
	Resolve(ctx context.Context, identity middleware.Identity) (models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	ChangeRole(ctx context.Context, id, role string) (models.User, error)
}

type userService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(users repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Resolve(ctx context.Context, identity middleware.Identity) (models.User, error) {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	role := identity.Role
	if !models.ValidRole(role) {
		role = models.RoleTrainee
	}

	user = models.User{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        role,
	}

	// Upsert keeps a concurrent first-sight race from producing two rows.
	if err := s.users.Upsert(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("provisioned user")

	return s.users.GetByID(ctx, identity.ID)
}

func (s *userService) Get(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *userService) ChangeRole(ctx context.Context, id, role string) (models.User, error) {
	if !models.ValidRole(role) {
		return models.User{}, ErrInvalidRole
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if user.Role != role {
		if err := s.users.UpdateRole(ctx, id, role); err != nil {
			return models.User{}, err
		}
		user.Role = role
	}

	return user, nil
}
