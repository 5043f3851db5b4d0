package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
)

// WaitlistService owns pre-launch interest signups.
type WaitlistService interface {
	// Join records the signup. A repeated email is a no-op reported via
	// created=false, never an error.
	Join(ctx context.Context, payload dto.WaitlistJoinRequest) (created bool, err error)
}

type waitlistService struct {
	entries   repository.WaitlistRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewWaitlistService constructs a WaitlistService instance.
func NewWaitlistService(entries repository.WaitlistRepository, validate *validator.Validate, logger zerolog.Logger) WaitlistService {
	return &waitlistService{
		entries:   entries,
		validator: validate,
		logger:    logger.With().Str("component", "waitlist_service").Logger(),
	}
}

func (s *waitlistService) Join(ctx context.Context, payload dto.WaitlistJoinRequest) (bool, error) {
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Organization = strings.TrimSpace(payload.Organization)
	payload.RoleFocus = strings.TrimSpace(payload.RoleFocus)

	if err := s.validator.Struct(payload); err != nil {
		return false, err
	}

	entry := models.WaitlistEntry{
		Email:        payload.Email,
		Organization: payload.Organization,
		RoleFocus:    payload.RoleFocus,
	}

	created, err := s.entries.Create(ctx, &entry)
	if err != nil {
		return false, err
	}

	if created {
		s.logger.Info().Str("email", entry.Email).Msg("waitlist signup")
	}

	return created, nil
}
