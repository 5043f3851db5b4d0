package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
)

// ErrFeedbackNotFound indicates no feedback exists for the submission.
var ErrFeedbackNotFound = errors.New("feedback not found")

// FeedbackService owns trainer reviews. Writing feedback also moves the
// owning submission's status: approved feedback promotes it, a revision
// request demotes it, in the same transaction.
type FeedbackService interface {
	Create(ctx context.Context, caller middleware.AuthUser, payload dto.FeedbackCreateRequest) (models.TrainerFeedback, error)
	GetLatest(ctx context.Context, caller middleware.AuthUser, submissionID string) (models.TrainerFeedback, error)
}

type feedbackService struct {
	feedback    repository.FeedbackRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	cache       *SubmissionCache
	logger      zerolog.Logger
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(
	feedback repository.FeedbackRepository,
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	cache *SubmissionCache,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackService{
		feedback:    feedback,
		submissions: submissions,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		cache:       cache,
		logger:      logger.With().Str("component", "feedback_service").Logger(),
	}
}

func (s *feedbackService) Create(ctx context.Context, caller middleware.AuthUser, payload dto.FeedbackCreateRequest) (models.TrainerFeedback, error) {
	if !caller.IsTrainer() {
		return models.TrainerFeedback{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return models.TrainerFeedback{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TrainerFeedback{}, ErrSubmissionNotFound
		}
		return models.TrainerFeedback{}, err
	}

	nextSteps := make([]string, 0, len(payload.NextSteps))
	for _, step := range payload.NextSteps {
		step = strings.TrimSpace(s.sanitizer.Sanitize(step))
		if step != "" {
			nextSteps = append(nextSteps, step)
		}
	}

	feedback := models.TrainerFeedback{
		SubmissionID:      submission.ID,
		TrainerID:         caller.ID,
		OverallAssessment: s.sanitizer.Sanitize(payload.OverallAssessment),
		TrainerScore:      payload.TrainerScore,
		NextSteps:         nextSteps,
		AttachmentPaths:   payload.AttachmentPaths,
		AttachmentNames:   payload.AttachmentNames,
		Approved:          *payload.Approved,
	}

	status := submission.Status.Transition(models.FeedbackEvent(feedback.Approved))
	if err := s.feedback.CreateAndSetStatus(ctx, &feedback, status); err != nil {
		return models.TrainerFeedback{}, err
	}

	s.cache.Invalidate(ctx, submission.UserID)
	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("trainer_id", caller.ID).
		Bool("approved", feedback.Approved).
		Str("status", string(status)).
		Msg("feedback recorded")

	return feedback, nil
}

func (s *feedbackService) GetLatest(ctx context.Context, caller middleware.AuthUser, submissionID string) (models.TrainerFeedback, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TrainerFeedback{}, ErrSubmissionNotFound
		}
		return models.TrainerFeedback{}, err
	}

	if !caller.IsTrainer() && submission.UserID != caller.ID {
		return models.TrainerFeedback{}, ErrForbidden
	}

	feedback, err := s.feedback.GetLatestBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TrainerFeedback{}, ErrFeedbackNotFound
		}
		return models.TrainerFeedback{}, err
	}

	return feedback, nil
}
