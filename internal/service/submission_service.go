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

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionService owns the submission lifecycle and its access rules: a
// trainee sees only their own submissions, a trainer sees all of them.
type SubmissionService interface {
	Create(ctx context.Context, caller middleware.AuthUser, payload dto.SubmissionCreateRequest) (models.Submission, error)
	List(ctx context.Context, caller middleware.AuthUser) ([]dto.SubmissionSummary, error)
	Get(ctx context.Context, caller middleware.AuthUser, id string) (models.Submission, error)
	Details(ctx context.Context, caller middleware.AuthUser, id string) (dto.SubmissionDetails, error)
	// OverrideStatus writes the status directly, bypassing the transition
	// function. Administrative escape hatch, trainers only.
	OverrideStatus(ctx context.Context, caller middleware.AuthUser, id, status string) error
}

type submissionService struct {
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	feedback    repository.FeedbackRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	cache       *SubmissionCache
	logger      zerolog.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	evaluations repository.EvaluationRepository,
	feedback repository.FeedbackRepository,
	validate *validator.Validate,
	cache *SubmissionCache,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		evaluations: evaluations,
		feedback:    feedback,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		cache:       cache,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, caller middleware.AuthUser, payload dto.SubmissionCreateRequest) (models.Submission, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Submission{}, err
	}

	submission := models.Submission{
		UserID:        caller.ID,
		TaskName:      strings.TrimSpace(payload.TaskName),
		ToolType:      strings.TrimSpace(payload.ToolType),
		Difficulty:    strings.TrimSpace(payload.Difficulty),
		Notes:         s.sanitizer.Sanitize(payload.Notes),
		VideoURL:      strings.TrimSpace(payload.VideoURL),
		VideoPath:     strings.TrimSpace(payload.VideoPath),
		VideoSize:     payload.VideoSize,
		VideoMimeType: payload.VideoMimeType,
		VideoDuration: payload.VideoDuration,
		Status:        models.StatusPending,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return models.Submission{}, err
	}

	s.cache.Invalidate(ctx, caller.ID)
	s.logger.Info().Str("submission_id", submission.ID).Str("user_id", caller.ID).Msg("submission created")

	return submission, nil
}

func (s *submissionService) List(ctx context.Context, caller middleware.AuthUser) ([]dto.SubmissionSummary, error) {
	key := listCacheKey(caller.IsTrainer(), caller.ID)
	if cached, ok := s.cache.GetList(ctx, key); ok {
		return cached, nil
	}

	var (
		submissions []models.Submission
		err         error
	)
	if caller.IsTrainer() {
		submissions, err = s.submissions.ListAll(ctx)
	} else {
		submissions, err = s.submissions.ListByUser(ctx, caller.ID)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(submissions))
	for i, submission := range submissions {
		ids[i] = submission.ID
	}

	scores, err := s.evaluations.OverallScores(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.SubmissionSummary, len(submissions))
	for i, submission := range submissions {
		summary := dto.SubmissionSummary{Submission: submission}
		if score, ok := scores[submission.ID]; ok {
			value := score
			summary.AIScore = &value
		}
		summaries[i] = summary
	}

	s.cache.SetList(ctx, key, summaries)

	return summaries, nil
}

func (s *submissionService) Get(ctx context.Context, caller middleware.AuthUser, id string) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	if !caller.IsTrainer() && submission.UserID != caller.ID {
		return models.Submission{}, ErrForbidden
	}

	return submission, nil
}

func (s *submissionService) Details(ctx context.Context, caller middleware.AuthUser, id string) (dto.SubmissionDetails, error) {
	submission, err := s.Get(ctx, caller, id)
	if err != nil {
		return dto.SubmissionDetails{}, err
	}

	details := dto.SubmissionDetails{Submission: submission}

	evaluation, err := s.evaluations.GetBySubmission(ctx, id)
	switch {
	case err == nil:
		details.AIEvaluation = &evaluation
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.SubmissionDetails{}, err
	}

	feedback, err := s.feedback.GetLatestBySubmission(ctx, id)
	switch {
	case err == nil:
		details.TrainerFeedback = &feedback
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.SubmissionDetails{}, err
	}

	return details, nil
}

func (s *submissionService) OverrideStatus(ctx context.Context, caller middleware.AuthUser, id, status string) error {
	if !caller.IsTrainer() {
		return ErrForbidden
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if err := s.submissions.UpdateStatus(ctx, id, models.Status(status)); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, submission.UserID)
	s.logger.Info().Str("submission_id", id).Str("status", status).Msg("status overridden")

	return nil
}
