package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
	"github.com/skillcam-io/skillcam-api/pkg/ai"
	"github.com/skillcam-io/skillcam-api/pkg/storage"
)

var (
	// ErrAnalysisUnavailable indicates no AI evaluator is configured.
	ErrAnalysisUnavailable = errors.New("analysis is not available")
	// ErrNoVideo indicates the submission has no recording to analyse.
	ErrNoVideo = errors.New("submission has no video")
)

// URLSigner mints read URLs so the evaluator can fetch the recording.
type URLSigner interface {
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}

// AnalysisService runs the AI evaluation pipeline for a submission on demand
// and records the result, which moves the submission to ai-evaluated.
type AnalysisService interface {
	Analyze(ctx context.Context, caller middleware.AuthUser, submissionID string) (models.AIEvaluation, error)
}

type analysisService struct {
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	signer      URLSigner
	evaluator   ai.Evaluator
	readTTL     time.Duration
	cache       *SubmissionCache
	logger      zerolog.Logger
}

// NewAnalysisService constructs an AnalysisService. A nil evaluator is legal
// and makes every Analyze call fail with ErrAnalysisUnavailable.
func NewAnalysisService(
	submissions repository.SubmissionRepository,
	evaluations repository.EvaluationRepository,
	signer URLSigner,
	evaluator ai.Evaluator,
	readTTL time.Duration,
	cache *SubmissionCache,
	logger zerolog.Logger,
) AnalysisService {
	return &analysisService{
		submissions: submissions,
		evaluations: evaluations,
		signer:      signer,
		evaluator:   evaluator,
		readTTL:     readTTL,
		cache:       cache,
		logger:      logger.With().Str("component", "analysis_service").Logger(),
	}
}

func (s *analysisService) Analyze(ctx context.Context, caller middleware.AuthUser, submissionID string) (models.AIEvaluation, error) {
	if !caller.IsTrainer() {
		return models.AIEvaluation{}, ErrForbidden
	}

	if s.evaluator == nil {
		return models.AIEvaluation{}, ErrAnalysisUnavailable
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AIEvaluation{}, ErrSubmissionNotFound
		}
		return models.AIEvaluation{}, err
	}

	if _, err := s.evaluations.GetBySubmission(ctx, submission.ID); err == nil {
		return models.AIEvaluation{}, ErrEvaluationExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AIEvaluation{}, err
	}

	videoURL := submission.VideoURL
	if submission.VideoPath != "" {
		videoURL, err = s.signer.SignedURL(ctx, storage.BucketSubmissionVideos, submission.VideoPath, s.readTTL)
		if err != nil {
			return models.AIEvaluation{}, fmt.Errorf("failed to sign video url: %w", err)
		}
	}
	if videoURL == "" {
		return models.AIEvaluation{}, ErrNoVideo
	}

	result, err := s.evaluator.Evaluate(ctx, ai.SubmissionInput{
		TaskName:   submission.TaskName,
		ToolType:   submission.ToolType,
		Difficulty: submission.Difficulty,
		Notes:      submission.Notes,
		VideoURL:   videoURL,
	})
	if err != nil {
		return models.AIEvaluation{}, fmt.Errorf("evaluation failed: %w", err)
	}

	evaluation := models.AIEvaluation{
		SubmissionID:   submission.ID,
		Accuracy:       result.Accuracy,
		Stability:      result.Stability,
		CompletionTime: result.CompletionTime,
		ToolUsage:      result.ToolUsage,
		OverallScore:   result.OverallScore,
		Feedback:       result.Feedback,
		AnalysisPoints: result.AnalysisPoints,
	}

	if err := s.evaluations.CreateAndMarkEvaluated(ctx, &evaluation); err != nil {
		return models.AIEvaluation{}, err
	}

	s.cache.Invalidate(ctx, submission.UserID)
	s.logger.Info().
		Str("submission_id", submission.ID).
		Int("overall_score", evaluation.OverallScore).
		Msg("analysis completed")

	return evaluation, nil
}
