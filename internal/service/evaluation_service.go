package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
)

var (
	// ErrEvaluationNotFound indicates no evaluation exists for the submission.
	ErrEvaluationNotFound = errors.New("evaluation not found")
	// ErrEvaluationExists indicates the submission was already evaluated.
	ErrEvaluationExists = errors.New("evaluation already exists for submission")
	// ErrEvaluationSchema indicates the intake payload violates the contract.
	ErrEvaluationSchema = errors.New("evaluation payload does not match schema")
)

// evaluationSchema is the wire contract for evaluation intake. The payload is
// checked structurally before it is bound, so a malformed pipeline delivery is
// rejected with a precise reason instead of silently zeroing fields.
const evaluationSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["submissionId", "accuracy", "stability", "completionTime", "toolUsage", "overallScore"],
  "properties": {
    "submissionId": {"type": "string", "minLength": 1},
    "accuracy": {"type": "integer", "minimum": 0, "maximum": 100},
    "stability": {"type": "integer", "minimum": 0, "maximum": 100},
    "completionTime": {"type": "string", "minLength": 1},
    "toolUsage": {"type": "integer", "minimum": 0, "maximum": 100},
    "overallScore": {"type": "integer", "minimum": 0, "maximum": 100},
    "feedback": {"type": "string"},
    "analysisPoints": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": false
}`

var compiledEvaluationSchema = jsonschema.MustCompileString("evaluation.json", evaluationSchema)

// EvaluationService owns AI evaluation intake and retrieval.
type EvaluationService interface {
	// Create validates and records an evaluation delivered by the analysis
	// pipeline. Recording it moves the submission to ai-evaluated.
	Create(ctx context.Context, rawBody []byte) (models.AIEvaluation, error)
	GetBySubmission(ctx context.Context, submissionID string) (models.AIEvaluation, error)
}

type evaluationService struct {
	evaluations repository.EvaluationRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	cache       *SubmissionCache
	logger      zerolog.Logger
}

// NewEvaluationService constructs an EvaluationService instance.
func NewEvaluationService(
	evaluations repository.EvaluationRepository,
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	cache *SubmissionCache,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		evaluations: evaluations,
		submissions: submissions,
		validator:   validate,
		cache:       cache,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
	}
}

func (s *evaluationService) Create(ctx context.Context, rawBody []byte) (models.AIEvaluation, error) {
	var generic any
	if err := json.Unmarshal(rawBody, &generic); err != nil {
		return models.AIEvaluation{}, fmt.Errorf("%w: %v", ErrEvaluationSchema, err)
	}
	if err := compiledEvaluationSchema.Validate(generic); err != nil {
		return models.AIEvaluation{}, fmt.Errorf("%w: %v", ErrEvaluationSchema, err)
	}

	var payload dto.EvaluationCreateRequest
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return models.AIEvaluation{}, fmt.Errorf("%w: %v", ErrEvaluationSchema, err)
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.AIEvaluation{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
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

	evaluation := models.AIEvaluation{
		SubmissionID:   submission.ID,
		Accuracy:       *payload.Accuracy,
		Stability:      *payload.Stability,
		CompletionTime: payload.CompletionTime,
		ToolUsage:      *payload.ToolUsage,
		OverallScore:   *payload.OverallScore,
		Feedback:       payload.Feedback,
		AnalysisPoints: payload.AnalysisPoints,
	}

	if err := s.evaluations.CreateAndMarkEvaluated(ctx, &evaluation); err != nil {
		return models.AIEvaluation{}, err
	}

	s.cache.Invalidate(ctx, submission.UserID)
	s.logger.Info().
		Str("submission_id", submission.ID).
		Int("overall_score", evaluation.OverallScore).
		Msg("evaluation recorded")

	return evaluation, nil
}

func (s *evaluationService) GetBySubmission(ctx context.Context, submissionID string) (models.AIEvaluation, error) {
	evaluation, err := s.evaluations.GetBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AIEvaluation{}, ErrEvaluationNotFound
		}
		return models.AIEvaluation{}, err
	}

	return evaluation, nil
}
