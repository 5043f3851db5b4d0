package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/dto"
	"github.com/skillcam-io/skillcam-api/internal/middleware"
	"github.com/skillcam-io/skillcam-api/internal/models"
	"github.com/skillcam-io/skillcam-api/internal/repository"
	"github.com/skillcam-io/skillcam-api/pkg/ai"
)

type fixedEvaluator struct {
	lastInput ai.SubmissionInput
}

func (e *fixedEvaluator) Evaluate(_ context.Context, input ai.SubmissionInput) (ai.EvaluationResult, error) {
	e.lastInput = input
	return ai.EvaluationResult{
		Accuracy:       84,
		Stability:      80,
		ToolUsage:      77,
		OverallScore:   81,
		CompletionTime: "3m 40s",
		Feedback:       "Confident handling.",
		AnalysisPoints: []string{"good pacing"},
	}, nil
}

type fixedSigner struct{}

func (fixedSigner) SignedURL(_ context.Context, bucket, path string, _ time.Duration) (string, error) {
	return "https://store.test/" + bucket + "/" + path + "?sig=read", nil
}

func setupAnalysisService(t *testing.T, db *gorm.DB, evaluator ai.Evaluator) AnalysisService {
	t.Helper()

	return NewAnalysisService(
		repository.NewSubmissionRepository(db),
		repository.NewEvaluationRepository(db),
		fixedSigner{},
		evaluator,
		time.Hour,
		nil,
		zerolog.New(io.Discard),
	)
}

func TestAnalysisServiceRecordsEvaluation(t *testing.T) {
	db := setupSubmissionDB(t, "file:analysis_svc_run?mode=memory&cache=shared")
	submissions := setupSubmissionService(t, db, nil)
	evaluator := &fixedEvaluator{}
	svc := setupAnalysisService(t, db, evaluator)
	ctx := context.Background()

	owner := middleware.AuthUser{ID: "trainee-1", Role: models.RoleTrainee}
	trainer := middleware.AuthUser{ID: "trainer-1", Role: models.RoleTrainer}

	submission, err := submissions.Create(ctx, owner, dto.SubmissionCreateRequest{
		TaskName:   "Knot tying",
		ToolType:   "forceps",
		Difficulty: "intermediate",
		VideoPath:  "trainee-1/1700000000000-clip.webm",
	})
	require.NoError(t, err)

	evaluation, err := svc.Analyze(ctx, trainer, submission.ID)
	require.NoError(t, err)
	require.Equal(t, 81, evaluation.OverallScore)
	require.Contains(t, evaluator.lastInput.VideoURL, "sig=read")
	require.Equal(t, "Knot tying", evaluator.lastInput.TaskName)

	stored, err := submissions.Get(ctx, owner, submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAIEvaluated, stored.Status)

	// A second run is rejected rather than silently double-writing.
	_, err = svc.Analyze(ctx, trainer, submission.ID)
	require.ErrorIs(t, err, ErrEvaluationExists)
}

func TestAnalysisServiceAccessAndAvailability(t *testing.T) {
	db := setupSubmissionDB(t, "file:analysis_svc_guard?mode=memory&cache=shared")
	submissions := setupSubmissionService(t, db, nil)
	ctx := context.Background()

	owner := middleware.AuthUser{ID: "trainee-1", Role: models.RoleTrainee}
	trainer := middleware.AuthUser{ID: "trainer-1", Role: models.RoleTrainer}

	submission, err := submissions.Create(ctx, owner, dto.SubmissionCreateRequest{TaskName: "A", ToolType: "scalpel", Difficulty: "beginner"})
	require.NoError(t, err)

	withEvaluator := setupAnalysisService(t, db, &fixedEvaluator{})
	_, err = withEvaluator.Analyze(ctx, owner, submission.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = withEvaluator.Analyze(ctx, trainer, submission.ID)
	require.ErrorIs(t, err, ErrNoVideo)

	_, err = withEvaluator.Analyze(ctx, trainer, "missing")
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	withoutEvaluator := setupAnalysisService(t, db, nil)
	_, err = withoutEvaluator.Analyze(ctx, trainer, submission.ID)
	require.ErrorIs(t, err, ErrAnalysisUnavailable)
}
