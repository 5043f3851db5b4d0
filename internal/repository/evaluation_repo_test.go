package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/models"
)

func setupEvaluationDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:evaluation_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Submission{}, &models.AIEvaluation{}))
	require.NoError(t, db.Exec("DELETE FROM ai_evaluations").Error)
	require.NoError(t, db.Exec("DELETE FROM submissions").Error)

	return db
}

func createSubmission(t *testing.T, db *gorm.DB, userID string) models.Submission {
	t.Helper()

	submission := models.Submission{
		UserID:     userID,
		TaskName:   "Suturing basics",
		ToolType:   "needle holder",
		Difficulty: "beginner",
		Status:     models.StatusPending,
	}
	require.NoError(t, db.Create(&submission).Error)

	return submission
}

func TestEvaluationRepositoryCreateAndMarkEvaluated(t *testing.T) {
	db := setupEvaluationDB(t)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	submission := createSubmission(t, db, "user-1")

	evaluation := models.AIEvaluation{
		SubmissionID:   submission.ID,
		Accuracy:       80,
		Stability:      75,
		CompletionTime: "4m 12s",
		ToolUsage:      78,
		OverallScore:   82,
		Feedback:       "Solid control throughout.",
		AnalysisPoints: []string{"steady grip", "slow knot tying"},
	}
	require.NoError(t, repo.CreateAndMarkEvaluated(ctx, &evaluation))
	require.NotEmpty(t, evaluation.ID)

	var stored models.Submission
	require.NoError(t, db.First(&stored, "id = ?", submission.ID).Error)
	require.Equal(t, models.StatusAIEvaluated, stored.Status)

	fetched, err := repo.GetBySubmission(ctx, submission.ID)
	require.NoError(t, err)
	require.Equal(t, 82, fetched.OverallScore)
	require.Equal(t, []string{"steady grip", "slow knot tying"}, []string(fetched.AnalysisPoints))
}

func TestEvaluationRepositoryOverallScores(t *testing.T) {
	db := setupEvaluationDB(t)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	evaluated := createSubmission(t, db, "user-1")
	pending := createSubmission(t, db, "user-1")

	require.NoError(t, repo.CreateAndMarkEvaluated(ctx, &models.AIEvaluation{
		SubmissionID:   evaluated.ID,
		Accuracy:       90,
		Stability:      88,
		CompletionTime: "3m",
		ToolUsage:      85,
		OverallScore:   88,
	}))

	scores, err := repo.OverallScores(ctx, []string{evaluated.ID, pending.ID})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, 88, scores[evaluated.ID])

	empty, err := repo.OverallScores(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
