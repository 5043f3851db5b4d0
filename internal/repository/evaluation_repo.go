package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/models"
)

// EvaluationRepository defines data operations for AI evaluations.
type EvaluationRepository interface {
	GetBySubmission(ctx context.Context, submissionID string) (models.AIEvaluation, error)
	// CreateAndMarkEvaluated inserts the evaluation and forces the owning
	// submission's status in a single transaction.
	CreateAndMarkEvaluated(ctx context.Context, evaluation *models.AIEvaluation) error
	// OverallScores returns submissionID -> overallScore for the given ids.
	OverallScores(ctx context.Context, submissionIDs []string) (map[string]int, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates the repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) GetBySubmission(ctx context.Context, submissionID string) (models.AIEvaluation, error) {
	var evaluation models.AIEvaluation
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&evaluation).Error; err != nil {
		return models.AIEvaluation{}, err
	}

	return evaluation, nil
}

func (r *evaluationRepository) CreateAndMarkEvaluated(ctx context.Context, evaluation *models.AIEvaluation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(evaluation).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).
			Where("id = ?", evaluation.SubmissionID).
			Update("status", models.StatusAIEvaluated).Error
	})
}

func (r *evaluationRepository) OverallScores(ctx context.Context, submissionIDs []string) (map[string]int, error) {
	scores := make(map[string]int, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return scores, nil
	}

	var rows []struct {
		SubmissionID string
		OverallScore int
	}
	if err := r.db.WithContext(ctx).Model(&models.AIEvaluation{}).
		Select("submission_id", "overall_score").
		Where("submission_id IN ?", submissionIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		scores[row.SubmissionID] = row.OverallScore
	}

	return scores, nil
}
