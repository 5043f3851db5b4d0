package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillcam-io/skillcam-api/internal/models"
)

// FeedbackRepository defines data operations for trainer feedback.
type FeedbackRepository interface {
	// GetLatestBySubmission returns the most recent feedback row.
	GetLatestBySubmission(ctx context.Context, submissionID string) (models.TrainerFeedback, error)
	// CreateAndSetStatus inserts the feedback and applies the resulting
	// status transition in a single transaction, so a reader never observes
	// feedback without its status or vice versa.
	CreateAndSetStatus(ctx context.Context, feedback *models.TrainerFeedback, status models.Status) error
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) GetLatestBySubmission(ctx context.Context, submissionID string) (models.TrainerFeedback, error) {
	var feedback models.TrainerFeedback
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		First(&feedback).Error; err != nil {
		return models.TrainerFeedback{}, err
	}

	return feedback, nil
}

func (r *feedbackRepository) CreateAndSetStatus(ctx context.Context, feedback *models.TrainerFeedback, status models.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(feedback).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).
			Where("id = ?", feedback.SubmissionID).
			Update("status", status).Error
	})
}
