package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillcam-io/skillcam-api/internal/models"
)

// WaitlistRepository defines data operations for waitlist entries.
type WaitlistRepository interface {
	// Create inserts the entry. The insert is idempotent on email: when the
	// address is already present the call reports created=false and no error.
	Create(ctx context.Context, entry *models.WaitlistEntry) (created bool, err error)
}

type waitlistRepository struct {
	db *gorm.DB
}

// NewWaitlistRepository instantiates the repository.
func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
