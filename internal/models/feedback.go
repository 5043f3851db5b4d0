package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrainerFeedback is a human reviewer's assessment of a submission. A
// submission may accumulate several rows over time; the read path exposes the
// most recent one.
type TrainerFeedback struct {
	ID                string                      `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID      string                      `gorm:"type:uuid;not null;index" json:"submissionId"`
	TrainerID         string                      `gorm:"type:uuid;not null;index" json:"trainerId"`
	OverallAssessment string                      `gorm:"type:text;not null" json:"overallAssessment"`
	TrainerScore      *int                        `json:"trainerScore"`
	NextSteps         datatypes.JSONSlice[string] `json:"nextSteps"`
	AttachmentPaths   datatypes.JSONSlice[string] `json:"attachmentPaths"`
	AttachmentNames   datatypes.JSONSlice[string] `json:"attachmentNames"`
	Approved          bool                        `gorm:"not null;default:false" json:"approved"`
	CreatedAt         time.Time                   `json:"createdAt"`
}

// BeforeCreate assigns the primary key.
func (f *TrainerFeedback) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
