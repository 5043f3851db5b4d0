package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AIEvaluation is the machine-generated assessment attached to a submission.
// Rows are written once by the external analysis pipeline and never updated.
type AIEvaluation struct {
	ID             string                      `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID   string                      `gorm:"type:uuid;not null;index" json:"submissionId"`
	Accuracy       int                         `gorm:"not null" json:"accuracy"`
	Stability      int                         `gorm:"not null" json:"stability"`
	CompletionTime string                      `gorm:"size:128;not null" json:"completionTime"`
	ToolUsage      int                         `gorm:"not null" json:"toolUsage"`
	OverallScore   int                         `gorm:"not null" json:"overallScore"`
	Feedback       string                      `gorm:"type:text" json:"feedback"`
	AnalysisPoints datatypes.JSONSlice[string] `json:"analysisPoints"`
	CreatedAt      time.Time                   `json:"createdAt"`
}

// BeforeCreate assigns the primary key.
func (e *AIEvaluation) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
