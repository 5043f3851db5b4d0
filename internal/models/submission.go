package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is a trainee's task-performance recording plus metadata.
type Submission struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;index" json:"userId"`
	TaskName      string    `gorm:"size:255;not null" json:"taskName"`
	ToolType      string    `gorm:"size:128;not null" json:"toolType"`
	Difficulty    string    `gorm:"size:64;not null" json:"difficulty"`
	Notes         string    `gorm:"type:text" json:"notes"`
	VideoURL      string    `gorm:"size:512" json:"videoUrl"`
	VideoPath     string    `gorm:"size:512" json:"videoPath"`
	VideoSize     *int64    `json:"videoSize"`
	VideoMimeType *string   `gorm:"size:128" json:"videoMimeType"`
	VideoDuration *int      `json:"videoDuration"`
	Status        Status    `gorm:"size:32;not null;default:pending;index" json:"status"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate assigns the primary key and initial status.
func (s *Submission) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	return nil
}
