package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistEntry captures pre-launch interest keyed by a unique email.
type WaitlistEntry struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Organization string    `gorm:"size:120" json:"organization"`
	RoleFocus    string    `gorm:"size:120" json:"roleFocus"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BeforeCreate assigns the primary key.
func (w *WaitlistEntry) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
