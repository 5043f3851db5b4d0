package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values form a closed set; a user holds exactly one at a time.
const (
	RoleTrainee = "trainee"
	RoleTrainer = "trainer"
)

// User mirrors an identity-provider account inside the local database.
// The row is provisioned lazily on the first authenticated request.
type User struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	DisplayName string    `gorm:"size:255" json:"displayName"`
	AvatarURL   string    `gorm:"size:512" json:"avatarUrl"`
	Role        string    `gorm:"size:32;not null;default:trainee" json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when the identity provider did not supply one.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsTrainer reports whether the user holds the trainer role.
func (u User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

// ValidRole reports whether the value belongs to the closed role set.
func ValidRole(role string) bool {
	return role == RoleTrainee || role == RoleTrainer
}
