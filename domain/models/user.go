package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    // bcrypt hash; empty for OAuth users
	Name     string    `gorm:"not null"`
	Role     string    `gorm:"default:'student'"` // student, teacher

	// Set when Role is student; matches Student.StudentID
	StudentID string `gorm:"index"`

	Provider   string `gorm:"default:'local'"` // local, google
	ProviderID string // OAuth provider's user ID
	Avatar     string

	LastLogin *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
