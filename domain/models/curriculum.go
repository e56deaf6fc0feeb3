package models

import (
	"time"

	"github.com/google/uuid"
)

type Curriculum struct {
	ID      uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Date    string    `gorm:"not null;index"` // YYYY-MM-DD
	Subject string    `gorm:"not null"`
	Topics  string    `gorm:"not null"`
	Notes   string

	TeacherID uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Curriculum) TableName() string {
	return "curricula"
}
