package models

import (
	"time"

	"github.com/google/uuid"
)

// Student is an enrolled identity. The external StudentID is the stable key used
// everywhere (attendance, face encodings); the UUID is internal.
type Student struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	FaceEncodings []FaceEncoding `gorm:"foreignKey:StudentID;references:StudentID"`
}

func (Student) TableName() string {
	return "students"
}
