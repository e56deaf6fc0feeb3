package models

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

type AttendanceSource string

const (
	AttendanceSourceAuto   AttendanceSource = "auto"
	AttendanceSourceManual AttendanceSource = "manual"
)

// AttendanceRecord is keyed by (student, calendar day); the unique index is what
// makes auto-marking idempotent. Records are never deleted.
type AttendanceRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID string    `gorm:"not null;uniqueIndex:idx_attendance_student_date,priority:1"`

	// Calendar day in YYYY-MM-DD, computed from wall clock in the configured zone
	Date string `gorm:"not null;uniqueIndex:idx_attendance_student_date,priority:2;index"`

	Status AttendanceStatus `gorm:"not null"`
	Source AttendanceSource `gorm:"not null"`

	// User who performed a manual override, nil for auto records
	MarkedBy *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// ValidStatus reports whether s is a recognized attendance status.
func ValidStatus(s AttendanceStatus) bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}
