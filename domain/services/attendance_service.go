package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"classtrack/domain/models"
)

// ErrInvalidStatus is returned for an override with an unrecognized status; the
// ledger is left untouched.
var ErrInvalidStatus = errors.New("invalid attendance status")

// AttendanceStats summarizes a student's record set.
type AttendanceStats struct {
	TotalDays   int     `json:"total_days"`
	PresentDays int     `json:"present_days"`
	AbsentDays  int     `json:"absent_days"`
	Percentage  float64 `json:"percentage"`
}

// DailyEntry is one student's attendance for a day, joined with their name.
type DailyEntry struct {
	StudentID   string                  `json:"student_id"`
	StudentName string                  `json:"student_name"`
	Date        string                  `json:"date"`
	Status      models.AttendanceStatus `json:"status"`
	Source      models.AttendanceSource `json:"source"`
	Timestamp   time.Time               `json:"timestamp"`
}

type AttendanceService interface {
	// MarkAutoPresent commits a present/auto record for the calendar day of
	// seenAt unless any record already exists for that (student, day). Returns
	// true only when a new record was committed.
	MarkAutoPresent(ctx context.Context, studentID string, seenAt time.Time) (bool, error)

	// Override always writes, with source manual. Fails with ErrInvalidStatus
	// for unknown statuses.
	Override(ctx context.Context, studentID, date string, status models.AttendanceStatus, markedBy uuid.UUID) error

	// StudentAttendance returns a student's records (date descending) plus stats.
	StudentAttendance(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, AttendanceStats, error)

	// DailyAttendance returns all records for one day joined with student names.
	DailyAttendance(ctx context.Context, date string) ([]DailyEntry, error)

	// Today returns the current calendar day string in the service's zone.
	Today() string
}
