package repositories

import (
	"context"

	"github.com/google/uuid"

	"classtrack/domain/models"
)

// AttendanceRepository is the attendance ledger. The (student, date) pair is
// unique in the backing store; RecordAutoMatch relies on that constraint so the
// existence check and the insert are one atomic statement.
type AttendanceRepository interface {
	// RecordAutoMatch inserts a present/auto record for (studentID, date) only
	// if no record exists yet for that key. Returns true when a row was
	// committed, false when an existing record (auto or manual) was left alone.
	RecordAutoMatch(ctx context.Context, studentID, date string) (bool, error)

	// Override writes or overwrites the record for (studentID, date) with
	// source manual, regardless of what is there.
	Override(ctx context.Context, studentID, date string, status models.AttendanceStatus, markedBy uuid.UUID) error

	GetByStudentAndDate(ctx context.Context, studentID, date string) (*models.AttendanceRecord, error)

	// QueryByStudent returns records for a student within [from, to], ordered by
	// date descending. Empty bounds mean unbounded.
	QueryByStudent(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, error)

	QueryByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error)
	CountByDateAndStatus(ctx context.Context, date string, status models.AttendanceStatus) (int64, error)
}
