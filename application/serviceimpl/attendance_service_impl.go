package serviceimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
	"classtrack/pkg/logger"
)

// Broadcaster pushes attendance events to dashboard clients. May be nil.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// PresenceCache is the day-presence accelerator in front of the ledger.
// Implemented by the redis client; may be nil.
type PresenceCache interface {
	IsPresent(ctx context.Context, studentID, date string) (bool, error)
	MarkPresent(ctx context.Context, studentID, date string) error
	PresentCount(ctx context.Context, date string) (int64, error)
}

type AttendanceServiceImpl struct {
	attendanceRepo repositories.AttendanceRepository
	studentRepo    repositories.StudentRepository
	cache          PresenceCache
	broadcaster    Broadcaster
	location       *time.Location
}

func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	studentRepo repositories.StudentRepository,
	cache PresenceCache,
	broadcaster Broadcaster,
	location *time.Location,
) services.AttendanceService {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		studentRepo:    studentRepo,
		cache:          cache,
		broadcaster:    broadcaster,
		location:       location,
	}
}

// Today returns the current calendar day in the configured zone.
func (s *AttendanceServiceImpl) Today() string {
	return time.Now().In(s.location).Format("2006-01-02")
}

// MarkAutoPresent commits a present/auto record for the day of seenAt. The
// cache short-circuits repeat sightings within a day; the database unique
// index decides who wins when two sightings race.
func (s *AttendanceServiceImpl) MarkAutoPresent(ctx context.Context, studentID string, seenAt time.Time) (bool, error) {
	date := seenAt.In(s.location).Format("2006-01-02")

	if s.cache != nil {
		seen, err := s.cache.IsPresent(ctx, studentID, date)
		if err == nil && seen {
			return false, nil
		}
	}

	created, err := s.attendanceRepo.RecordAutoMatch(ctx, studentID, date)
	if err != nil {
		return false, fmt.Errorf("failed to record attendance: %w", err)
	}

	if s.cache != nil {
		// Any existing record, ours or not, means this day is settled.
		if err := s.cache.MarkPresent(ctx, studentID, date); err != nil {
			logger.AttendanceError("MarkAutoPresent", "cache update failed", err, map[string]interface{}{
				"student_id": studentID,
			})
		}
	}

	if !created {
		return false, nil
	}

	logger.Attendance("MarkAutoPresent", "attendance recorded", map[string]interface{}{
		"student_id": studentID,
		"date":       date,
	})

	if s.broadcaster != nil {
		payload := map[string]interface{}{
			"student_id": studentID,
			"date":       date,
			"status":     string(models.AttendanceStatusPresent),
			"source":     string(models.AttendanceSourceAuto),
		}
		if s.cache != nil {
			if count, err := s.cache.PresentCount(ctx, date); err == nil {
				payload["present_today"] = count
			}
		}
		s.broadcaster.Broadcast("attendance:marked", payload)
	}

	return true, nil
}

// Override writes a manual record for (studentID, date), replacing whatever is
// there. Manual decisions always win over auto marks.
func (s *AttendanceServiceImpl) Override(ctx context.Context, studentID, date string, status models.AttendanceStatus, markedBy uuid.UUID) error {
	if !models.ValidStatus(status) {
		return services.ErrInvalidStatus
	}

	if _, err := s.studentRepo.GetByStudentID(ctx, studentID); err != nil {
		return fmt.Errorf("unknown student %s: %w", studentID, err)
	}

	if err := s.attendanceRepo.Override(ctx, studentID, date, status, markedBy); err != nil {
		return fmt.Errorf("failed to override attendance: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.MarkPresent(ctx, studentID, date); err != nil {
			logger.AttendanceError("Override", "cache update failed", err, map[string]interface{}{
				"student_id": studentID,
			})
		}
	}

	logger.Attendance("Override", "manual override applied", map[string]interface{}{
		"student_id": studentID,
		"date":       date,
		"status":     string(status),
		"marked_by":  markedBy.String(),
	})

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("attendance:overridden", map[string]interface{}{
			"student_id": studentID,
			"date":       date,
			"status":     string(status),
			"source":     string(models.AttendanceSourceManual),
		})
	}

	return nil
}

// StudentAttendance returns a student's records within [from, to] plus stats
// over that window.
func (s *AttendanceServiceImpl) StudentAttendance(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, services.AttendanceStats, error) {
	records, err := s.attendanceRepo.QueryByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, services.AttendanceStats{}, fmt.Errorf("failed to query attendance: %w", err)
	}

	stats := services.AttendanceStats{TotalDays: len(records)}
	for _, r := range records {
		if r.Status == models.AttendanceStatusPresent {
			stats.PresentDays++
		} else {
			stats.AbsentDays++
		}
	}
	if stats.TotalDays > 0 {
		stats.Percentage = float64(stats.PresentDays) / float64(stats.TotalDays) * 100
	}

	return records, stats, nil
}

// DailyAttendance returns all records for one day joined with student names.
func (s *AttendanceServiceImpl) DailyAttendance(ctx context.Context, date string) ([]services.DailyEntry, error) {
	records, err := s.attendanceRepo.QueryByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}

	entries := make([]services.DailyEntry, 0, len(records))
	for _, r := range records {
		name := ""
		if student, err := s.studentRepo.GetByStudentID(ctx, r.StudentID); err == nil {
			name = student.Name
		}

		entries = append(entries, services.DailyEntry{
			StudentID:   r.StudentID,
			StudentName: name,
			Date:        r.Date,
			Status:      r.Status,
			Source:      r.Source,
			Timestamp:   r.UpdatedAt,
		})
	}

	return entries, nil
}
