package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
)

type AttendanceRepositoryImpl struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) repositories.AttendanceRepository {
	return &AttendanceRepositoryImpl{db: db}
}

// RecordAutoMatch is a single conditional insert: the unique (student_id, date)
// index plus ON CONFLICT DO NOTHING makes the existence check and the write one
// atomic statement, so concurrent auto-matches for the same key commit at most
// one row and an existing manual record is never touched.
func (r *AttendanceRepositoryImpl) RecordAutoMatch(ctx context.Context, studentID, date string) (bool, error) {
	record := models.AttendanceRecord{
		ID:        uuid.New(),
		StudentID: studentID,
		Date:      date,
		Status:    models.AttendanceStatusPresent,
		Source:    models.AttendanceSourceAuto,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(&record)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Override upserts with source manual; a manual write supersedes any record.
func (r *AttendanceRepositoryImpl) Override(ctx context.Context, studentID, date string, status models.AttendanceStatus, markedBy uuid.UUID) error {
	record := models.AttendanceRecord{
		ID:        uuid.New(),
		StudentID: studentID,
		Date:      date,
		Status:    status,
		Source:    models.AttendanceSourceManual,
		MarkedBy:  &markedBy,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     status,
				"source":     models.AttendanceSourceManual,
				"marked_by":  markedBy,
				"updated_at": time.Now(),
			}),
		}).
		Create(&record).Error
}

func (r *AttendanceRepositoryImpl) GetByStudentAndDate(ctx context.Context, studentID, date string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND date = ?", studentID, date).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepositoryImpl) QueryByStudent(ctx context.Context, studentID, from, to string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord

	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	if to != "" {
		query = query.Where("date <= ?", to)
	}

	err := query.Order("date DESC").Find(&records).Error
	return records, err
}

func (r *AttendanceRepositoryImpl) QueryByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("student_id").
		Find(&records).Error
	return records, err
}

func (r *AttendanceRepositoryImpl) CountByDateAndStatus(ctx context.Context, date string, status models.AttendanceStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("date = ? AND status = ?", date, status).
		Count(&count).Error
	return count, err
}
