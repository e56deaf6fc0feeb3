package postgres

import (
	"context"

	"gorm.io/gorm"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
)

type StudentRepositoryImpl struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) repositories.StudentRepository {
	return &StudentRepositoryImpl{db: db}
}

func (r *StudentRepositoryImpl) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *StudentRepositoryImpl) GetByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepositoryImpl) List(ctx context.Context, offset, limit int) ([]models.Student, int64, error) {
	var students []models.Student
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("student_id").
		Offset(offset).
		Limit(limit).
		Find(&students).Error

	return students, total, err
}

func (r *StudentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error
	return count, err
}
