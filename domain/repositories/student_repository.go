package repositories

import (
	"context"

	"classtrack/domain/models"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	List(ctx context.Context, offset, limit int) ([]models.Student, int64, error)
	Count(ctx context.Context) (int64, error)
}
