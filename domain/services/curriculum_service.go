package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"classtrack/domain/models"
)

var ErrCurriculumNotFound = errors.New("curriculum not found")

type CurriculumInput struct {
	Date    string
	Subject string
	Topics  string
	Notes   string
}

type CurriculumService interface {
	Create(ctx context.Context, teacherID uuid.UUID, input CurriculumInput) (*models.Curriculum, error)
	List(ctx context.Context, date string, limit int) ([]models.Curriculum, error)
	Update(ctx context.Context, id uuid.UUID, input CurriculumInput) error
}
