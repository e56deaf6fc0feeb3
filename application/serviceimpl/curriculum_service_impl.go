package serviceimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
)

type CurriculumServiceImpl struct {
	curriculumRepo repositories.CurriculumRepository
}

func NewCurriculumService(curriculumRepo repositories.CurriculumRepository) services.CurriculumService {
	return &CurriculumServiceImpl{curriculumRepo: curriculumRepo}
}

func (s *CurriculumServiceImpl) Create(ctx context.Context, teacherID uuid.UUID, input services.CurriculumInput) (*models.Curriculum, error) {
	curriculum := &models.Curriculum{
		ID:        uuid.New(),
		Date:      input.Date,
		Subject:   input.Subject,
		Topics:    input.Topics,
		Notes:     input.Notes,
		TeacherID: teacherID,
	}

	if err := s.curriculumRepo.Create(ctx, curriculum); err != nil {
		return nil, fmt.Errorf("failed to create curriculum: %w", err)
	}

	return curriculum, nil
}

func (s *CurriculumServiceImpl) List(ctx context.Context, date string, limit int) ([]models.Curriculum, error) {
	return s.curriculumRepo.List(ctx, date, limit)
}

func (s *CurriculumServiceImpl) Update(ctx context.Context, id uuid.UUID, input services.CurriculumInput) error {
	err := s.curriculumRepo.Update(ctx, id, &models.Curriculum{
		Date:    input.Date,
		Subject: input.Subject,
		Topics:  input.Topics,
		Notes:   input.Notes,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrCurriculumNotFound
	}
	return err
}
