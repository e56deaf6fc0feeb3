package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
)

type CurriculumRepositoryImpl struct {
	db *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) repositories.CurriculumRepository {
	return &CurriculumRepositoryImpl{db: db}
}

func (r *CurriculumRepositoryImpl) Create(ctx context.Context, curriculum *models.Curriculum) error {
	return r.db.WithContext(ctx).Create(curriculum).Error
}

func (r *CurriculumRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Curriculum, error) {
	var curriculum models.Curriculum
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&curriculum).Error
	if err != nil {
		return nil, err
	}
	return &curriculum, nil
}

func (r *CurriculumRepositoryImpl) List(ctx context.Context, date string, limit int) ([]models.Curriculum, error) {
	var entries []models.Curriculum

	query := r.db.WithContext(ctx).Order("date DESC")
	if date != "" {
		query = query.Where("date = ?", date)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&entries).Error
	return entries, err
}

func (r *CurriculumRepositoryImpl) Update(ctx context.Context, id uuid.UUID, curriculum *models.Curriculum) error {
	result := r.db.WithContext(ctx).
		Model(&models.Curriculum{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"date":    curriculum.Date,
			"subject": curriculum.Subject,
			"topics":  curriculum.Topics,
			"notes":   curriculum.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
