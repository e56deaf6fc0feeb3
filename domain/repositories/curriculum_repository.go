package repositories

import (
	"context"

	"github.com/google/uuid"

	"classtrack/domain/models"
)

type CurriculumRepository interface {
	Create(ctx context.Context, curriculum *models.Curriculum) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Curriculum, error)

	// List returns entries ordered by date descending; date filters to a single
	// day when non-empty, limit 0 means no limit.
	List(ctx context.Context, date string, limit int) ([]models.Curriculum, error)

	Update(ctx context.Context, id uuid.UUID, curriculum *models.Curriculum) error
}
