package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
)

type StreamConfigRepositoryImpl struct {
	db *gorm.DB
}

func NewStreamConfigRepository(db *gorm.DB) repositories.StreamConfigRepository {
	return &StreamConfigRepositoryImpl{db: db}
}

func (r *StreamConfigRepositoryImpl) Get(ctx context.Context) (*models.StreamConfig, error) {
	var config models.StreamConfig
	err := r.db.WithContext(ctx).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// Upsert keeps the table at a single row: the stored config is updated in place
// if one exists, created otherwise.
func (r *StreamConfigRepositoryImpl) Upsert(ctx context.Context, config *models.StreamConfig) error {
	existing, err := r.Get(ctx)
	if err != nil {
		return err
	}

	config.UpdatedAt = time.Now()

	if existing == nil {
		if config.ID == uuid.Nil {
			config.ID = uuid.New()
		}
		return r.db.WithContext(ctx).Create(config).Error
	}

	config.ID = existing.ID
	return r.db.WithContext(ctx).
		Model(&models.StreamConfig{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"url":        config.URL,
			"username":   config.Username,
			"password":   config.Password,
			"enabled":    config.Enabled,
			"updated_at": config.UpdatedAt,
		}).Error
}
