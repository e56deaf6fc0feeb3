package repositories

import (
	"context"

	"classtrack/domain/models"
)

// StreamConfigRepository persists the single camera configuration row.
type StreamConfigRepository interface {
	// Get returns the stored config, or (nil, nil) when none has been set yet.
	Get(ctx context.Context) (*models.StreamConfig, error)
	Upsert(ctx context.Context, config *models.StreamConfig) error
}
