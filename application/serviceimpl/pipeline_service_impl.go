package serviceimpl

import (
	"context"
	"fmt"
	"net/url"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
	"classtrack/infrastructure/stream"
	"classtrack/pkg/logger"
)

type PipelineServiceImpl struct {
	configRepo repositories.StreamConfigRepository
	supervisor *stream.Supervisor
}

func NewPipelineService(
	configRepo repositories.StreamConfigRepository,
	supervisor *stream.Supervisor,
) services.PipelineService {
	return &PipelineServiceImpl{
		configRepo: configRepo,
		supervisor: supervisor,
	}
}

// ApplyConfig validates the config, persists it, then reconciles the live
// session. A rejected config changes nothing, stored or running. A disabled
// config may omit the URL so the stream can always be shut off.
func (s *PipelineServiceImpl) ApplyConfig(ctx context.Context, config models.StreamConfig) error {
	if config.Enabled || config.URL != "" {
		if err := validateStreamURL(config.URL); err != nil {
			return err
		}
	}

	if config.Enabled && !s.supervisor.RecognitionAvailable() {
		return services.ErrRecognitionDisabled
	}

	if err := s.configRepo.Upsert(ctx, &config); err != nil {
		return fmt.Errorf("failed to save stream config: %w", err)
	}

	if err := s.supervisor.Apply(&config); err != nil {
		return err
	}

	logger.Stream("ApplyConfig", "stream config applied", map[string]interface{}{
		"url":     config.URL,
		"enabled": config.Enabled,
	})

	return nil
}

func (s *PipelineServiceImpl) GetConfig(ctx context.Context) (*models.StreamConfig, error) {
	return s.configRepo.Get(ctx)
}

func (s *PipelineServiceImpl) Status() services.PipelineStatus {
	return s.supervisor.Status()
}

// Restart re-applies the stored config, returning a Failed session to
// Connecting. Without an enabled stored config this is a no-op.
func (s *PipelineServiceImpl) Restart(ctx context.Context) error {
	config, err := s.configRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stream config: %w", err)
	}
	if config == nil || !config.Enabled {
		return nil
	}

	s.supervisor.Stop()
	if err := s.supervisor.Apply(config); err != nil {
		return err
	}

	logger.Stream("Restart", "stream session restarted", map[string]interface{}{
		"url": config.URL,
	})

	return nil
}

func (s *PipelineServiceImpl) Shutdown() {
	s.supervisor.Stop()
}

func validateStreamURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: URL is empty", services.ErrInvalidStreamURL)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidStreamURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", services.ErrInvalidStreamURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", services.ErrInvalidStreamURL)
	}

	return nil
}
