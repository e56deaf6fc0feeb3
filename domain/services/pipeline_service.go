package services

import (
	"context"
	"errors"
	"time"

	"classtrack/domain/models"
)

var (
	// ErrInvalidStreamURL rejects a config whose URL cannot be parsed.
	ErrInvalidStreamURL = errors.New("invalid stream URL")

	// ErrRecognitionDisabled rejects an enabled config when the face API is
	// turned off; a session without an embedder has nothing to do with frames.
	ErrRecognitionDisabled = errors.New("face recognition is disabled")
)

// SessionState is the lifecycle state of the single stream session.
type SessionState string

const (
	SessionStopped      SessionState = "stopped"
	SessionConnecting   SessionState = "connecting"
	SessionRunning      SessionState = "running"
	SessionReconnecting SessionState = "reconnecting"
	SessionFailed       SessionState = "failed"
)

// PipelineStatus is what the dashboard sees.
type PipelineStatus struct {
	State       SessionState `json:"state"`
	LastFailure string       `json:"last_failure,omitempty"`
	ChangedAt   time.Time    `json:"changed_at"`
	ConfigURL   string       `json:"config_url,omitempty"`
	Enabled     bool         `json:"enabled"`
}

// PipelineService owns the stored stream config and the live session.
type PipelineService interface {
	// ApplyConfig validates and persists the config, then restarts (or stops)
	// the session to match it. Validation errors surface synchronously.
	ApplyConfig(ctx context.Context, config models.StreamConfig) error

	GetConfig(ctx context.Context) (*models.StreamConfig, error)
	Status() PipelineStatus

	// Restart re-applies the stored config, returning a Failed session to
	// Connecting. No-op when no enabled config exists.
	Restart(ctx context.Context) error

	// Shutdown stops the live session and waits for resource release.
	Shutdown()
}
