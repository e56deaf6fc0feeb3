package stream

import (
	"sync"
	"time"

	"classtrack/domain/models"
	"classtrack/domain/services"
	"classtrack/infrastructure/camera"
	"classtrack/pkg/config"
	"classtrack/pkg/logger"
)

// Supervisor owns the single live session. Applying a config stops the old
// session completely, waits for its resources to be released, then starts a
// fresh one; at no point do two sessions read the same camera.
type Supervisor struct {
	tuning config.StreamConfig

	dialer      camera.Dialer
	embedder    services.Embedder
	matcher     services.MatcherService
	recorder    Recorder
	broadcaster Broadcaster

	mu      sync.Mutex
	session *Session
	current *models.StreamConfig

	// Retained after the session is torn down so Status can still explain
	// the last failure.
	lastFailure string
}

func NewSupervisor(
	tuning config.StreamConfig,
	dialer camera.Dialer,
	embedder services.Embedder,
	matcher services.MatcherService,
	recorder Recorder,
	broadcaster Broadcaster,
) *Supervisor {
	return &Supervisor{
		tuning:      tuning,
		dialer:      dialer,
		embedder:    embedder,
		matcher:     matcher,
		recorder:    recorder,
		broadcaster: broadcaster,
	}
}

// RecognitionAvailable reports whether sessions can run at all. False when no
// embedder was wired, which is the case when the face API is disabled.
func (s *Supervisor) RecognitionAvailable() bool {
	return s.embedder != nil
}

// Apply reconciles the live session with the given config. An unchanged config
// leaves the running session alone. A disabled or nil config stops everything.
// An enabled config is refused when no embedder is available.
func (s *Supervisor) Apply(cfg *models.StreamConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg != nil && cfg.Enabled && s.embedder == nil {
		logger.StreamWarn("Apply", "enabled config refused, face recognition is disabled", map[string]interface{}{
			"url": cfg.URL,
		})
		return services.ErrRecognitionDisabled
	}

	if cfg != nil && s.current != nil && cfg.Equal(*s.current) && s.session != nil && s.session.IsRunning() {
		return nil
	}

	s.stopLocked()

	if cfg == nil || !cfg.Enabled {
		s.current = cfg
		return nil
	}

	copied := *cfg
	s.current = &copied

	s.session = NewSession(
		SessionConfig{
			URL:             cfg.URL,
			Username:        cfg.Username,
			Password:        cfg.Password,
			SampleInterval:  s.tuning.SampleInterval,
			MaxRetries:      s.tuning.MaxRetries,
			RetryBaseDelay:  s.tuning.RetryBaseDelay,
			RetryMaxDelay:   s.tuning.RetryMaxDelay,
			MaxReadFailures: s.tuning.MaxReadFailures,
		},
		s.dialer,
		s.embedder,
		s.matcher,
		s.recorder,
		s.broadcaster,
	)
	s.session.Start()

	logger.Stream("Apply", "session started for new config", map[string]interface{}{
		"url": cfg.URL,
	})
	return nil
}

// Restart tears the session down and brings it back up with the current
// config. Returns a Failed session to Connecting.
func (s *Supervisor) Restart() error {
	s.mu.Lock()
	cfg := s.current
	s.mu.Unlock()

	s.Stop()
	return s.Apply(cfg)
}

// Stop halts the live session and waits for it to release the camera.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Supervisor) stopLocked() {
	if s.session == nil {
		return
	}

	_, failure, _ := s.session.Status()
	if failure != "" {
		s.lastFailure = failure
	}

	s.session.Stop()
	s.session = nil
}

// Status reports the live session's state, or Stopped with the last known
// failure when no session exists.
func (s *Supervisor) Status() services.PipelineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := services.PipelineStatus{
		State:       services.SessionStopped,
		LastFailure: s.lastFailure,
		ChangedAt:   time.Now(),
	}

	if s.current != nil {
		status.ConfigURL = s.current.URL
		status.Enabled = s.current.Enabled
	}

	if s.session != nil {
		state, failure, changedAt := s.session.Status()
		status.State = state
		status.ChangedAt = changedAt
		if failure != "" {
			status.LastFailure = failure
		}
	}

	return status
}
