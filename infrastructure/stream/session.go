package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"classtrack/domain/services"
	"classtrack/infrastructure/camera"
	"classtrack/pkg/logger"
)

// Recorder commits an auto attendance mark. Implemented by the attendance
// service; faked in tests.
type Recorder interface {
	MarkAutoPresent(ctx context.Context, studentID string, seenAt time.Time) (bool, error)
}

// Broadcaster pushes state changes to dashboard clients. May be nil.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// SessionConfig is everything one session needs to run.
type SessionConfig struct {
	URL      string
	Username string
	Password string

	SampleInterval  time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	RetryMaxDelay   time.Duration
	MaxReadFailures int
}

// Session consumes one camera stream and turns sampled frames into attendance
// marks. Lifecycle: Stopped until Start, then Connecting, then Running, with
// Reconnecting after stream loss and Failed once the retry budget is spent.
// Stop always returns the session to Stopped with the camera released.
type Session struct {
	cfg SessionConfig

	dialer      camera.Dialer
	embedder    services.Embedder
	matcher     services.MatcherService
	recorder    Recorder
	broadcaster Broadcaster

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex

	stateMu     sync.RWMutex
	state       services.SessionState
	lastFailure string
	changedAt   time.Time
}

func NewSession(
	cfg SessionConfig,
	dialer camera.Dialer,
	embedder services.Embedder,
	matcher services.MatcherService,
	recorder Recorder,
	broadcaster Broadcaster,
) *Session {
	return &Session{
		cfg:         cfg,
		dialer:      dialer,
		embedder:    embedder,
		matcher:     matcher,
		recorder:    recorder,
		broadcaster: broadcaster,
		state:       services.SessionStopped,
		changedAt:   time.Now(),
	}
}

// Start launches the session loop. Calling Start on a running session is a
// no-op.
func (s *Session) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	logger.Stream("Start", "stream session started", map[string]interface{}{
		"url": s.cfg.URL,
	})
}

// Stop cancels the session and blocks until the loop has exited and the camera
// connection is released. Safe to call on a stopped session.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.setState(services.SessionStopped, "")
	logger.Stream("Stop", "stream session stopped", nil)
}

// IsRunning reports whether the session loop is live.
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Status returns the current state, the most recent failure reason and when
// the state last changed. The failure reason survives into Failed and Stopped
// so operators can see why a session died.
func (s *Session) Status() (services.SessionState, string, time.Time) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state, s.lastFailure, s.changedAt
}

func (s *Session) setState(state services.SessionState, failure string) {
	s.stateMu.Lock()
	s.state = state
	if failure != "" {
		s.lastFailure = failure
	}
	s.changedAt = time.Now()
	s.stateMu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.Broadcast("stream:state", map[string]interface{}{
			"state":        string(state),
			"last_failure": failure,
		})
	}
}

// run is the session loop: connect with bounded retries, consume until the
// stream drops, reconnect, and give up only when a full retry budget yields no
// connection.
func (s *Session) run() {
	defer s.wg.Done()

	s.setState(services.SessionConnecting, "")

	for {
		source, err := s.dialWithBackoff()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.setState(services.SessionFailed, err.Error())
			logger.StreamError("Connect", "retry budget exhausted", err, map[string]interface{}{
				"url":         s.cfg.URL,
				"max_retries": s.cfg.MaxRetries,
			})
			return
		}

		s.setState(services.SessionRunning, "")
		logger.Stream("Connect", "stream connected", map[string]interface{}{
			"url": s.cfg.URL,
		})

		err = s.consume(source)
		source.Close()

		if s.ctx.Err() != nil {
			return
		}

		// Stream dropped mid-run. Each reconnect gets a fresh retry budget.
		s.setState(services.SessionReconnecting, err.Error())
		logger.StreamWarn("Reconnect", "stream lost, reconnecting", map[string]interface{}{
			"reason": err.Error(),
		})
	}
}

// dialWithBackoff attempts to open the stream, sleeping with exponential
// backoff between attempts. It returns context.Canceled when the session is
// stopped mid-dial.
func (s *Session) dialWithBackoff() (camera.Source, error) {
	var lastErr error

	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.cfg.RetryBaseDelay << uint(attempt-1)
			if delay > s.cfg.RetryMaxDelay {
				delay = s.cfg.RetryMaxDelay
			}

			select {
			case <-s.ctx.Done():
				return nil, context.Canceled
			case <-time.After(delay):
			}
		}

		source, err := s.dialer.Dial(s.ctx, s.cfg.URL, s.cfg.Username, s.cfg.Password)
		if err == nil {
			return source, nil
		}
		if s.ctx.Err() != nil {
			return nil, context.Canceled
		}

		lastErr = err
		logger.StreamWarn("Dial", "connection attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return nil, fmt.Errorf("all %d connection attempts failed: %w", s.cfg.MaxRetries, lastErr)
}

// consume reads frames continuously and processes at most one per sample
// interval. Frames arriving between ticks are overwritten, never queued, so a
// slow embedder can't build a backlog. Returns when the reader hits too many
// consecutive failures or the session is stopped.
func (s *Session) consume(source camera.Source) error {
	frames := make(chan *camera.Frame, 1)
	readErr := make(chan error, 1)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.readFrames(source, frames, readErr)
	}()

	ticker := time.NewTicker(s.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return context.Canceled

		case err := <-readErr:
			return err

		case <-ticker.C:
			select {
			case frame := <-frames:
				s.processFrame(frame)
			default:
				// No frame arrived since the last tick.
			}
		}
	}
}

// readFrames pulls frames off the stream as fast as they arrive, keeping only
// the newest one. Consecutive read failures beyond the configured limit end
// the read loop.
func (s *Session) readFrames(source camera.Source, frames chan *camera.Frame, readErr chan error) {
	consecutiveFailures := 0

	for {
		frame, err := source.NextFrame(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}

			consecutiveFailures++
			if consecutiveFailures >= s.cfg.MaxReadFailures {
				readErr <- fmt.Errorf("stream read failed %d times: %w", consecutiveFailures, err)
				return
			}
			continue
		}

		consecutiveFailures = 0

		// Replace any stale frame instead of queueing behind it.
		select {
		case frames <- frame:
		default:
			select {
			case <-frames:
			default:
			}
			frames <- frame
		}
	}
}

// processFrame runs one frame through the embedder, matcher and recorder. Any
// failure here is logged and contained; a bad frame never takes the session
// down.
func (s *Session) processFrame(frame *camera.Frame) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.SampleInterval*30)
	defer cancel()

	faces, err := s.embedder.ExtractFaces(ctx, frame.Data, frame.MimeType)
	if err != nil {
		if errors.Is(err, services.ErrNoFaceFound) {
			return
		}
		logger.StreamWarn("ProcessFrame", "face extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, face := range faces {
		result, err := s.matcher.Match(ctx, services.Probe{
			Embedding:  face.Embedding,
			CapturedAt: frame.CapturedAt,
		})
		if err != nil {
			logger.StreamWarn("ProcessFrame", "match failed", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		if !result.Matched {
			continue
		}

		created, err := s.recorder.MarkAutoPresent(ctx, result.StudentID, frame.CapturedAt)
		if err != nil {
			logger.StreamError("ProcessFrame", "failed to record attendance", err, map[string]interface{}{
				"student_id": result.StudentID,
			})
			continue
		}
		if created {
			logger.Stream("ProcessFrame", "student marked present", map[string]interface{}{
				"student_id": result.StudentID,
				"score":      result.Score,
			})
		}
	}
}
