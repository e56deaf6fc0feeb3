package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/domain/services"
	"classtrack/infrastructure/camera"
)

func testTuning() SessionConfig {
	return SessionConfig{
		URL:             "http://camera.local/stream",
		SampleInterval:  5 * time.Millisecond,
		MaxRetries:      3,
		RetryBaseDelay:  time.Millisecond,
		RetryMaxDelay:   5 * time.Millisecond,
		MaxReadFailures: 2,
	}
}

type fakeSource struct {
	mu     sync.Mutex
	frames chan *camera.Frame
	errs   chan error
	closed bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		frames: make(chan *camera.Frame, 8),
		errs:   make(chan error, 8),
	}
}

func (s *fakeSource) NextFrame(ctx context.Context) (*camera.Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-s.frames:
		return frame, nil
	case err := <-s.errs:
		return nil, err
	}
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDialer struct {
	mu       sync.Mutex
	failures int // fail this many dials before succeeding
	dials    int
	sources  []*fakeSource
}

func (d *fakeDialer) Dial(ctx context.Context, rawURL, username, password string) (camera.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if d.dials <= d.failures {
		return nil, errors.New("connection refused")
	}

	src := newFakeSource()
	d.sources = append(d.sources, src)
	return src, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) source(i int) *fakeSource {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.sources) {
		return nil
	}
	return d.sources[i]
}

type fakeEmbedder struct{}

func (fakeEmbedder) ExtractFaces(ctx context.Context, imageData []byte, mimeType string) ([]services.DetectedFace, error) {
	return []services.DetectedFace{{Embedding: []float32{1, 0}, Confidence: 0.99}}, nil
}

func (fakeEmbedder) IsAvailable(ctx context.Context) bool { return true }

type fakeMatcher struct {
	result services.MatchResult
}

func (m fakeMatcher) Match(ctx context.Context, probe services.Probe) (services.MatchResult, error) {
	return m.result, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	marks []string
}

func (r *fakeRecorder) MarkAutoPresent(ctx context.Context, studentID string, seenAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = append(r.marks, studentID)
	return true, nil
}

func (r *fakeRecorder) markCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.marks)
}

func stateOf(s *Session) services.SessionState {
	state, _, _ := s.Status()
	return state
}

func TestSessionConnectsAfterRetries(t *testing.T) {
	dialer := &fakeDialer{failures: 2}
	session := NewSession(testTuning(), dialer, fakeEmbedder{}, fakeMatcher{}, &fakeRecorder{}, nil)

	session.Start()
	defer session.Stop()

	assert.Eventually(t, func() bool {
		return stateOf(session) == services.SessionRunning
	}, time.Second, time.Millisecond)

	assert.Equal(t, 3, dialer.dialCount())
}

func TestSessionFailsWhenRetryBudgetExhausted(t *testing.T) {
	dialer := &fakeDialer{failures: 100}
	session := NewSession(testTuning(), dialer, fakeEmbedder{}, fakeMatcher{}, &fakeRecorder{}, nil)

	session.Start()
	defer session.Stop()

	assert.Eventually(t, func() bool {
		return stateOf(session) == services.SessionFailed
	}, time.Second, time.Millisecond)

	_, failure, _ := session.Status()
	assert.Contains(t, failure, "connection attempts failed")
	assert.Equal(t, 3, dialer.dialCount())
}

func TestSessionProcessesSampledFrames(t *testing.T) {
	dialer := &fakeDialer{}
	recorder := &fakeRecorder{}
	matcher := fakeMatcher{result: services.MatchResult{Matched: true, StudentID: "S1", Score: 0.9}}

	session := NewSession(testTuning(), dialer, fakeEmbedder{}, matcher, recorder, nil)
	session.Start()
	defer session.Stop()

	require.Eventually(t, func() bool {
		return stateOf(session) == services.SessionRunning
	}, time.Second, time.Millisecond)

	src := dialer.source(0)
	require.NotNil(t, src)

	go func() {
		for i := 0; i < 20; i++ {
			src.frames <- &camera.Frame{Data: []byte("jpeg"), MimeType: "image/jpeg", CapturedAt: time.Now()}
			time.Sleep(time.Millisecond)
		}
	}()

	assert.Eventually(t, func() bool {
		return recorder.markCount() > 0
	}, time.Second, time.Millisecond)

	recorder.mu.Lock()
	assert.Equal(t, "S1", recorder.marks[0])
	recorder.mu.Unlock()
}

func TestSessionReconnectsAfterReadFailures(t *testing.T) {
	dialer := &fakeDialer{}
	session := NewSession(testTuning(), dialer, fakeEmbedder{}, fakeMatcher{}, &fakeRecorder{}, nil)

	session.Start()
	defer session.Stop()

	require.Eventually(t, func() bool {
		return stateOf(session) == services.SessionRunning
	}, time.Second, time.Millisecond)

	src := dialer.source(0)
	require.NotNil(t, src)

	// Two consecutive read failures hit MaxReadFailures
	src.errs <- errors.New("stream reset")
	src.errs <- errors.New("stream reset")

	assert.Eventually(t, func() bool {
		return dialer.dialCount() >= 2 && stateOf(session) == services.SessionRunning
	}, time.Second, time.Millisecond)

	assert.True(t, src.isClosed())
}

func TestSessionStopReleasesSource(t *testing.T) {
	dialer := &fakeDialer{}
	session := NewSession(testTuning(), dialer, fakeEmbedder{}, fakeMatcher{}, &fakeRecorder{}, nil)

	session.Start()
	require.Eventually(t, func() bool {
		return stateOf(session) == services.SessionRunning
	}, time.Second, time.Millisecond)

	session.Stop()

	assert.Equal(t, services.SessionStopped, stateOf(session))
	assert.False(t, session.IsRunning())

	src := dialer.source(0)
	require.NotNil(t, src)
	assert.True(t, src.isClosed())
}

func TestSessionStopIsIdempotent(t *testing.T) {
	dialer := &fakeDialer{}
	session := NewSession(testTuning(), dialer, fakeEmbedder{}, fakeMatcher{}, &fakeRecorder{}, nil)

	session.Start()
	session.Stop()
	session.Stop()

	assert.Equal(t, services.SessionStopped, stateOf(session))
}
