package serviceimpl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/domain/models"
	"classtrack/domain/services"
	"classtrack/infrastructure/camera"
	"classtrack/infrastructure/stream"
	"classtrack/pkg/config"
)

type fakeConfigRepo struct {
	mu     sync.Mutex
	stored *models.StreamConfig
}

func (f *fakeConfigRepo) Get(ctx context.Context) (*models.StreamConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		return nil, nil
	}
	copied := *f.stored
	return &copied, nil
}

func (f *fakeConfigRepo) Upsert(ctx context.Context, cfg *models.StreamConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *cfg
	f.stored = &copied
	return nil
}

type refusingDialer struct{}

func (refusingDialer) Dial(ctx context.Context, rawURL, username, password string) (camera.Source, error) {
	return nil, errors.New("connection refused")
}

func newTestPipeline(repo *fakeConfigRepo) services.PipelineService {
	return newTestPipelineWithEmbedder(repo, &scriptedEmbedder{err: services.ErrNoFaceFound})
}

func newTestPipelineWithEmbedder(repo *fakeConfigRepo, embedder services.Embedder) services.PipelineService {
	sup := stream.NewSupervisor(
		config.StreamConfig{
			SampleInterval:  5 * time.Millisecond,
			MaxRetries:      1,
			RetryBaseDelay:  time.Millisecond,
			RetryMaxDelay:   time.Millisecond,
			MaxReadFailures: 2,
		},
		refusingDialer{},
		embedder,
		nil,
		nil,
		nil,
	)
	return NewPipelineService(repo, sup)
}

func TestApplyConfigRejectsInvalidURL(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newTestPipeline(repo)
	defer svc.Shutdown()

	cases := []string{
		"",
		"rtsp://cam.local/stream",
		"http://",
		"not a url at all\x7f",
	}

	for _, rawURL := range cases {
		err := svc.ApplyConfig(context.Background(), models.StreamConfig{URL: rawURL, Enabled: true})
		assert.ErrorIs(t, err, services.ErrInvalidStreamURL, "url: %q", rawURL)
	}

	// Nothing was persisted
	stored, err := svc.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestApplyConfigPersists(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newTestPipeline(repo)
	defer svc.Shutdown()

	err := svc.ApplyConfig(context.Background(), models.StreamConfig{
		URL:      "http://cam.local/stream",
		Username: "admin",
		Enabled:  false,
	})
	require.NoError(t, err)

	stored, err := svc.GetConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "http://cam.local/stream", stored.URL)
	assert.False(t, stored.Enabled)

	// Disabled config leaves the session stopped
	assert.Equal(t, services.SessionStopped, svc.Status().State)
}

func TestApplyConfigEnabledReachesFailedOnDeadCamera(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newTestPipeline(repo)
	defer svc.Shutdown()

	err := svc.ApplyConfig(context.Background(), models.StreamConfig{
		URL:     "http://cam.local/stream",
		Enabled: true,
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return svc.Status().State == services.SessionFailed
	}, time.Second, time.Millisecond)

	assert.NotEmpty(t, svc.Status().LastFailure)
}

func TestApplyConfigRefusedWhenRecognitionDisabled(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newTestPipelineWithEmbedder(repo, nil)
	defer svc.Shutdown()

	err := svc.ApplyConfig(context.Background(), models.StreamConfig{
		URL:     "http://cam.local/stream",
		Enabled: true,
	})
	assert.ErrorIs(t, err, services.ErrRecognitionDisabled)

	// A refused config changes nothing, stored or running
	stored, err := svc.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, services.SessionStopped, svc.Status().State)

	// Disabling still works without recognition
	err = svc.ApplyConfig(context.Background(), models.StreamConfig{Enabled: false})
	assert.NoError(t, err)
}

func TestApplyConfigDisableWithoutURL(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newTestPipeline(repo)
	defer svc.Shutdown()

	err := svc.ApplyConfig(context.Background(), models.StreamConfig{Enabled: false})
	require.NoError(t, err)

	stored, err := svc.GetConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Enabled)
	assert.Equal(t, services.SessionStopped, svc.Status().State)

	// A URL submitted alongside enabled=false is still validated
	err = svc.ApplyConfig(context.Background(), models.StreamConfig{URL: "rtsp://cam.local", Enabled: false})
	assert.ErrorIs(t, err, services.ErrInvalidStreamURL)
}

func TestRestartWithoutConfigIsNoOp(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := newTestPipeline(repo)
	defer svc.Shutdown()

	require.NoError(t, svc.Restart(context.Background()))
	assert.Equal(t, services.SessionStopped, svc.Status().State)
}
