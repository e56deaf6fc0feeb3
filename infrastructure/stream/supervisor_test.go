package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/domain/models"
	"classtrack/domain/services"
	"classtrack/pkg/config"
)

func testSupervisor(dialer *fakeDialer) *Supervisor {
	return NewSupervisor(
		config.StreamConfig{
			SampleInterval:  5 * time.Millisecond,
			MaxRetries:      3,
			RetryBaseDelay:  time.Millisecond,
			RetryMaxDelay:   5 * time.Millisecond,
			MaxReadFailures: 2,
		},
		dialer,
		fakeEmbedder{},
		fakeMatcher{},
		&fakeRecorder{},
		nil,
	)
}

func enabledConfig(url string) *models.StreamConfig {
	return &models.StreamConfig{URL: url, Enabled: true}
}

func TestSupervisorAppliesConfig(t *testing.T) {
	dialer := &fakeDialer{}
	sup := testSupervisor(dialer)
	defer sup.Stop()

	sup.Apply(enabledConfig("http://cam-a/stream"))

	assert.Eventually(t, func() bool {
		return sup.Status().State == services.SessionRunning
	}, time.Second, time.Millisecond)

	status := sup.Status()
	assert.Equal(t, "http://cam-a/stream", status.ConfigURL)
	assert.True(t, status.Enabled)
}

func TestSupervisorUnchangedConfigKeepsSession(t *testing.T) {
	dialer := &fakeDialer{}
	sup := testSupervisor(dialer)
	defer sup.Stop()

	sup.Apply(enabledConfig("http://cam-a/stream"))
	require.Eventually(t, func() bool {
		return sup.Status().State == services.SessionRunning
	}, time.Second, time.Millisecond)

	sup.Apply(enabledConfig("http://cam-a/stream"))

	// Same config, same session, no extra dial
	assert.Equal(t, 1, dialer.dialCount())
}

func TestSupervisorChangedConfigRestartsSession(t *testing.T) {
	dialer := &fakeDialer{}
	sup := testSupervisor(dialer)
	defer sup.Stop()

	sup.Apply(enabledConfig("http://cam-a/stream"))
	require.Eventually(t, func() bool {
		return sup.Status().State == services.SessionRunning
	}, time.Second, time.Millisecond)

	sup.Apply(enabledConfig("http://cam-b/stream"))

	// The old session's camera is released before the new one dials
	first := dialer.source(0)
	require.NotNil(t, first)
	assert.True(t, first.isClosed())

	assert.Eventually(t, func() bool {
		return sup.Status().State == services.SessionRunning && sup.Status().ConfigURL == "http://cam-b/stream"
	}, time.Second, time.Millisecond)
	assert.Equal(t, 2, dialer.dialCount())
}

func TestSupervisorDisabledConfigStops(t *testing.T) {
	dialer := &fakeDialer{}
	sup := testSupervisor(dialer)

	sup.Apply(enabledConfig("http://cam-a/stream"))
	require.Eventually(t, func() bool {
		return sup.Status().State == services.SessionRunning
	}, time.Second, time.Millisecond)

	disabled := enabledConfig("http://cam-a/stream")
	disabled.Enabled = false
	sup.Apply(disabled)

	assert.Equal(t, services.SessionStopped, sup.Status().State)
	src := dialer.source(0)
	require.NotNil(t, src)
	assert.True(t, src.isClosed())
}

func TestSupervisorStatusKeepsLastFailure(t *testing.T) {
	dialer := &fakeDialer{failures: 100}
	sup := testSupervisor(dialer)

	sup.Apply(enabledConfig("http://cam-a/stream"))

	require.Eventually(t, func() bool {
		return sup.Status().State == services.SessionFailed
	}, time.Second, time.Millisecond)

	sup.Stop()

	status := sup.Status()
	assert.Equal(t, services.SessionStopped, status.State)
	assert.Contains(t, status.LastFailure, "connection attempts failed")
}

func TestSupervisorRefusesEnabledConfigWithoutEmbedder(t *testing.T) {
	dialer := &fakeDialer{}
	sup := NewSupervisor(
		config.StreamConfig{
			SampleInterval:  5 * time.Millisecond,
			MaxRetries:      3,
			RetryBaseDelay:  time.Millisecond,
			RetryMaxDelay:   5 * time.Millisecond,
			MaxReadFailures: 2,
		},
		dialer,
		nil,
		fakeMatcher{},
		&fakeRecorder{},
		nil,
	)

	assert.False(t, sup.RecognitionAvailable())

	err := sup.Apply(enabledConfig("http://cam-a/stream"))
	assert.ErrorIs(t, err, services.ErrRecognitionDisabled)

	// No session was started and nothing dialed
	assert.Equal(t, services.SessionStopped, sup.Status().State)
	assert.Equal(t, 0, dialer.dialCount())

	// Disabling is still allowed without an embedder
	disabled := enabledConfig("http://cam-a/stream")
	disabled.Enabled = false
	assert.NoError(t, sup.Apply(disabled))
}

func TestSupervisorRestartAfterFailure(t *testing.T) {
	dialer := &fakeDialer{failures: 3}
	sup := testSupervisor(dialer)
	defer sup.Stop()

	sup.Apply(enabledConfig("http://cam-a/stream"))
	require.Eventually(t, func() bool {
		return sup.Status().State == services.SessionFailed
	}, time.Second, time.Millisecond)

	// The retry budget is spent; a restart gets a fresh one
	sup.Restart()

	assert.Eventually(t, func() bool {
		return sup.Status().State == services.SessionRunning
	}, time.Second, time.Millisecond)
}
