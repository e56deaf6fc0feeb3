package camera

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBoundary = "frameboundary"

func mjpegServer(t *testing.T, frames [][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+testBoundary)
		w.WriteHeader(http.StatusOK)

		for _, frame := range frames {
			fmt.Fprintf(w, "--%s\r\n", testBoundary)
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
			w.Write(frame)
			fmt.Fprintf(w, "\r\n")
		}
		fmt.Fprintf(w, "--%s--\r\n", testBoundary)
	}))
}

func TestDialAndReadFrames(t *testing.T) {
	server := mjpegServer(t, [][]byte{[]byte("frame-one"), []byte("frame-two")})
	defer server.Close()

	dialer := NewMJPEGDialer(5 * time.Second)
	source, err := dialer.Dial(context.Background(), server.URL, "", "")
	require.NoError(t, err)
	defer source.Close()

	frame, err := source.NextFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-one"), frame.Data)
	assert.Equal(t, "image/jpeg", frame.MimeType)
	assert.WithinDuration(t, time.Now(), frame.CapturedAt, time.Second)

	frame, err = source.NextFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-two"), frame.Data)

	// Stream ended
	_, err = source.NextFrame(context.Background())
	assert.Error(t, err)
}

func TestDialRejectsNonMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a camera</html>"))
	}))
	defer server.Close()

	dialer := NewMJPEGDialer(5 * time.Second)
	_, err := dialer.Dial(context.Background(), server.URL, "", "")
	assert.ErrorIs(t, err, ErrNotMultipart)
}

func TestDialRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	dialer := NewMJPEGDialer(5 * time.Second)
	_, err := dialer.Dial(context.Background(), server.URL, "", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDialSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+testBoundary)
		fmt.Fprintf(w, "--%s--\r\n", testBoundary)
	}))
	defer server.Close()

	dialer := NewMJPEGDialer(5 * time.Second)
	source, err := dialer.Dial(context.Background(), server.URL, "admin", "secret")
	require.NoError(t, err)
	source.Close()

	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestDialRejectsBadScheme(t *testing.T) {
	dialer := NewMJPEGDialer(5 * time.Second)

	_, err := dialer.Dial(context.Background(), "rtsp://cam.local/stream", "", "")
	assert.Error(t, err)

	_, err = dialer.Dial(context.Background(), "", "", "")
	assert.Error(t, err)
}

func TestNextFrameHonorsContext(t *testing.T) {
	server := mjpegServer(t, nil)
	defer server.Close()

	dialer := NewMJPEGDialer(5 * time.Second)
	source, err := dialer.Dial(context.Background(), server.URL, "", "")
	require.NoError(t, err)
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.NextFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseIsIdempotent(t *testing.T) {
	server := mjpegServer(t, nil)
	defer server.Close()

	dialer := NewMJPEGDialer(5 * time.Second)
	source, err := dialer.Dial(context.Background(), server.URL, "", "")
	require.NoError(t, err)

	assert.NoError(t, source.Close())
	assert.NoError(t, source.Close())
}
