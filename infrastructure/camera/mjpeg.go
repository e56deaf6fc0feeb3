package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotMultipart means the endpoint answered but is not an MJPEG stream.
	ErrNotMultipart = errors.New("endpoint is not a multipart MJPEG stream")
)

// Frame is one still image pulled off the stream.
type Frame struct {
	Data       []byte
	MimeType   string
	CapturedAt time.Time
}

// Source is an open connection to a camera. NextFrame blocks until the next
// frame arrives or the stream errors; Close releases the connection and is safe
// to call more than once.
type Source interface {
	NextFrame(ctx context.Context) (*Frame, error)
	Close() error
}

// Dialer opens a Source for a camera URL. Faked in session tests.
type Dialer interface {
	Dial(ctx context.Context, rawURL, username, password string) (Source, error)
}

// MJPEGDialer connects to IP cameras that serve multipart/x-mixed-replace
// MJPEG over HTTP, the common export format for classroom CCTV units.
type MJPEGDialer struct {
	httpClient *http.Client
}

func NewMJPEGDialer(connectTimeout time.Duration) *MJPEGDialer {
	return &MJPEGDialer{
		httpClient: &http.Client{
			// No overall timeout: the response body is a live stream.
			Timeout: 0,
			Transport: &http.Transport{
				ResponseHeaderTimeout: connectTimeout,
			},
		},
	}
}

// Dial opens the stream and validates the multipart content type before
// handing back a Source.
func (d *MJPEGDialer) Dial(ctx context.Context, rawURL, username, password string) (Source, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse camera URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported camera URL scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if username != "" {
		req.SetBasicAuth(username, password)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to camera: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("camera returned status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to parse content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		return nil, ErrNotMultipart
	}

	return &mjpegSource{
		body:   resp.Body,
		reader: multipart.NewReader(resp.Body, params["boundary"]),
	}, nil
}

type mjpegSource struct {
	body   io.ReadCloser
	reader *multipart.Reader
	closed bool
}

func (s *mjpegSource) NextFrame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	part, err := s.reader.NextPart()
	if err != nil {
		return nil, fmt.Errorf("failed to read next frame: %w", err)
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}

	mimeType := part.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return &Frame{
		Data:       data,
		MimeType:   mimeType,
		CapturedAt: time.Now(),
	}, nil
}

func (s *mjpegSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
