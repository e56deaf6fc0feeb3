package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"classtrack/domain/services"
)

// FaceClient communicates with the Python face embedding service. It is the
// Embedder: frames and enrollment photos go in, embeddings come out.
type FaceClient struct {
	baseURL    string
	httpClient *http.Client
}

type detectedFace struct {
	BboxX      float64   `json:"bbox_x"`
	BboxY      float64   `json:"bbox_y"`
	BboxWidth  float64   `json:"bbox_width"`
	BboxHeight float64   `json:"bbox_height"`
	Embedding  []float32 `json:"embedding"`
	Confidence float64   `json:"confidence"`
}

type extractResponse struct {
	Success bool           `json:"success"`
	Faces   []detectedFace `json:"faces"`
	Error   string         `json:"error,omitempty"`

	ProcessingTimeMs int `json:"processing_time_ms"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// NewFaceClient creates a new face API client
func NewFaceClient(baseURL string) *FaceClient {
	return &FaceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Embedding can take time on CPU
		},
	}
}

// ExtractFaces sends image bytes to the face service and returns one entry per
// detected face. A successful response with zero faces is ErrNoFaceFound.
func (c *FaceClient) ExtractFaces(ctx context.Context, imageData []byte, mimeType string) ([]services.DetectedFace, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/extract-bytes", bytes.NewBuffer(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call face API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: face API status %d: %s", services.ErrDetection, resp.StatusCode, string(body))
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("%w: %s", services.ErrDetection, result.Error)
	}

	if len(result.Faces) == 0 {
		return nil, services.ErrNoFaceFound
	}

	faces := make([]services.DetectedFace, 0, len(result.Faces))
	for _, f := range result.Faces {
		faces = append(faces, services.DetectedFace{
			Embedding:  f.Embedding,
			BboxX:      f.BboxX,
			BboxY:      f.BboxY,
			BboxWidth:  f.BboxWidth,
			BboxHeight: f.BboxHeight,
			Confidence: f.Confidence,
		})
	}

	return faces, nil
}

// IsAvailable checks if the face API service is reachable
func (c *FaceClient) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}

	return health.Status == "ok" || health.Status == "healthy"
}
