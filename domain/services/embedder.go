package services

import (
	"context"
	"errors"
)

var (
	// ErrNoFaceFound means the embedder ran but found no face in the image.
	ErrNoFaceFound = errors.New("no face found in image")

	// ErrDetection covers malformed input or embedder-side failures.
	ErrDetection = errors.New("face detection failed")
)

// DetectedFace is one face the embedder found in an image.
type DetectedFace struct {
	Embedding  []float32
	BboxX      float64
	BboxY      float64
	BboxWidth  float64
	BboxHeight float64
	Confidence float64
}

// Embedder turns image bytes into face embeddings. Implemented by the external
// face service client; faked in tests.
type Embedder interface {
	ExtractFaces(ctx context.Context, imageData []byte, mimeType string) ([]DetectedFace, error)
	IsAvailable(ctx context.Context) bool
}
