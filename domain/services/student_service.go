package services

import (
	"context"
	"errors"

	"classtrack/domain/models"
)

// ErrInvalidEmbedding means an embedding's dimensionality does not match the
// gallery's fixed dimension. The enrollment is rejected with no partial write.
var ErrInvalidEmbedding = errors.New("embedding dimensionality mismatch")

// StudentUpload is one student in a bulk enrollment request. Photos are base64
// encoded images; each usable face becomes one reference embedding.
type StudentUpload struct {
	StudentID string
	Name      string
	Email     string
	Photos    []string
}

// UploadResult reports the outcome for one uploaded student.
type UploadResult struct {
	StudentID       string `json:"student_id"`
	Status          string `json:"status"` // success, already_exists, no_face_detected, error
	EmbeddingsCount int    `json:"embeddings_count,omitempty"`
	Message         string `json:"message,omitempty"`
}

// StudentInfo is a student row with enrollment state for listings.
type StudentInfo struct {
	Student         models.Student `json:"student"`
	HasFaceEncoding bool           `json:"has_face_encoding"`
}

type StudentService interface {
	BulkUpload(ctx context.Context, uploads []StudentUpload) ([]UploadResult, error)
	ListStudents(ctx context.Context, offset, limit int) ([]StudentInfo, int64, error)

	// EnrollPhoto appends reference embeddings extracted from one photo to an
	// existing student's gallery set.
	EnrollPhoto(ctx context.Context, studentID string, imageData []byte, mimeType string) (int, error)
}
