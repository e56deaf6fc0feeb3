package repositories

import (
	"context"

	"classtrack/domain/models"
)

// IdentityEmbeddings pairs a student with their full reference set. The matcher
// walks one of these per enrolled identity on every probe.
type IdentityEmbeddings struct {
	StudentID  string
	Embeddings [][]float32
}

// FaceEncodingRepository is the gallery store: append-only reference embeddings
// per student. There is no delete; enrollment only ever adds vectors.
type FaceEncodingRepository interface {
	Append(ctx context.Context, encoding *models.FaceEncoding) error

	// AllIdentities returns the reference sets of every enrolled student as of
	// this read. Callers get a fresh snapshot per call, never a stale cache.
	AllIdentities(ctx context.Context) ([]IdentityEmbeddings, error)

	HasEncodings(ctx context.Context, studentID string) (bool, error)
	CountStudentsWithEncodings(ctx context.Context) (int64, error)
}
