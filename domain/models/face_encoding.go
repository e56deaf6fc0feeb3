package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the dimensionality of reference embeddings (Facenet).
const EmbeddingDim = 128

// FaceEncoding is one reference embedding for a student. Rows are append-only:
// re-enrolling adds vectors, it never replaces the existing set.
type FaceEncoding struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID string    `gorm:"not null;index"`

	Embedding pgvector.Vector `gorm:"type:vector(128);not null"`

	// Detection confidence reported by the embedder (0-1)
	Confidence float64

	CreatedAt time.Time
}

func (FaceEncoding) TableName() string {
	return "face_encodings"
}
