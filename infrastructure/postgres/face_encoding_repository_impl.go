package postgres

import (
	"context"

	"gorm.io/gorm"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
)

type FaceEncodingRepositoryImpl struct {
	db *gorm.DB
}

func NewFaceEncodingRepository(db *gorm.DB) repositories.FaceEncodingRepository {
	return &FaceEncodingRepositoryImpl{db: db}
}

func (r *FaceEncodingRepositoryImpl) Append(ctx context.Context, encoding *models.FaceEncoding) error {
	return r.db.WithContext(ctx).Create(encoding).Error
}

// AllIdentities reads the whole gallery fresh on every call, ordered so rows
// group by student. The matcher sees enrollments committed before this read;
// a row is only visible once its embedding is fully written (single INSERT).
func (r *FaceEncodingRepositoryImpl) AllIdentities(ctx context.Context) ([]repositories.IdentityEmbeddings, error) {
	var encodings []models.FaceEncoding
	if err := r.db.WithContext(ctx).
		Order("student_id, created_at").
		Find(&encodings).Error; err != nil {
		return nil, err
	}

	var identities []repositories.IdentityEmbeddings
	for _, enc := range encodings {
		vec := enc.Embedding.Slice()
		n := len(identities)
		if n > 0 && identities[n-1].StudentID == enc.StudentID {
			identities[n-1].Embeddings = append(identities[n-1].Embeddings, vec)
			continue
		}
		identities = append(identities, repositories.IdentityEmbeddings{
			StudentID:  enc.StudentID,
			Embeddings: [][]float32{vec},
		})
	}

	return identities, nil
}

func (r *FaceEncodingRepositoryImpl) HasEncodings(ctx context.Context, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FaceEncoding{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *FaceEncodingRepositoryImpl) CountStudentsWithEncodings(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FaceEncoding{}).
		Distinct("student_id").
		Count(&count).Error
	return count, err
}
