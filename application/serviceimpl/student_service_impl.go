package serviceimpl

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
	"classtrack/pkg/logger"
)

type StudentServiceImpl struct {
	studentRepo repositories.StudentRepository
	faceRepo    repositories.FaceEncodingRepository
	embedder    services.Embedder
}

func NewStudentService(
	studentRepo repositories.StudentRepository,
	faceRepo repositories.FaceEncodingRepository,
	embedder services.Embedder,
) services.StudentService {
	return &StudentServiceImpl{
		studentRepo: studentRepo,
		faceRepo:    faceRepo,
		embedder:    embedder,
	}
}

// BulkUpload enrolls many students in one pass. Each student gets an individual
// result; one bad entry never aborts the batch.
func (s *StudentServiceImpl) BulkUpload(ctx context.Context, uploads []services.StudentUpload) ([]services.UploadResult, error) {
	results := make([]services.UploadResult, 0, len(uploads))

	for _, upload := range uploads {
		results = append(results, s.enrollOne(ctx, upload))
	}

	logger.Face("BulkUpload", "bulk enrollment finished", map[string]interface{}{
		"students": len(uploads),
	})

	return results, nil
}

func (s *StudentServiceImpl) enrollOne(ctx context.Context, upload services.StudentUpload) services.UploadResult {
	result := services.UploadResult{StudentID: upload.StudentID}

	if upload.StudentID == "" || upload.Name == "" {
		result.Status = "error"
		result.Message = "student_id and name are required"
		return result
	}

	existing, err := s.studentRepo.GetByStudentID(ctx, upload.StudentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}
	if existing != nil {
		result.Status = "already_exists"
		return result
	}

	embeddingCount := 0
	for _, photo := range upload.Photos {
		imageData, mimeType, err := decodePhoto(photo)
		if err != nil {
			logger.FaceError("BulkUpload", "failed to decode photo", err, map[string]interface{}{
				"student_id": upload.StudentID,
			})
			continue
		}

		count, err := s.extractAndAppend(ctx, upload.StudentID, imageData, mimeType)
		if err != nil {
			if errors.Is(err, services.ErrInvalidEmbedding) {
				result.Status = "error"
				result.Message = err.Error()
				return result
			}
			if !errors.Is(err, services.ErrNoFaceFound) {
				logger.FaceError("BulkUpload", "face extraction failed", err, map[string]interface{}{
					"student_id": upload.StudentID,
				})
			}
			continue
		}
		embeddingCount += count
	}

	if embeddingCount == 0 {
		result.Status = "no_face_detected"
		return result
	}

	student := &models.Student{
		ID:        uuid.New(),
		StudentID: upload.StudentID,
		Name:      upload.Name,
		Email:     upload.Email,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}

	result.Status = "success"
	result.EmbeddingsCount = embeddingCount
	return result
}

// EnrollPhoto appends embeddings from one photo to an existing student. Returns
// how many reference embeddings were added.
func (s *StudentServiceImpl) EnrollPhoto(ctx context.Context, studentID string, imageData []byte, mimeType string) (int, error) {
	if _, err := s.studentRepo.GetByStudentID(ctx, studentID); err != nil {
		return 0, fmt.Errorf("unknown student %s: %w", studentID, err)
	}

	count, err := s.extractAndAppend(ctx, studentID, imageData, mimeType)
	if err != nil {
		return 0, err
	}

	logger.Face("EnrollPhoto", "reference embeddings added", map[string]interface{}{
		"student_id": studentID,
		"count":      count,
	})

	return count, nil
}

// extractAndAppend runs the embedder and appends each detected face to the
// gallery. Dimensionality is checked before any write, so a bad photo never
// leaves a partial set behind.
func (s *StudentServiceImpl) extractAndAppend(ctx context.Context, studentID string, imageData []byte, mimeType string) (int, error) {
	faces, err := s.embedder.ExtractFaces(ctx, imageData, mimeType)
	if err != nil {
		return 0, err
	}

	for _, face := range faces {
		if len(face.Embedding) != models.EmbeddingDim {
			return 0, fmt.Errorf("%w: got %d, want %d", services.ErrInvalidEmbedding, len(face.Embedding), models.EmbeddingDim)
		}
	}

	for _, face := range faces {
		encoding := &models.FaceEncoding{
			ID:         uuid.New(),
			StudentID:  studentID,
			Embedding:  pgvector.NewVector(face.Embedding),
			Confidence: face.Confidence,
		}
		if err := s.faceRepo.Append(ctx, encoding); err != nil {
			return 0, fmt.Errorf("failed to save encoding: %w", err)
		}
	}

	return len(faces), nil
}

// ListStudents returns a page of students with their enrollment state.
func (s *StudentServiceImpl) ListStudents(ctx context.Context, offset, limit int) ([]services.StudentInfo, int64, error) {
	students, total, err := s.studentRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}

	infos := make([]services.StudentInfo, 0, len(students))
	for _, student := range students {
		enrolled, err := s.faceRepo.HasEncodings(ctx, student.StudentID)
		if err != nil {
			return nil, 0, err
		}
		infos = append(infos, services.StudentInfo{
			Student:         student,
			HasFaceEncoding: enrolled,
		})
	}

	return infos, total, nil
}

// decodePhoto accepts either a bare base64 string or a data URL.
func decodePhoto(photo string) ([]byte, string, error) {
	mimeType := "image/jpeg"

	if strings.HasPrefix(photo, "data:") {
		parts := strings.SplitN(photo, ",", 2)
		if len(parts) != 2 {
			return nil, "", fmt.Errorf("malformed data URL")
		}
		meta := strings.TrimPrefix(parts[0], "data:")
		if idx := strings.Index(meta, ";"); idx >= 0 {
			meta = meta[:idx]
		}
		if meta != "" {
			mimeType = meta
		}
		photo = parts[1]
	}

	data, err := base64.StdEncoding.DecodeString(photo)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image: %w", err)
	}

	return data, mimeType, nil
}
