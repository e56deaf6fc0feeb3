package serviceimpl

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
)

type recordingGallery struct {
	appended []*models.FaceEncoding
}

func (g *recordingGallery) Append(ctx context.Context, encoding *models.FaceEncoding) error {
	g.appended = append(g.appended, encoding)
	return nil
}

func (g *recordingGallery) AllIdentities(ctx context.Context) ([]repositories.IdentityEmbeddings, error) {
	return nil, nil
}

func (g *recordingGallery) HasEncodings(ctx context.Context, studentID string) (bool, error) {
	for _, e := range g.appended {
		if e.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (g *recordingGallery) CountStudentsWithEncodings(ctx context.Context) (int64, error) {
	return int64(len(g.appended)), nil
}

type scriptedEmbedder struct {
	faces []services.DetectedFace
	err   error
}

func (e *scriptedEmbedder) ExtractFaces(ctx context.Context, imageData []byte, mimeType string) ([]services.DetectedFace, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.faces, nil
}

func (e *scriptedEmbedder) IsAvailable(ctx context.Context) bool { return true }

func validEmbedding() []float32 {
	return make([]float32, models.EmbeddingDim)
}

func encodedPhoto() string {
	return base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
}

func TestBulkUploadSuccess(t *testing.T) {
	gallery := &recordingGallery{}
	students := newFakeStudentRepo()
	embedder := &scriptedEmbedder{faces: []services.DetectedFace{{Embedding: validEmbedding(), Confidence: 0.97}}}
	svc := NewStudentService(students, gallery, embedder)

	results, err := svc.BulkUpload(context.Background(), []services.StudentUpload{
		{StudentID: "S1", Name: "Alice", Photos: []string{encodedPhoto()}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "success", results[0].Status)
	assert.Equal(t, 1, results[0].EmbeddingsCount)
	assert.Len(t, gallery.appended, 1)
	assert.Equal(t, "S1", gallery.appended[0].StudentID)

	_, err = students.GetByStudentID(context.Background(), "S1")
	assert.NoError(t, err)
}

func TestBulkUploadAlreadyExists(t *testing.T) {
	gallery := &recordingGallery{}
	students := newFakeStudentRepo("S1")
	embedder := &scriptedEmbedder{faces: []services.DetectedFace{{Embedding: validEmbedding()}}}
	svc := NewStudentService(students, gallery, embedder)

	results, err := svc.BulkUpload(context.Background(), []services.StudentUpload{
		{StudentID: "S1", Name: "Alice", Photos: []string{encodedPhoto()}},
	})
	require.NoError(t, err)

	assert.Equal(t, "already_exists", results[0].Status)
	assert.Empty(t, gallery.appended)
}

func TestBulkUploadNoFaceDetected(t *testing.T) {
	gallery := &recordingGallery{}
	embedder := &scriptedEmbedder{err: services.ErrNoFaceFound}
	svc := NewStudentService(newFakeStudentRepo(), gallery, embedder)

	results, err := svc.BulkUpload(context.Background(), []services.StudentUpload{
		{StudentID: "S1", Name: "Alice", Photos: []string{encodedPhoto()}},
	})
	require.NoError(t, err)

	assert.Equal(t, "no_face_detected", results[0].Status)
	assert.Empty(t, gallery.appended)
}

func TestBulkUploadDimensionMismatch(t *testing.T) {
	gallery := &recordingGallery{}
	embedder := &scriptedEmbedder{faces: []services.DetectedFace{{Embedding: []float32{1, 2, 3}}}}
	svc := NewStudentService(newFakeStudentRepo(), gallery, embedder)

	results, err := svc.BulkUpload(context.Background(), []services.StudentUpload{
		{StudentID: "S1", Name: "Alice", Photos: []string{encodedPhoto()}},
	})
	require.NoError(t, err)

	assert.Equal(t, "error", results[0].Status)
	assert.Contains(t, results[0].Message, "dimensionality")

	// Rejected enrollment leaves no partial write
	assert.Empty(t, gallery.appended)
}

func TestBulkUploadBatchIsolation(t *testing.T) {
	gallery := &recordingGallery{}
	embedder := &scriptedEmbedder{faces: []services.DetectedFace{{Embedding: validEmbedding()}}}
	svc := NewStudentService(newFakeStudentRepo(), gallery, embedder)

	results, err := svc.BulkUpload(context.Background(), []services.StudentUpload{
		{StudentID: "", Name: "Nameless", Photos: []string{encodedPhoto()}},
		{StudentID: "S2", Name: "Bob", Photos: []string{encodedPhoto()}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "error", results[0].Status)
	assert.Equal(t, "success", results[1].Status)
}

func TestEnrollPhotoAppendsToExistingSet(t *testing.T) {
	gallery := &recordingGallery{}
	students := newFakeStudentRepo("S1")
	embedder := &scriptedEmbedder{faces: []services.DetectedFace{
		{Embedding: validEmbedding()},
		{Embedding: validEmbedding()},
	}}
	svc := NewStudentService(students, gallery, embedder)

	count, err := svc.EnrollPhoto(context.Background(), "S1", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Len(t, gallery.appended, 2)
}

func TestEnrollPhotoUnknownStudent(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), &recordingGallery{}, &scriptedEmbedder{})

	_, err := svc.EnrollPhoto(context.Background(), "ghost", []byte("jpeg"), "image/jpeg")
	assert.Error(t, err)
}

func TestDecodePhotoDataURL(t *testing.T) {
	data, mimeType, err := decodePhoto("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	require.NoError(t, err)

	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", mimeType)
}

func TestDecodePhotoBareBase64(t *testing.T) {
	data, mimeType, err := decodePhoto(base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")))
	require.NoError(t, err)

	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestDecodePhotoInvalid(t *testing.T) {
	_, _, err := decodePhoto("!!!not-base64!!!")
	assert.Error(t, err)
}
