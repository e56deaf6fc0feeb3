package serviceimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
)

type fakeGallery struct {
	identities []repositories.IdentityEmbeddings
}

func (f *fakeGallery) Append(ctx context.Context, encoding *models.FaceEncoding) error {
	return nil
}

func (f *fakeGallery) AllIdentities(ctx context.Context) ([]repositories.IdentityEmbeddings, error) {
	return f.identities, nil
}

func (f *fakeGallery) HasEncodings(ctx context.Context, studentID string) (bool, error) {
	return false, nil
}

func (f *fakeGallery) CountStudentsWithEncodings(ctx context.Context) (int64, error) {
	return int64(len(f.identities)), nil
}

func newMatcher(identities ...repositories.IdentityEmbeddings) services.MatcherService {
	return NewMatcherService(&fakeGallery{identities: identities}, services.DefaultMatchThreshold)
}

func probe(embedding ...float32) services.Probe {
	return services.Probe{Embedding: embedding}
}

func TestMatchAboveThreshold(t *testing.T) {
	matcher := newMatcher(
		repositories.IdentityEmbeddings{StudentID: "S1", Embeddings: [][]float32{{1, 0}}},
		repositories.IdentityEmbeddings{StudentID: "S2", Embeddings: [][]float32{{0, 1}}},
	)

	// Cosine against S1 is 0.8, against S2 is 0.6; S1 wins
	result, err := matcher.Match(context.Background(), probe(0.8, 0.6))
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Equal(t, "S1", result.StudentID)
	assert.InDelta(t, 0.8, result.Score, 1e-6)
}

func TestMatchSelfProbeScoresOne(t *testing.T) {
	matcher := newMatcher(
		repositories.IdentityEmbeddings{StudentID: "S1", Embeddings: [][]float32{{0.3, 0.4, 0.5}}},
	)

	result, err := matcher.Match(context.Background(), probe(0.3, 0.4, 0.5))
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.InDelta(t, 1.0, result.Score, 1e-6)
}

func TestMatchBelowThreshold(t *testing.T) {
	matcher := newMatcher(
		repositories.IdentityEmbeddings{StudentID: "S1", Embeddings: [][]float32{{1, 0}}},
	)

	// Orthogonal probe scores 0
	result, err := matcher.Match(context.Background(), probe(0, 1))
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.Equal(t, services.NoMatch, result)
}

func TestMatchExactTieIsNoMatch(t *testing.T) {
	matcher := newMatcher(
		repositories.IdentityEmbeddings{StudentID: "S1", Embeddings: [][]float32{{1, 0}}},
		repositories.IdentityEmbeddings{StudentID: "S2", Embeddings: [][]float32{{1, 0}}},
	)

	result, err := matcher.Match(context.Background(), probe(1, 0))
	require.NoError(t, err)

	assert.False(t, result.Matched)
}

func TestMatchBestReferencePerIdentity(t *testing.T) {
	matcher := newMatcher(
		repositories.IdentityEmbeddings{StudentID: "S1", Embeddings: [][]float32{{0, 1}, {1, 0}}},
	)

	// The weak reference must not drag the identity down
	result, err := matcher.Match(context.Background(), probe(1, 0))
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.InDelta(t, 1.0, result.Score, 1e-6)
}

func TestMatchEmptyGallery(t *testing.T) {
	matcher := newMatcher()

	result, err := matcher.Match(context.Background(), probe(1, 0))
	require.NoError(t, err)

	assert.False(t, result.Matched)
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 0}))
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, []float32{1}))
}

func TestCosineSimilarityClamped(t *testing.T) {
	sim := cosineSimilarity([]float32{1, 1}, []float32{1, 1})
	assert.LessOrEqual(t, sim, 1.0)
	assert.InDelta(t, 1.0, sim, 1e-9)

	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}
