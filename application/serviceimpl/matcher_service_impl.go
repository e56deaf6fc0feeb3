package serviceimpl

import (
	"context"
	"math"

	"classtrack/domain/repositories"
	"classtrack/domain/services"
)

type MatcherServiceImpl struct {
	faceRepo  repositories.FaceEncodingRepository
	threshold float64
}

func NewMatcherService(faceRepo repositories.FaceEncodingRepository, threshold float64) services.MatcherService {
	if threshold <= 0 {
		threshold = services.DefaultMatchThreshold
	}
	return &MatcherServiceImpl{
		faceRepo:  faceRepo,
		threshold: threshold,
	}
}

// Match scores the probe against every enrolled identity and returns the best
// one, provided it clears the threshold and is not tied with a second identity.
// Each identity is scored by its best reference embedding, so enrolling more
// photos of a student can only help that student.
func (s *MatcherServiceImpl) Match(ctx context.Context, probe services.Probe) (services.MatchResult, error) {
	identities, err := s.faceRepo.AllIdentities(ctx)
	if err != nil {
		return services.NoMatch, err
	}
	if len(identities) == 0 {
		return services.NoMatch, nil
	}

	var (
		bestID    string
		bestScore = math.Inf(-1)
		tied      bool
	)

	for _, identity := range identities {
		score := math.Inf(-1)
		for _, ref := range identity.Embeddings {
			if sim := cosineSimilarity(probe.Embedding, ref); sim > score {
				score = sim
			}
		}
		if len(identity.Embeddings) == 0 {
			continue
		}

		switch {
		case score > bestScore:
			bestScore = score
			bestID = identity.StudentID
			tied = false
		case score == bestScore:
			tied = true
		}
	}

	if bestID == "" || bestScore < s.threshold {
		return services.NoMatch, nil
	}
	if tied {
		// Two identities scored identically; an ambiguous match is no match.
		return services.NoMatch, nil
	}

	return services.MatchResult{
		Matched:   true,
		StudentID: bestID,
		Score:     bestScore,
	}, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors, clamped
// to [-1, 1]. Zero-norm or mismatched vectors score 0, never an error.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}
