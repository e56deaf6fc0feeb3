package services

import (
	"context"
	"time"
)

// DefaultMatchThreshold is the minimum cosine similarity for a positive match.
const DefaultMatchThreshold = 0.6

// Probe is a single observation: one embedding extracted from one detected face
// in one sampled frame. Probes are never persisted.
type Probe struct {
	Embedding  []float32
	CapturedAt time.Time
}

// MatchResult is the outcome of comparing a probe against the gallery. Score is
// the best similarity over all reference embeddings of the winning identity.
type MatchResult struct {
	Matched   bool
	StudentID string
	Score     float64
}

// NoMatch is the zero result.
var NoMatch = MatchResult{}

// MatcherService resolves a probe to an enrolled identity, or NoMatch when no
// identity clears the threshold or the best similarity is tied between two
// identities (an ambiguous match is not a match).
type MatcherService interface {
	Match(ctx context.Context, probe Probe) (MatchResult, error)
}
