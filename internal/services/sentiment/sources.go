package sentiment

import (
	"context"
	"math/rand"
	"sync"

	"SentimentOracle/internal/domain/models"
	domsvc "SentimentOracle/internal/domain/service"
)

// SourceNames are the feeds the mock sources report on.
var SourceNames = []string{
	"CryptoPanic",
	"FearGreedIndex",
	"GoogleTrends",
	"OnChainMetrics",
	"TechAnalysis",
}

// DefaultMockScores are the scores reported by FixedMockSource by default.
func DefaultMockScores() models.SourceScoreSet {
	return models.SourceScoreSet{
		"CryptoPanic":    -0.718,
		"FearGreedIndex": -0.427,
		"GoogleTrends":   0.614,
		"OnChainMetrics": 0.569,
		"TechAnalysis":   0.62,
	}
}

// FixedMockSource always reports the same scores.
type FixedMockSource struct {
	scores models.SourceScoreSet
}

// NewFixedMockSource copies scores; a nil map selects DefaultMockScores.
func NewFixedMockSource(scores models.SourceScoreSet) *FixedMockSource {
	if scores == nil {
		scores = DefaultMockScores()
	}
	cp := make(models.SourceScoreSet, len(scores))
	for k, v := range scores {
		cp[k] = v
	}
	return &FixedMockSource{scores: cp}
}

func (s *FixedMockSource) Name() string { return "fixed" }

// GetScores returns a fresh copy on every call.
func (s *FixedMockSource) GetScores(_ context.Context) (models.SourceScoreSet, error) {
	out := make(models.SourceScoreSet, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out, nil
}

// Float64er is the subset of *rand.Rand used by RandomSource.
type Float64er interface {
	Float64() float64
}

// RandomSource draws an independent uniform score in [-1, 1] per source name.
type RandomSource struct {
	mu    sync.Mutex
	rng   Float64er
	names []string
}

// NewRandomSource uses rng for every draw.
func NewRandomSource(rng Float64er) *RandomSource {
	return &RandomSource{rng: rng, names: SourceNames}
}

// NewSeededRandomSource builds a RandomSource over math/rand with seed.
func NewSeededRandomSource(seed int64) *RandomSource {
	return NewRandomSource(rand.New(rand.NewSource(seed)))
}

func (s *RandomSource) Name() string { return "random" }

// GetScores draws a fresh uniform score in [-1, 1] for every source name.
func (s *RandomSource) GetScores(_ context.Context) (models.SourceScoreSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(models.SourceScoreSet, len(s.names))
	for _, name := range s.names {
		out[name] = s.rng.Float64()*2 - 1
	}
	return out, nil
}

var (
	_ domsvc.ScoreSource = (*FixedMockSource)(nil)
	_ domsvc.ScoreSource = (*RandomSource)(nil)
)
