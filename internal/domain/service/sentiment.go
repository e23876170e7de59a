package service

import (
	"context"

	"SentimentOracle/internal/domain/models"
)

// ScoreSource produces one score per named sentiment feed.
type ScoreSource interface {
	Name() string
	GetScores(ctx context.Context) (models.SourceScoreSet, error)
}

// SentimentEvaluator turns the current source scores into a SentimentResult.
type SentimentEvaluator interface {
	Evaluate(ctx context.Context) (models.SentimentResult, error)
}
