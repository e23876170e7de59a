package sentiment

import (
	"context"
	"errors"

	"SentimentOracle/internal/domain/models"
	domsvc "SentimentOracle/internal/domain/service"
)

// Oracle reads a ScoreSource and aggregates its scores.
type Oracle struct {
	source domsvc.ScoreSource
	th     Thresholds
}

// NewOracle creates an Oracle that classifies the scores of source with th.
func NewOracle(source domsvc.ScoreSource, th Thresholds) *Oracle {
	return &Oracle{source: source, th: th}
}

// Thresholds returns the thresholds the oracle classifies with.
func (o *Oracle) Thresholds() Thresholds { return o.th }

// Evaluate fetches scores and aggregates them. Source failures are returned as
// *models.SentimentError; an empty or invalid score set wraps ErrInvalidInput.
func (o *Oracle) Evaluate(ctx context.Context) (models.SentimentResult, error) {
	scores, err := o.source.GetScores(ctx)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return models.SentimentResult{}, err
		}
		return models.SentimentResult{}, &models.SentimentError{Source: o.source.Name(), Err: err}
	}
	return Aggregate(scores, o.th)
}

var _ domsvc.SentimentEvaluator = (*Oracle)(nil)
