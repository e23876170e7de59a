package sentiment

import (
	"math"
	"sort"

	"SentimentOracle/internal/domain/models"

	"github.com/shopspring/decimal"
)

const (
	// DefaultThreshold is the magnitude used by the current oracle.
	DefaultThreshold = 0.33
	// LegacyThreshold is the magnitude used by the random-source oracle.
	LegacyThreshold = 0.3

	// bandOffset is the fixed offset of the within-band breakdown formula.
	// It does not follow the configured thresholds.
	bandOffset = 0.33
)

// Thresholds split a final score into Buy, Hold and Sell.
// Buy applies to score > Buy; Sell applies to score < -Sell.
type Thresholds struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

var (
	DefaultThresholds = Thresholds{Buy: DefaultThreshold, Sell: DefaultThreshold}
	LegacyThresholds  = Thresholds{Buy: LegacyThreshold, Sell: LegacyThreshold}
)

// Breakdown holds the percentage split for a score.
type Breakdown struct {
	Buy  int
	Hold int
	Sell int
}

// Aggregate averages the source scores and maps the mean to a signal and a
// percentage breakdown. The input map is attached to the result unmodified.
func Aggregate(sources models.SourceScoreSet, th Thresholds) (models.SentimentResult, error) {
	final, err := Mean(sources)
	if err != nil {
		return models.SentimentResult{}, err
	}

	b := Split(final, th)
	return models.SentimentResult{
		Buy:     b.Buy,
		Hold:    b.Hold,
		Sell:    b.Sell,
		Score:   RoundScore(final),
		Signal:  Classify(final, th),
		Sources: sources,
	}, nil
}

// Mean returns the arithmetic mean of the scores, summed in key order.
func Mean(sources models.SourceScoreSet) (float64, error) {
	if len(sources) == 0 {
		return 0, models.InvalidInputf("empty source score set")
	}

	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sum := 0.0
	for _, k := range keys {
		v := sources[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, models.InvalidInputf("source %q: score is not finite", k)
		}
		if v < -1 || v > 1 {
			return 0, models.InvalidInputf("source %q: score %v outside [-1, 1]", k, v)
		}
		sum += v
	}
	return sum / float64(len(keys)), nil
}

// Classify maps a final score to a signal. A score equal to a threshold is Hold.
func Classify(final float64, th Thresholds) models.Signal {
	switch {
	case final > th.Buy:
		return models.SignalBuy
	case final < -th.Sell:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// Split computes the piecewise percentage breakdown. Values are truncated
// toward zero and are neither normalized nor clamped.
func Split(final float64, th Thresholds) Breakdown {
	switch {
	case final > th.Buy:
		return Breakdown{
			Buy:  int(final * 100),
			Hold: int((1 - final) * 100),
			Sell: 0,
		}
	case final < -th.Sell:
		return Breakdown{
			Buy:  0,
			Hold: int((1 + final) * 100),
			Sell: int(-final * 100),
		}
	default:
		return Breakdown{
			Buy:  int((final + bandOffset) * 50),
			Hold: int((1 - math.Abs(final)) * 100),
			Sell: int((bandOffset - final) * 50),
		}
	}
}

// RoundScore rounds to three decimal places, half away from zero, on the
// shortest decimal form of v. Ties therefore round up in magnitude
// (0.1235 -> 0.124), unlike rounding the exact binary value, which yields
// 0.123 for the same input.
func RoundScore(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return f
}
