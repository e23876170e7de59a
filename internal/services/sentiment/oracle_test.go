package sentiment

import (
	"context"
	"errors"
	"testing"

	"SentimentOracle/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

type failingSource struct{ err error }

func (s failingSource) Name() string { return "failing" }
func (s failingSource) GetScores(context.Context) (models.SourceScoreSet, error) {
	return nil, s.err
}

func TestFixedMockSource_ReturnsCopies(t *testing.T) {
	src := NewFixedMockSource(nil)
	a, err := src.GetScores(context.Background())
	require.NoError(t, err)
	a["CryptoPanic"] = 1

	b, err := src.GetScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -0.718, b["CryptoPanic"])
	assert.Len(t, b, len(SourceNames))
}

func TestFixedMockSource_CustomScores(t *testing.T) {
	in := models.SourceScoreSet{"only": 0.9}
	src := NewFixedMockSource(in)
	in["only"] = -0.9

	got, err := src.GetScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceScoreSet{"only": 0.9}, got)
}

func TestRandomSource_MapsUnitIntervalToScores(t *testing.T) {
	src := NewRandomSource(&seqRand{vals: []float64{0, 0.25, 0.5, 0.75, 1}})
	got, err := src.GetScores(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.SourceScoreSet{
		"CryptoPanic":    -1,
		"FearGreedIndex": -0.5,
		"GoogleTrends":   0,
		"OnChainMetrics": 0.5,
		"TechAnalysis":   1,
	}, got)
}

func TestRandomSource_SeededIsDeterministic(t *testing.T) {
	a, _ := NewSeededRandomSource(42).GetScores(context.Background())
	b, _ := NewSeededRandomSource(42).GetScores(context.Background())
	assert.Equal(t, a, b)
	for name, v := range a {
		assert.GreaterOrEqual(t, v, -1.0, name)
		assert.Less(t, v, 1.0, name)
	}
}

func TestOracle_EvaluateRandomAlwaysBuy(t *testing.T) {
	o := NewOracle(NewRandomSource(&seqRand{vals: []float64{0.9}}), LegacyThresholds)
	res, err := o.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SignalBuy, res.Signal)
	assert.Equal(t, 0.8, res.Score)
	assert.Equal(t, 0, res.Sell)
}

func TestOracle_SourceFailureIsSentimentError(t *testing.T) {
	o := NewOracle(failingSource{err: errors.New("feed down")}, DefaultThresholds)
	_, err := o.Evaluate(context.Background())

	var se *models.SentimentError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "failing", se.Source)
	assert.False(t, errors.Is(err, models.ErrInvalidInput))
}

func TestOracle_EmptyScoresFailFast(t *testing.T) {
	o := NewOracle(NewFixedMockSource(models.SourceScoreSet{}), DefaultThresholds)
	_, err := o.Evaluate(context.Background())
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	var se *models.SentimentError
	assert.False(t, errors.As(err, &se))
}
