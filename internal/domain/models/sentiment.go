package models

import "time"

// Signal is the ternary trading recommendation derived from a sentiment score.
type Signal string

const (
	SignalBuy  Signal = "Buy"
	SignalHold Signal = "Hold"
	SignalSell Signal = "Sell"
)

// Valid reports whether s is one of Buy, Hold or Sell.
func (s Signal) Valid() bool {
	switch s {
	case SignalBuy, SignalHold, SignalSell:
		return true
	default:
		return false
	}
}

// SourceScoreSet maps a sentiment feed name to its score in [-1, 1].
type SourceScoreSet map[string]float64

// SentimentResult is the aggregated view of a SourceScoreSet.
// Buy, Hold and Sell are integer percentages; they are not normalized and
// do not always sum to 100.
type SentimentResult struct {
	Buy     int            `json:"Buy"`
	Hold    int            `json:"Hold"`
	Sell    int            `json:"Sell"`
	Score   float64        `json:"score"`
	Signal  Signal         `json:"signal"`
	Sources SourceScoreSet `json:"sources,omitempty"`
}

// FallbackSentiment is shown when the sentiment source fails.
func FallbackSentiment() SentimentResult {
	return SentimentResult{Buy: 0, Hold: 100, Sell: 0, Signal: SignalHold}
}

// SignalEvent is one entry of the in-session signal history.
type SignalEvent struct {
	ID     string    `json:"id"`
	Time   time.Time `json:"time"`
	Signal Signal    `json:"signal"`
	Score  float64   `json:"score"`
	Symbol string    `json:"symbol,omitempty"`
}
