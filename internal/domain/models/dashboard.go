package models

import "time"

// Note: no transport (json/http) concerns beyond field tags here.

// HistoryRow is one line of the signal history table.
type HistoryRow struct {
	Time   string `json:"Time"`
	Signal Signal `json:"Signal"`
}

// Snapshot is everything the dashboard page renders for one timeframe.
type Snapshot struct {
	Symbol    string            `json:"symbol"`
	Range     string            `json:"range"`
	Interval  string            `json:"interval"`
	Policy    string            `json:"policy"`
	Prices    PriceSeries       `json:"prices"`
	Markers   []ChartMarker     `json:"markers"`
	Sentiment SentimentResult   `json:"sentiment"`
	History   []HistoryRow      `json:"history"`
	UpdatedAt time.Time         `json:"updated_at"`
	Errors    map[string]string `json:"errors,omitempty"`
}
