package repository

// Timeframe maps a human range label to the kline query that covers it.
type Timeframe struct {
	Label    string `json:"label"`
	Interval string `json:"interval"`
	Limit    int    `json:"limit"`
}

var timeframes = []Timeframe{
	{Label: "1h", Interval: "1m", Limit: 60},
	{Label: "3h", Interval: "3m", Limit: 60},
	{Label: "8h", Interval: "5m", Limit: 96},
	{Label: "24h", Interval: "15m", Limit: 96},
	{Label: "3d", Interval: "1h", Limit: 72},
	{Label: "7d", Interval: "1h", Limit: 168},
	{Label: "1 month", Interval: "4h", Limit: 180},
	{Label: "3 months", Interval: "1d", Limit: 90},
	{Label: "1 year", Interval: "1d", Limit: 365},
	{Label: "3 years", Interval: "1d", Limit: 1095},
	{Label: "All", Interval: "1d", Limit: 1500},
}

// DefaultRange is the label selected when none is given.
const DefaultRange = "24h"

// Timeframes returns all supported timeframes in display order.
func Timeframes() []Timeframe {
	out := make([]Timeframe, len(timeframes))
	copy(out, timeframes)
	return out
}

// LookupTimeframe returns the timeframe for label.
func LookupTimeframe(label string) (Timeframe, bool) {
	for _, tf := range timeframes {
		if tf.Label == label {
			return tf, true
		}
	}
	return Timeframe{}, false
}

// IsValidTimeframe returns true if label is a supported range.
func IsValidTimeframe(label string) bool {
	_, ok := LookupTimeframe(label)
	return ok
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe {
	tf, _ := LookupTimeframe(DefaultRange)
	return tf
}

// NormalizeTimeframe converts a raw label to a valid timeframe (or default).
func NormalizeTimeframe(label string) Timeframe {
	if tf, ok := LookupTimeframe(label); ok {
		return tf
	}
	return DefaultTimeframe()
}
