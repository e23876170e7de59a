package overlay

import (
	"fmt"
	"sort"

	"SentimentOracle/internal/domain/models"
)

// Policy decides which signal events become chart markers.
type Policy string

const (
	// PolicyEveryTick emits a marker for every event.
	PolicyEveryTick Policy = "every_tick"
	// PolicyOnChange emits a marker only when the signal differs from the previous event.
	PolicyOnChange Policy = "on_change"
)

// ParsePolicy converts a raw string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyEveryTick, PolicyOnChange:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown marker policy %q", s)
	}
}

// Marker colours.
const (
	ColorBuy     = "red"
	ColorHold    = "orange"
	ColorSell    = "green"
	ColorUnknown = "gray"
)

// ColorFor returns the palette colour of a signal.
func ColorFor(s models.Signal) string {
	switch s {
	case models.SignalBuy:
		return ColorBuy
	case models.SignalHold:
		return ColorHold
	case models.SignalSell:
		return ColorSell
	default:
		return ColorUnknown
	}
}

// Align snaps each selected event onto the first price whose OpenTime is at or
// after the event time. Events later than the last price are dropped. The
// result keeps the input order and is never nil.
func Align(events []models.SignalEvent, prices models.PriceSeries, policy Policy) []models.ChartMarker {
	out := make([]models.ChartMarker, 0, len(events))
	if len(events) == 0 || len(prices) == 0 {
		return out
	}

	if !sort.SliceIsSorted(prices, func(i, j int) bool { return prices[i].OpenTime.Before(prices[j].OpenTime) }) {
		sorted := make(models.PriceSeries, len(prices))
		copy(sorted, prices)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OpenTime.Before(sorted[j].OpenTime) })
		prices = sorted
	}

	var prev models.Signal
	first := true
	for _, ev := range events {
		if ev.Signal == "" {
			continue
		}
		emit := policy != PolicyOnChange || first || ev.Signal != prev
		first = false
		prev = ev.Signal
		if !emit {
			continue
		}

		i := sort.Search(len(prices), func(i int) bool { return !prices[i].OpenTime.Before(ev.Time) })
		if i == len(prices) {
			continue
		}
		p := prices[i]
		out = append(out, models.ChartMarker{
			OpenTime: p.OpenTime,
			Close:    p.Close,
			Signal:   ev.Signal,
			Color:    ColorFor(ev.Signal),
		})
	}
	return out
}
