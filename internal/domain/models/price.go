package models

import "time"

// PricePoint is the part of an exchange candle the dashboard plots.
type PricePoint struct {
	OpenTime time.Time `json:"open_time"`
	Close    float64   `json:"close"`
}

// PriceSeries is ordered by OpenTime ascending.
type PriceSeries []PricePoint

// Last returns the most recent point, or false when the series is empty.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// ChartMarker is a signal event snapped onto a price point, ready to render.
type ChartMarker struct {
	OpenTime time.Time `json:"open_time"`
	Close    float64   `json:"close"`
	Signal   Signal    `json:"signal"`
	Color    string    `json:"color"`
}
