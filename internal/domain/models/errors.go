package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a caller contract violation, e.g. an empty score set.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputf returns an error wrapping ErrInvalidInput.
func InvalidInputf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, a...))
}

// PriceFetchError is returned when candles cannot be fetched or parsed.
type PriceFetchError struct {
	Symbol   string
	Interval string
	Err      error
}

func (e *PriceFetchError) Error() string {
	return fmt.Sprintf("fetch prices %s/%s: %v", e.Symbol, e.Interval, e.Err)
}

func (e *PriceFetchError) Unwrap() error { return e.Err }

// SentimentError is returned when the sentiment source fails.
type SentimentError struct {
	Source string
	Err    error
}

func (e *SentimentError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("sentiment: %v", e.Err)
	}
	return fmt.Sprintf("sentiment %s: %v", e.Source, e.Err)
}

func (e *SentimentError) Unwrap() error { return e.Err }
