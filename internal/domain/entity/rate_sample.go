package entity

import (
	"time"
)

// RateSample is one observed TRM value for a calendar date
type RateSample struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RateSource tells where a resolved rate came from
type RateSource string

const (
	SourceCache   RateSource = "cache"
	SourceFetch   RateSource = "source"
	SourceHistory RateSource = "history"
	SourceNone    RateSource = "none"
	SourceManual  RateSource = "manual"
)

// Rate is the outcome of resolving the TRM for a date. A zero Value means no data.
type Rate struct {
	Date   time.Time  `json:"date"`
	Value  float64    `json:"value"`
	Source RateSource `json:"source"`
}

// Valid reports whether the rate carries a usable value
func (r Rate) Valid() bool {
	return r.Value > 0
}
