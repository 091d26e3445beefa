package service

import (
	"context"
	"time"
)

// OutcomeKind tags the result of asking the official source for a rate
type OutcomeKind string

const (
	OutcomeOK         OutcomeKind = "ok"
	OutcomeNoData     OutcomeKind = "no_data"
	OutcomeFetchError OutcomeKind = "fetch_error"
)

// RateOutcome is Ok(Value) | NoData | FetchError(Err). Callers pick the fallback policy.
type RateOutcome struct {
	Kind  OutcomeKind
	Value float64
	Err   error
}

// OK reports whether the outcome carries a value
func (o RateOutcome) OK() bool {
	return o.Kind == OutcomeOK
}

// RateSource defines the interface for the official TRM publisher
type RateSource interface {
	// FetchRate asks for the rate in force on date. It never returns a Go error;
	// failures are reported through the outcome kind.
	FetchRate(ctx context.Context, date time.Time) RateOutcome
}

// Ok builds a successful outcome
func Ok(value float64) RateOutcome {
	return RateOutcome{Kind: OutcomeOK, Value: value}
}

// NoData builds an outcome for a source that answered without a usable value
func NoData(err error) RateOutcome {
	return RateOutcome{Kind: OutcomeNoData, Err: err}
}

// FetchFailed builds an outcome for a source that could not be reached or understood
func FetchFailed(err error) RateOutcome {
	return RateOutcome{Kind: OutcomeFetchError, Err: err}
}
