package core

import "errors"

var (
	ErrPeriodNotFound    = errors.New("period not found")
	ErrUnknownPeriodKind = errors.New("unknown period kind")
	ErrUnknownLabel      = errors.New("unknown period label")
	ErrUnknownYear       = errors.New("unknown year")
	ErrEmptyLabels       = errors.New("dataset has no labels")
	ErrSeriesLength      = errors.New("series length does not match labels")
	ErrMissingSeries     = errors.New("dataset needs at least three series")
	ErrNegativeTrend     = errors.New("trend value must not be negative")
	ErrNegativeAmount    = errors.New("amount must not be negative")
)
