package dsp

import "errors"

// Input-validation failures. Every function in this package returns one of
// these (possibly wrapped with context); match them with errors.Is.
var (
	// ErrInvalidParameter is returned for bad cutoff, order, duration or
	// window/overlap relationships.
	ErrInvalidParameter = errors.New("dsp: invalid parameter")

	// ErrInsufficientData is returned when a stream is empty or too short
	// for the requested filter order.
	ErrInsufficientData = errors.New("dsp: insufficient data")

	// ErrDegenerateSignal is returned when a signal has zero dynamic range
	// and cannot be min-max normalized.
	ErrDegenerateSignal = errors.New("dsp: degenerate signal")
)
