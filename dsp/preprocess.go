package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultCutoffHz is the low-pass cutoff used when none is configured.
const DefaultCutoffHz = 5.0

// Preprocessor filters and normalizes one EMG stream.
//
// The stream carries no sample rate of its own; it is inferred as
// rows/durationS. The result is only as accurate as the duration handed
// to Preprocess.
type Preprocessor struct {
	CutoffHz float64
	Order    int
}

// NewPreprocessor returns a Preprocessor after checking that the cutoff and
// order are usable at all. Whether the cutoff fits under a particular
// stream's Nyquist frequency is only known per call.
func NewPreprocessor(cutoffHz float64, order int) (*Preprocessor, error) {
	if !(cutoffHz > 0) {
		return nil, fmt.Errorf("preprocessor: cutoff %g Hz: %w", cutoffHz, ErrInvalidParameter)
	}
	if order < 1 {
		return nil, fmt.Errorf("preprocessor: order %d: %w", order, ErrInvalidParameter)
	}
	return &Preprocessor{CutoffHz: cutoffHz, Order: order}, nil
}

// SamplingRate infers a sample rate in Hz from a row count and duration.
func SamplingRate(rows int, durationS float64) float64 {
	return float64(rows) / durationS
}

// Preprocess low-pass filters x at the configured cutoff and jointly
// normalizes the result into [-1, 1].
func (p *Preprocessor) Preprocess(x mat.Matrix, durationS float64) (*mat.Dense, error) {
	if !(durationS > 0) {
		return nil, fmt.Errorf("preprocess: duration %g s: %w", durationS, ErrInvalidParameter)
	}
	if err := checkFinite(x); err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	rows, _ := x.Dims()
	filtered, err := LowPass(x, p.CutoffHz, SamplingRate(rows, durationS), p.Order)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	return Normalize(filtered)
}
