package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Normalize rescales x into [-1, 1] using a single minimum and maximum taken
// over every channel and time step. Sharing one extremum pair keeps the
// relative amplitude of the channels intact.
func Normalize(x mat.Matrix) (*mat.Dense, error) {
	if err := checkFinite(x); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	lo, hi := mat.Min(x), mat.Max(x)
	span := hi - lo
	if !(span > 0) || math.IsInf(span, 0) {
		return nil, fmt.Errorf("normalize: range [%g, %g]: %w", lo, hi, ErrDegenerateSignal)
	}

	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return 2*(v-lo)/span - 1
	}, x)
	return &out, nil
}
