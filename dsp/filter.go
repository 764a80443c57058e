package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultOrder is the Butterworth order used when none is configured.
const DefaultOrder = 4

// MinSamples is the shortest stream LowPass accepts for the given order.
// It matches the padding length of the usual forward/backward filtering
// routines, 3*(order+1), plus one.
func MinSamples(order int) int { return 3*(order+1) + 1 }

// LowPass applies a causal Butterworth low-pass filter of the given order
// to every column of x independently. x is T×C with time along rows.
// The result is newly allocated; x is not modified.
func LowPass(x mat.Matrix, cutoffHz, samplingRateHz float64, order int) (*mat.Dense, error) {
	if math.IsNaN(samplingRateHz) || math.IsInf(samplingRateHz, 0) || samplingRateHz <= 0 {
		return nil, fmt.Errorf("low-pass: sampling rate %g: %w", samplingRateHz, ErrInvalidParameter)
	}
	nyquist := 0.5 * samplingRateHz
	wn := cutoffHz / nyquist
	b, a, err := Butterworth(order, wn)
	if err != nil {
		return nil, fmt.Errorf("low-pass: cutoff %g Hz at %g Hz: %w", cutoffHz, samplingRateHz, err)
	}

	t, c := x.Dims()
	if t < MinSamples(order) {
		return nil, fmt.Errorf("low-pass: %d samples, order %d needs at least %d: %w", t, order, MinSamples(order), ErrInsufficientData)
	}

	out := mat.NewDense(t, c, nil)
	col := make([]float64, t)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		out.SetCol(j, lfilter(b, a, col))
	}
	return out, nil
}

// lfilter runs a direct form II transposed IIR filter with zero initial
// state. a[0] must be non-zero.
func lfilter(b, a, x []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	bn := make([]float64, n)
	an := make([]float64, n)
	copy(bn, b)
	copy(an, a)
	for i := range bn {
		bn[i] /= a[0]
		an[i] /= a[0]
	}

	y := make([]float64, len(x))
	z := make([]float64, n) // z[n-1] stays zero
	for t, v := range x {
		out := bn[0]*v + z[0]
		for i := 0; i < n-1; i++ {
			z[i] = bn[i+1]*v + z[i+1] - an[i+1]*out
		}
		y[t] = out
	}
	return y
}
