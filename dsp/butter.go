package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Butterworth designs a digital low-pass Butterworth filter of the given
// order. wn is the cutoff normalized to the Nyquist frequency and must lie
// in (0, 1). The returned coefficients are in transfer-function form with
// a[0] == 1, matching scipy.signal.butter(order, wn, btype="low").
//
// Design path: analog prototype poles, frequency pre-warp, low-pass
// transform, bilinear transform at fs=2, zeros/poles expanded to
// polynomials.
func Butterworth(order int, wn float64) (b, a []float64, err error) {
	if order < 1 {
		return nil, nil, fmt.Errorf("butterworth: order %d < 1: %w", order, ErrInvalidParameter)
	}
	if !(wn > 0 && wn < 1) {
		return nil, nil, fmt.Errorf("butterworth: normalized cutoff %g outside (0,1): %w", wn, ErrInvalidParameter)
	}

	const fs = 2.0
	warped := 2 * fs * math.Tan(math.Pi*wn/fs)

	// analog prototype, already scaled to the warped cutoff
	poles := make([]complex128, order)
	for i := range poles {
		m := float64(-order + 1 + 2*i)
		poles[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order))) * complex(warped, 0)
	}
	gain := math.Pow(warped, float64(order))

	// bilinear: every pole maps to (2fs+p)/(2fs-p), every missing zero to -1
	fs2 := complex(2*fs, 0)
	dpoles := make([]complex128, order)
	den := complex(1, 0)
	for i, p := range poles {
		dpoles[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	gain *= real(1 / den)

	zeros := make([]complex128, order)
	for i := range zeros {
		zeros[i] = -1
	}

	bc := poly(zeros)
	ac := poly(dpoles)
	b = make([]float64, order+1)
	a = make([]float64, order+1)
	for i := range b {
		b[i] = gain * real(bc[i])
		a[i] = real(ac[i])
	}
	return b, a, nil
}

// poly expands prod(x - r) into descending-power coefficients.
func poly(roots []complex128) []complex128 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		next[0] = c[0]
		for j := 1; j < len(c); j++ {
			next[j] = c[j] - r*c[j-1]
		}
		next[len(c)] = -r * c[len(c)-1]
		c = next
	}
	return c
}
