package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FromRows copies a row-major [T][C] slice into a new T×C matrix.
func FromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("from rows: empty stream: %w", ErrInsufficientData)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, r := range rows {
		if len(r) != c {
			return nil, fmt.Errorf("from rows: row %d has %d channels, want %d: %w", i, len(r), c, ErrInvalidParameter)
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("from rows: non-finite sample at [%d,%d]: %w", i, j, ErrInvalidParameter)
			}
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), c, data), nil
}

// checkFinite rejects matrices holding NaN or ±Inf cells.
func checkFinite(x mat.Matrix) error {
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite sample at [%d,%d]: %w", i, j, ErrInvalidParameter)
			}
		}
	}
	return nil
}

// ToRows copies m into a freshly allocated row-major slice.
func ToRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		row := make([]float64, c)
		for j := range row {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}
