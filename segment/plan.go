package segment

import (
	"fmt"
	"math"

	"github.com/maastricht-university/emg-pipeline/dsp"
)

const (
	DefaultSegmentDurationS = 5.0
	DefaultOverlapS         = 1.0
)

type Options struct {
	SegmentDurationS float64
	OverlapS         float64
}

func DefaultOptions() Options {
	return Options{SegmentDurationS: DefaultSegmentDurationS, OverlapS: DefaultOverlapS}
}

// Validate rejects non-positive segments and overlaps that would stall or
// reverse the label stride.
func (o Options) Validate() error {
	if !(o.SegmentDurationS > 0) || math.IsInf(o.SegmentDurationS, 0) {
		return fmt.Errorf("segment duration %g s: %w", o.SegmentDurationS, dsp.ErrInvalidParameter)
	}
	if math.IsNaN(o.OverlapS) || math.IsInf(o.OverlapS, 0) {
		return fmt.Errorf("overlap %g s: %w", o.OverlapS, dsp.ErrInvalidParameter)
	}
	if o.OverlapS >= o.SegmentDurationS {
		return fmt.Errorf("overlap %g s >= segment duration %g s: %w", o.OverlapS, o.SegmentDurationS, dsp.ErrInvalidParameter)
	}
	return nil
}

// Stride is the label-time distance between consecutive window starts.
func (o Options) Stride() float64 { return o.SegmentDurationS - o.OverlapS }

// NumWindows returns ceil(durationS / segment duration).
func (o Options) NumWindows(durationS float64) int {
	return int(math.Ceil(durationS / o.SegmentDurationS))
}

// Plan lays out the windows for an action whose preprocessed streams have
// leftRows and rightRows rows. rows per window is derived from the longer
// stream; each window is then truncated to what both streams can supply.
// Windows with zero rows are included with Rows == 0. When there would be
// more windows than rows, every window is empty and Plan returns nil.
func Plan(a ActionRecord, opts Options, leftRows, rightRows int) []Window {
	longest := max(leftRows, rightRows)
	// more windows than rows leaves every window empty
	nf := math.Ceil(a.DurationS / opts.SegmentDurationS)
	if !(nf >= 1) || nf > float64(longest) {
		return nil
	}
	n := int(nf)
	per := longest / n

	out := make([]Window, n)
	for i := range out {
		start := a.StartTimeS + float64(i)*opts.Stride()
		lo, hi := i*per, (i+1)*per
		l, r := span(lo, hi, leftRows), span(lo, hi, rightRows)
		out[i] = Window{
			I:          i,
			StartTimeS: start,
			EndTimeS:   start + opts.SegmentDurationS,
			RowStart:   lo,
			RowEnd:     hi,
			LeftRows:   l,
			RightRows:  r,
			Rows:       min(l, r),
		}
	}
	return out
}

// span is the length of [lo, hi) clamped to a stream of n rows.
func span(lo, hi, n int) int {
	return max(0, min(hi, n)-min(lo, n))
}

// RateSkew reports the relative difference between the sampling rates
// inferred for the two streams of a. Both streams share one duration, so a
// large skew means they do not cover the same wall-clock span.
func RateSkew(a ActionRecord) float64 {
	l, r := float64(len(a.EMGLeft)), float64(len(a.EMGRight))
	hi := max(l, r)
	if hi == 0 {
		return 0
	}
	return math.Abs(l-r) / hi
}
