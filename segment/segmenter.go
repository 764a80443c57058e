package segment

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/mat"

	"github.com/maastricht-university/emg-pipeline/dsp"
)

// StreamPreprocessor turns one raw stream into a filtered, normalized one.
// *dsp.Preprocessor is the production implementation.
type StreamPreprocessor interface {
	Preprocess(x mat.Matrix, durationS float64) (*mat.Dense, error)
}

// Segmenter cuts action records into overlapping subaction windows.
type Segmenter struct {
	opts Options
	pre  StreamPreprocessor
}

func New(opts Options, pre StreamPreprocessor) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("segmenter: %w", err)
	}
	if pre == nil {
		return nil, fmt.Errorf("segmenter: nil preprocessor: %w", dsp.ErrInvalidParameter)
	}
	return &Segmenter{opts: opts, pre: pre}, nil
}

func (s *Segmenter) Options() Options { return s.opts }

// Segment preprocesses both streams of a and returns its windows. All
// validation and preprocessing happens before Segment returns; the windows
// themselves are built lazily as the sequence is ranged over.
func (s *Segmenter) Segment(a ActionRecord) (iter.Seq[SubactionRecord], error) {
	if !(a.DurationS > 0) {
		return nil, fmt.Errorf("action %d: duration %g s: %w", a.Index, a.DurationS, dsp.ErrInvalidParameter)
	}
	left, err := s.prepare(a.EMGLeft, a.DurationS)
	if err != nil {
		return nil, fmt.Errorf("action %d: left stream: %w", a.Index, err)
	}
	right, err := s.prepare(a.EMGRight, a.DurationS)
	if err != nil {
		return nil, fmt.Errorf("action %d: right stream: %w", a.Index, err)
	}

	lr, lc := left.Dims()
	rr, rc := right.Dims()
	windows := Plan(a, s.opts, lr, rr)

	return func(yield func(SubactionRecord) bool) {
		for _, w := range windows {
			if w.Rows == 0 {
				continue
			}
			data := mat.NewDense(w.Rows, lc+rc, nil)
			end := w.RowStart + w.Rows
			data.Slice(0, w.Rows, 0, lc).(*mat.Dense).Copy(left.Slice(w.RowStart, end, 0, lc))
			data.Slice(0, w.Rows, lc, lc+rc).(*mat.Dense).Copy(right.Slice(w.RowStart, end, 0, rc))

			rec := SubactionRecord{
				Label:      a.Label,
				Index:      a.Index,
				StartTimeS: w.StartTimeS,
				EndTimeS:   w.EndTimeS,
				DurationS:  s.opts.SegmentDurationS,
				EMGData:    dsp.ToRows(data),
			}
			if !yield(rec) {
				return
			}
		}
	}, nil
}

func (s *Segmenter) prepare(rows [][]float64, durationS float64) (*mat.Dense, error) {
	x, err := dsp.FromRows(rows)
	if err != nil {
		return nil, err
	}
	return s.pre.Preprocess(x, durationS)
}
