// Package imageseries defines the in-memory model the writers consume: an
// ordered sequence of same-shaped 2-D numeric frames together with a dtype
// and a metadata mapping.
package imageseries

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Metadata is the string-keyed metadata mapping attached to a series.
// Values may be scalars (bool, int, float64), strings, or numeric arrays
// ([]float64 or []int).
type Metadata map[string]any

// Copy returns a shallow copy of the mapping. Array values are shared.
func (m Metadata) Copy() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Series is an ordered collection of 2-D frames sharing one shape and dtype.
// Frames are stored as gonum dense matrices; the dtype records how pixels
// are encoded when the series is persisted.
type Series struct {
	frames []*mat.Dense
	dtype  Dtype
	rows   int
	cols   int
	meta   Metadata
}

// NewSeries creates an empty series with the given element type and frame
// shape. Rows and cols must be positive.
func NewSeries(dtype Dtype, rows, cols int) (*Series, error) {
	if _, ok := dtypes[dtype]; !ok {
		return nil, fmt.Errorf("unsupported dtype %q", dtype)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid frame shape %dx%d", rows, cols)
	}
	return &Series{
		dtype: dtype,
		rows:  rows,
		cols:  cols,
		meta:  Metadata{},
	}, nil
}

// Append adds a frame to the end of the series. The frame dimensions must
// match the series shape.
func (s *Series) Append(frame *mat.Dense) error {
	r, c := frame.Dims()
	if r != s.rows || c != s.cols {
		return fmt.Errorf("frame shape %dx%d does not match series shape %dx%d", r, c, s.rows, s.cols)
	}
	s.frames = append(s.frames, frame)
	return nil
}

// Len returns the number of frames in the series.
func (s *Series) Len() int { return len(s.frames) }

// Shape returns the (rows, cols) shape shared by every frame.
func (s *Series) Shape() (rows, cols int) { return s.rows, s.cols }

// Dtype returns the element type pixels are persisted as.
func (s *Series) Dtype() Dtype { return s.dtype }

// Frame returns the i-th frame. The returned matrix is the series' own
// storage; writers treat it as read-only.
func (s *Series) Frame(i int) *mat.Dense { return s.frames[i] }

// Metadata returns the series metadata mapping. The mapping is live;
// mutations are visible to subsequent readers.
func (s *Series) Metadata() Metadata { return s.meta }

// SetMeta sets one metadata entry.
func (s *Series) SetMeta(key string, value any) { s.meta[key] = value }

// FrameValues returns the i-th frame's pixels flattened in row-major order.
// The slice aliases the frame's backing storage when possible.
func (s *Series) FrameValues(i int) []float64 {
	f := s.frames[i]
	raw := f.RawMatrix()
	if raw.Stride == s.cols {
		return raw.Data[:s.rows*s.cols]
	}
	out := make([]float64, 0, s.rows*s.cols)
	for r := 0; r < s.rows; r++ {
		out = append(out, raw.Data[r*raw.Stride:r*raw.Stride+s.cols]...)
	}
	return out
}
