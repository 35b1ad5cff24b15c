// Package rawload reads flat little-endian pixel dumps into an image
// series for the CLI. The dump is a concatenation of frames, each rows*cols
// elements of the series dtype, with no header.
package rawload

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"imgseries/pkg/imageseries"
)

// Load reads the raw frame dump at path into a series with the given
// element type and frame shape. The file size must be an exact multiple of
// one frame's byte size; the frame count is derived from it.
func Load(path string, dtype imageseries.Dtype, rows, cols int) (*imageseries.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw frames: %w", err)
	}

	frameBytes := rows * cols * dtype.ItemSize()
	if frameBytes == 0 {
		return nil, fmt.Errorf("invalid frame shape %dx%d", rows, cols)
	}
	if len(data)%frameBytes != 0 {
		return nil, fmt.Errorf("file size %d is not a multiple of frame size %d", len(data), frameBytes)
	}

	series, err := imageseries.NewSeries(dtype, rows, cols)
	if err != nil {
		return nil, err
	}

	nframes := len(data) / frameBytes
	for i := 0; i < nframes; i++ {
		vals, err := dtype.DecodeLE(data[i*frameBytes : (i+1)*frameBytes])
		if err != nil {
			return nil, fmt.Errorf("decoding frame %d: %w", i, err)
		}
		if err := series.Append(mat.NewDense(rows, cols, vals)); err != nil {
			return nil, err
		}
	}

	return series, nil
}
