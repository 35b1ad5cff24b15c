package imageseries

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PixelStats summarizes the intensity distribution across every frame of a
// series. It is primarily used to choose a sparse-format threshold from the
// data rather than guessing one.
type PixelStats struct {
	// Min and Max are the extreme pixel intensities over all frames.
	Min, Max float64

	// Mean is the average pixel intensity over all frames.
	Mean float64

	// StdDev is the standard deviation of pixel intensity over all frames.
	StdDev float64
}

// allValues flattens every frame of the series into one slice.
func (s *Series) allValues() []float64 {
	vals := make([]float64, 0, s.Len()*s.rows*s.cols)
	for i := 0; i < s.Len(); i++ {
		vals = append(vals, s.FrameValues(i)...)
	}
	return vals
}

// Stats computes pixel statistics across all frames. A series with no
// frames yields the zero value.
func (s *Series) Stats() PixelStats {
	vals := s.allValues()
	if len(vals) == 0 {
		return PixelStats{}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if math.IsNaN(std) {
		// single pixel
		std = 0
	}
	return PixelStats{
		Min:    floats.Min(vals),
		Max:    floats.Max(vals),
		Mean:   mean,
		StdDev: std,
	}
}

// Percentile returns the pixel intensity at quantile p in [0, 1] across all
// frames, or 0 for an empty series.
func (s *Series) Percentile(p float64) float64 {
	vals := s.allValues()
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	return stat.Quantile(p, stat.Empirical, vals, nil)
}

// Entropy computes the Shannon entropy of the pixel intensity distribution
// across all frames, using a histogram with the given number of bins.
// A flat series (all pixels equal) has zero entropy.
func (s *Series) Entropy(bins int) float64 {
	vals := s.allValues()
	n := len(vals)
	if n == 0 || bins <= 0 {
		return 0
	}

	min := floats.Min(vals)
	max := floats.Max(vals)
	if max <= min {
		return 0
	}

	// Build the histogram manually to sidestep edge-of-range bin issues.
	hist := make([]float64, bins)
	binWidth := (max - min) / float64(bins)
	for _, v := range vals {
		idx := int((v - min) / binWidth)
		if idx >= bins {
			idx = bins - 1
		} else if idx < 0 {
			idx = 0
		}
		hist[idx]++
	}

	entropy := 0.0
	for _, count := range hist {
		if count > 0 {
			p := count / float64(n)
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}
