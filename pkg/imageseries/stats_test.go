package imageseries

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// testSeries builds a 2-frame series with a known pixel distribution.
func testSeries(t *testing.T) *Series {
	t.Helper()
	s, err := NewSeries(Float64, 2, 2)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if err := s.Append(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(mat.NewDense(2, 2, []float64{5, 6, 7, 8})); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return s
}

// TestStats verifies the basic pixel statistics.
func TestStats(t *testing.T) {
	stats := testSeries(t).Stats()

	if stats.Min != 1 || stats.Max != 8 {
		t.Errorf("Expected range [1,8], got [%v,%v]", stats.Min, stats.Max)
	}
	if stats.Mean != 4.5 {
		t.Errorf("Expected mean 4.5, got %v", stats.Mean)
	}
	if stats.StdDev <= 0 {
		t.Errorf("Expected positive standard deviation, got %v", stats.StdDev)
	}
}

// TestStatsEmptySeries verifies the empty-series zero value.
func TestStatsEmptySeries(t *testing.T) {
	s, err := NewSeries(Uint16, 2, 2)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if stats := s.Stats(); stats != (PixelStats{}) {
		t.Errorf("Expected zero stats for empty series, got %+v", stats)
	}
	if p := s.Percentile(0.5); p != 0 {
		t.Errorf("Expected zero percentile for empty series, got %v", p)
	}
}

// TestPercentile verifies quantile ordering over all pixels.
func TestPercentile(t *testing.T) {
	s := testSeries(t)

	low := s.Percentile(0.25)
	high := s.Percentile(0.95)
	if low >= high {
		t.Errorf("Expected increasing quantiles, got p25=%v p95=%v", low, high)
	}
	if high > 8 || low < 1 {
		t.Errorf("Quantiles outside the pixel range: p25=%v p95=%v", low, high)
	}
}

// TestEntropy verifies that a flat series has zero entropy and a varied one
// does not.
func TestEntropy(t *testing.T) {
	flat, err := NewSeries(Float64, 2, 2)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if err := flat.Append(mat.NewDense(2, 2, []float64{3, 3, 3, 3})); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if e := flat.Entropy(256); e != 0 {
		t.Errorf("Expected zero entropy for flat series, got %v", e)
	}

	varied := testSeries(t)
	e := varied.Entropy(8)
	if e <= 0 || math.IsNaN(e) {
		t.Errorf("Expected positive entropy for varied series, got %v", e)
	}
	// 8 distinct values spread over 8 bins is the uniform case: 3 bits.
	if math.Abs(e-3) > 1e-9 {
		t.Errorf("Expected entropy 3 for uniform 8-value distribution, got %v", e)
	}
}
