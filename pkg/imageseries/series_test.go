package imageseries

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestNewSeriesValidation verifies dtype and shape validation at
// construction.
func TestNewSeriesValidation(t *testing.T) {
	if _, err := NewSeries("uint64", 2, 2); err == nil {
		t.Errorf("Expected error for unsupported dtype")
	}
	if _, err := NewSeries(Uint16, 0, 2); err == nil {
		t.Errorf("Expected error for zero rows")
	}
	if _, err := NewSeries(Uint16, 2, -1); err == nil {
		t.Errorf("Expected error for negative cols")
	}

	s, err := NewSeries(Uint16, 3, 4)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty series, got %d frames", s.Len())
	}
	rows, cols := s.Shape()
	if rows != 3 || cols != 4 {
		t.Errorf("Expected shape 3x4, got %dx%d", rows, cols)
	}
	if s.Dtype() != Uint16 {
		t.Errorf("Expected dtype uint16, got %s", s.Dtype())
	}
}

// TestAppendShapeCheck verifies that frames of the wrong shape are
// rejected.
func TestAppendShapeCheck(t *testing.T) {
	s, err := NewSeries(Float64, 2, 2)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}

	if err := s.Append(mat.NewDense(2, 3, nil)); err == nil {
		t.Errorf("Expected error for mismatched frame shape")
	}
	if err := s.Append(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Errorf("Append failed for matching shape: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 frame, got %d", s.Len())
	}
}

// TestFrameValues verifies row-major flattening of frame pixels.
func TestFrameValues(t *testing.T) {
	s, err := NewSeries(Uint8, 2, 3)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	if err := s.Append(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	vals := s.FrameValues(0)
	expected := []float64{1, 2, 3, 4, 5, 6}
	if len(vals) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(vals))
	}
	for i, v := range expected {
		if vals[i] != v {
			t.Errorf("Expected value %v at index %d, got %v", v, i, vals[i])
		}
	}
}

// TestMetadata verifies the metadata mapping and its copy semantics.
func TestMetadata(t *testing.T) {
	s, err := NewSeries(Uint16, 2, 2)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}

	s.SetMeta("omega", 0.25)
	s.SetMeta("panel", "ge")
	s.SetMeta("tilt", []float64{1, 2, 3})

	meta := s.Metadata()
	if meta["omega"] != 0.25 {
		t.Errorf("Expected omega=0.25, got %v", meta["omega"])
	}

	cp := meta.Copy()
	cp["omega"] = 0.5
	if s.Metadata()["omega"] != 0.25 {
		t.Errorf("Copy should not mutate the original mapping")
	}
}
