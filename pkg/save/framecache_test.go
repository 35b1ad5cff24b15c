package save

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"imgseries/pkg/imageseries"
)

// npyPayload extracts the raw data section of an .npy member of a zip
// archive, or fails the test if the member is absent.
func npyPayload(t *testing.T, archivePath, member string) []byte {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("Opening archive failed: %v", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != member+".npy" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Opening member %q failed: %v", member, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("Reading member %q failed: %v", member, err)
		}
		if len(raw) < 10 || !bytes.Equal(raw[:6], []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}) {
			t.Fatalf("Member %q is not an npy array", member)
		}
		headerLen := int(binary.LittleEndian.Uint16(raw[8:10]))
		return raw[10+headerLen:]
	}
	t.Fatalf("Member %q not found in archive", member)
	return nil
}

func hasMember(t *testing.T, archivePath, member string) bool {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("Opening archive failed: %v", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == member+".npy" {
			return true
		}
	}
	return false
}

// descriptor unmarshals the YAML descriptor written alongside the archive.
func descriptor(t *testing.T, path string) frameCacheInfo {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading descriptor failed: %v", err)
	}
	var info frameCacheInfo
	if err := yaml.Unmarshal(raw, &info); err != nil {
		t.Fatalf("Parsing descriptor failed: %v", err)
	}
	return info
}

// TestWriteFrameCache runs the sparse end-to-end scenario: threshold 5 on
// the shared test series, verifying the archive keys, the sparse encoding
// invariants, and the descriptor content.
func TestWriteFrameCache(t *testing.T) {
	s := testSeries(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "series.yml")
	cache := filepath.Join(dir, "c.npz")
	threshold := 5.0

	err := Write(s, dest, FormatFrameCache, FrameCacheOptions{Threshold: threshold, CacheFile: cache})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// The shape array is recorded once.
	shape := npyPayload(t, cache, "shape")
	if len(shape) != 16 || binary.LittleEndian.Uint64(shape) != 2 || binary.LittleEndian.Uint64(shape[8:]) != 2 {
		t.Errorf("Unexpected shape payload: %v", shape)
	}

	for i := 0; i < s.Len(); i++ {
		data := npyPayload(t, cache, fmt.Sprintf("%d_data", i))
		rows := npyPayload(t, cache, fmt.Sprintf("%d_row", i))
		cols := npyPayload(t, cache, fmt.Sprintf("%d_col", i))

		// Parallel arrays of equal length.
		n := len(data) / 2 // uint16 values
		if len(rows) != n*8 || len(cols) != n*8 {
			t.Fatalf("Frame %d: parallel arrays disagree: %d values, %d rows, %d cols",
				i, n, len(rows)/8, len(cols)/8)
		}

		// Every stored position is above threshold and matches the source
		// pixel; count them to confirm none are missing.
		frame := s.Frame(i)
		for j := 0; j < n; j++ {
			r := int(binary.LittleEndian.Uint64(rows[j*8:]))
			c := int(binary.LittleEndian.Uint64(cols[j*8:]))
			v := float64(binary.LittleEndian.Uint16(data[j*2:]))
			if v <= threshold {
				t.Errorf("Frame %d: stored value %v at (%d,%d) is not above threshold", i, v, r, c)
			}
			if frame.At(r, c) != v {
				t.Errorf("Frame %d: stored value %v differs from source pixel %v at (%d,%d)", i, v, frame.At(r, c), r, c)
			}
		}
		want := 0
		for r := 0; r < 2; r++ {
			for c := 0; c < 2; c++ {
				if frame.At(r, c) > threshold {
					want++
				}
			}
		}
		if n != want {
			t.Errorf("Frame %d: expected %d sparse entries, got %d", i, want, n)
		}
	}

	// Frame 1 has no pixel above 5: legal, zero-length arrays.
	if got := len(npyPayload(t, cache, "1_data")); got != 0 {
		t.Errorf("Expected empty sparse arrays for frame 1, got %d bytes", got)
	}

	info := descriptor(t, dest)
	if info.Data.File != cache {
		t.Errorf("Expected descriptor to reference %q, got %q", cache, info.Data.File)
	}
	if info.Data.Dtype != "uint16" {
		t.Errorf("Expected dtype uint16, got %q", info.Data.Dtype)
	}
	if info.Data.Nframes != 3 {
		t.Errorf("Expected nframes 3, got %d", info.Data.Nframes)
	}
	if len(info.Data.Shape) != 2 || info.Data.Shape[0] != 2 || info.Data.Shape[1] != 2 {
		t.Errorf("Expected shape [2,2], got %v", info.Data.Shape)
	}
	if info.Data.Checksum != "" {
		t.Errorf("Expected no checksum by default, got %q", info.Data.Checksum)
	}
}

// TestProcessMeta verifies the array-flattening pass: arrays become the
// sentinel plus a "-array" companion, scalars pass through.
func TestProcessMeta(t *testing.T) {
	s := testSeries(t)
	s.SetMeta("counts", []int{4, 5})

	w, err := newFrameCacheWriter(s, "out.yml", FrameCacheOptions{Threshold: 1, CacheFile: "c.npz"})
	if err != nil {
		t.Fatalf("Constructor failed: %v", err)
	}
	meta := w.(*frameCacheWriter).processMeta()

	if meta["omega"] != 0.25 {
		t.Errorf("Expected scalar passthrough, got %v", meta["omega"])
	}
	if meta["tilt"] != arraySentinel {
		t.Errorf("Expected sentinel for array value, got %v", meta["tilt"])
	}
	tilt, ok := meta["tilt-array"].([]float64)
	if !ok || len(tilt) != 3 || tilt[0] != 1 {
		t.Errorf("Expected flattened tilt array, got %v", meta["tilt-array"])
	}
	if meta["counts"] != arraySentinel {
		t.Errorf("Expected sentinel for int array value, got %v", meta["counts"])
	}
	if counts, ok := meta["counts-array"].([]int); !ok || len(counts) != 2 {
		t.Errorf("Expected flattened counts array, got %v", meta["counts-array"])
	}
}

// TestFrameCacheMetadataRoundTrip verifies the descriptor's meta block
// through YAML: k -> sentinel, k-array -> values.
func TestFrameCacheMetadataRoundTrip(t *testing.T) {
	s := testSeries(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "series.yml")
	cache := filepath.Join(dir, "c.npz")

	if err := Write(s, dest, FormatFrameCache, FrameCacheOptions{Threshold: 5, CacheFile: cache}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info := descriptor(t, dest)
	if info.Meta["tilt"] != arraySentinel {
		t.Errorf("Expected tilt sentinel in descriptor, got %v", info.Meta["tilt"])
	}
	arr, ok := info.Meta["tilt-array"].([]any)
	if !ok || len(arr) != 3 {
		t.Fatalf("Expected tilt-array of length 3, got %v", info.Meta["tilt-array"])
	}
	if arr[0] != 1.0 && arr[0] != 1 {
		t.Errorf("Expected tilt-array[0]=1, got %v", arr[0])
	}
	if info.Meta["omega"] != 0.25 {
		t.Errorf("Expected omega passthrough, got %v", info.Meta["omega"])
	}
}

// TestFrameCacheChecksum verifies the opt-in archive hash in the
// descriptor matches the written archive bytes.
func TestFrameCacheChecksum(t *testing.T) {
	s := testSeries(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "series.yml")
	cache := filepath.Join(dir, "c.npz")

	err := Write(s, dest, FormatFrameCache, FrameCacheOptions{Threshold: 5, CacheFile: cache, Checksum: true})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info := descriptor(t, dest)
	if len(info.Data.Checksum) != 16 {
		t.Fatalf("Expected 16 hex digit checksum, got %q", info.Data.Checksum)
	}
	raw, err := os.ReadFile(cache)
	if err != nil {
		t.Fatalf("Reading archive failed: %v", err)
	}
	if want := fmt.Sprintf("%016x", xxhash.Sum64(raw)); info.Data.Checksum != want {
		t.Errorf("Checksum mismatch: descriptor %q, archive %q", info.Data.Checksum, want)
	}
}

// TestFrameCacheZeroThreshold verifies threshold zero is a legal cutoff:
// only strictly positive pixels are kept.
func TestFrameCacheZeroThreshold(t *testing.T) {
	s := testSeries(t)
	dir := t.TempDir()
	dest := filepath.Join(dir, "series.yml")
	cache := filepath.Join(dir, "c.npz")

	if err := Write(s, dest, FormatFrameCache, FrameCacheOptions{Threshold: 0, CacheFile: cache}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Frame 1 is {0,2,5,5}: the zero pixel must be dropped.
	if got := len(npyPayload(t, cache, "1_data")) / 2; got != 3 {
		t.Errorf("Expected 3 entries for frame 1 at threshold 0, got %d", got)
	}
}

// TestFrameCacheZeroFrames verifies an empty series produces an archive
// with no per-frame members and a descriptor with nframes 0.
func TestFrameCacheZeroFrames(t *testing.T) {
	s, err := imageseries.NewSeries(imageseries.Uint16, 2, 2)
	if err != nil {
		t.Fatalf("NewSeries failed: %v", err)
	}
	dir := t.TempDir()
	dest := filepath.Join(dir, "series.yml")
	cache := filepath.Join(dir, "c.npz")

	if err := Write(s, dest, FormatFrameCache, FrameCacheOptions{Threshold: 5, CacheFile: cache}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if hasMember(t, cache, "0_data") || hasMember(t, cache, "shape") {
		t.Errorf("Expected no members for an empty series")
	}
	info := descriptor(t, dest)
	if info.Data.Nframes != 0 {
		t.Errorf("Expected nframes 0, got %d", info.Data.Nframes)
	}
	if len(info.Data.Shape) != 2 {
		t.Errorf("Expected shape in descriptor, got %v", info.Data.Shape)
	}
}
