package compress

import (
	"bytes"
	"testing"
)

// TestCodecRoundTrip verifies that every built-in codec reproduces its
// input exactly.
func TestCodecRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello imageseries"),
		bytes.Repeat([]byte{0, 1, 2, 3}, 4096),
		make([]byte, 50000), // all zeros, the typical padded-chunk case
	}

	for _, id := range []string{IDGzip, IDZstd, IDLZ4, IDNone} {
		codec, err := GetCodec(id)
		if err != nil {
			t.Fatalf("GetCodec(%q) failed: %v", id, err)
		}

		for _, payload := range payloads {
			compressed, err := codec.Compress(payload)
			if err != nil {
				t.Fatalf("%s: compress failed: %v", id, err)
			}
			decompressed, err := codec.Decompress(compressed)
			if err != nil {
				t.Fatalf("%s: decompress failed: %v", id, err)
			}
			if !bytes.Equal(decompressed, payload) {
				t.Errorf("%s: round trip changed %d-byte payload", id, len(payload))
			}
		}
	}
}

// TestCompressibleDataShrinks verifies the compressing codecs actually
// compress repetitive chunk data.
func TestCompressibleDataShrinks(t *testing.T) {
	payload := bytes.Repeat([]byte{7}, 50000)

	for _, id := range []string{IDGzip, IDZstd, IDLZ4} {
		codec, err := GetCodec(id)
		if err != nil {
			t.Fatalf("GetCodec(%q) failed: %v", id, err)
		}
		compressed, err := codec.Compress(payload)
		if err != nil {
			t.Fatalf("%s: compress failed: %v", id, err)
		}
		if len(compressed) >= len(payload) {
			t.Errorf("%s: expected repetitive payload to shrink, got %d -> %d bytes", id, len(payload), len(compressed))
		}
	}
}

// TestGetCodecUnknown verifies unknown ids are rejected.
func TestGetCodecUnknown(t *testing.T) {
	if _, err := GetCodec("brotli"); err == nil {
		t.Errorf("Expected error for unknown codec id")
	}
}
