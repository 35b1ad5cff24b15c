package compress

// NoOpCodec stores chunks uncompressed. Useful for already-compressed data
// and for isolating codec behavior in tests.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// Compress returns the input unchanged. The returned slice shares the
// input's backing memory.
func (NoOpCodec) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns the input unchanged.
func (NoOpCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
