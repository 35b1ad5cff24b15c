// Package compress provides the lossless codecs used for container chunks.
// Codecs are identified by short ids ("gzip", "zstd", "lz4", "none") so the
// id can be recorded in on-disk metadata next to the data it compressed.
package compress

import "fmt"

// Codec compresses and decompresses byte payloads. Implementations must be
// safe for concurrent use.
type Codec interface {
	// Compress returns a newly allocated compressed form of data.
	// The input slice is not modified.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress. It returns an error if data is
	// corrupted or was produced by a different codec.
	Decompress(data []byte) ([]byte, error)
}

// Codec ids understood by GetCodec.
const (
	IDGzip = "gzip"
	IDZstd = "zstd"
	IDLZ4  = "lz4"
	IDNone = "none"
)

var builtinCodecs = map[string]Codec{
	IDGzip: GzipCodec{},
	IDZstd: ZstdCodec{},
	IDLZ4:  LZ4Codec{},
	IDNone: NoOpCodec{},
}

// GetCodec returns the built-in codec registered under id.
func GetCodec(id string) (Codec, error) {
	if c, ok := builtinCodecs[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unsupported compression codec: %q", id)
}
