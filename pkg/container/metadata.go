package container

// Store keys for the metadata documents describing groups, arrays, and
// userland attributes. The layout follows the zarr v2 convention: a group
// exists at logical path p when the key "p/.zgroup" holds a group document.
const (
	groupKey = ".zgroup"
	arrayKey = ".zarray"
	attrsKey = ".zattrs"
)

// formatVersion is the storage format version recorded in every metadata
// document.
const formatVersion = 2

// groupMeta is the JSON document marking a group.
type groupMeta struct {
	ZarrFormat int `json:"zarr_format"`
}

// compressorMeta identifies the codec chunks were compressed with, or is
// omitted (null) for uncompressed data.
type compressorMeta struct {
	ID string `json:"id"`
}

// arrayMeta is the JSON document describing a dataset: its shape, chunk
// geometry, element type (numpy typestr, little-endian), and codec.
type arrayMeta struct {
	ZarrFormat int             `json:"zarr_format"`
	Shape      []int           `json:"shape"`
	Chunks     []int           `json:"chunks"`
	Dtype      string          `json:"dtype"`
	Compressor *compressorMeta `json:"compressor"`
	FillValue  any             `json:"fill_value"`
	Order      string          `json:"order"`
	Filters    []any           `json:"filters"`
}
