// Package container implements the hierarchical binary store the dense
// writer persists into: named groups holding chunked, compressed,
// attribute-carrying datasets. On disk the layout is a zarr v2 directory
// store, so written containers are readable by standard array tooling.
package container

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"imgseries/pkg/compress"
	"imgseries/pkg/imageseries"
)

// ErrGroupExists is returned by CreateGroup when the target path already
// holds a group.
var ErrGroupExists = errors.New("group already exists")

// Container is a handle over a Store providing group and dataset creation.
type Container struct {
	store Store
}

// Open wraps store in a Container. The store decides whether this is a new
// or an existing on-disk container.
func Open(store Store) *Container {
	return &Container{store: store}
}

// Store returns the underlying store.
func (c *Container) Store() Store { return c.store }

// CreateGroup creates a group at the given logical path. It fails with
// ErrGroupExists if a group is already present there; nothing is written in
// that case.
func (c *Container) CreateGroup(path string) (*Group, error) {
	p := normalizePath(path)
	if p == "" {
		return nil, fmt.Errorf("empty group path")
	}
	key := p + "/" + groupKey
	if c.store.Exists(key) {
		return nil, fmt.Errorf("%w: %s", ErrGroupExists, p)
	}
	if err := putJSON(c.store, key, groupMeta{ZarrFormat: formatVersion}); err != nil {
		return nil, fmt.Errorf("creating group %s: %w", p, err)
	}
	return &Group{container: c, path: p}, nil
}

// Group is a named namespace inside a container. Datasets and attributes
// live under its path.
type Group struct {
	container *Container
	path      string
}

// Path returns the group's normalized logical path.
func (g *Group) Path() string { return g.path }

// DatasetSpec describes a dataset to create: its full shape, the chunk
// geometry used to partition it, the element type, and the codec id chunks
// are compressed with (see the compress package for valid ids).
type DatasetSpec struct {
	Shape      []int
	Chunks     []int
	Dtype      imageseries.Dtype
	Compressor string
}

// CreateDataset creates a chunked dataset under the group and writes its
// metadata document. Chunk extents must be positive and must not exceed the
// corresponding shape extent (except across a zero-length dimension).
func (g *Group) CreateDataset(name string, spec DatasetSpec) (*Dataset, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid dataset name %q", name)
	}
	if len(spec.Shape) != len(spec.Chunks) {
		return nil, fmt.Errorf("chunk rank %d does not match shape rank %d", len(spec.Chunks), len(spec.Shape))
	}
	for d := range spec.Shape {
		if spec.Shape[d] < 0 || spec.Chunks[d] < 1 {
			return nil, fmt.Errorf("invalid chunk geometry %v for shape %v", spec.Chunks, spec.Shape)
		}
		if spec.Shape[d] > 0 && spec.Chunks[d] > spec.Shape[d] {
			return nil, fmt.Errorf("chunk extent %d exceeds shape extent %d in dimension %d", spec.Chunks[d], spec.Shape[d], d)
		}
	}
	codec, err := compress.GetCodec(spec.Compressor)
	if err != nil {
		return nil, err
	}

	meta := arrayMeta{
		ZarrFormat: formatVersion,
		Shape:      spec.Shape,
		Chunks:     spec.Chunks,
		Dtype:      spec.Dtype.NumpyDescr(),
		FillValue:  0,
		Order:      "C",
	}
	if spec.Compressor != compress.IDNone {
		meta.Compressor = &compressorMeta{ID: spec.Compressor}
	}
	path := g.path + "/" + name
	if err := putJSON(g.container.store, path+"/"+arrayKey, meta); err != nil {
		return nil, fmt.Errorf("creating dataset %s: %w", path, err)
	}

	return &Dataset{
		store: g.container.store,
		path:  path,
		spec:  spec,
		codec: codec,
	}, nil
}

// WriteAttrs writes the given key/value pairs as the group's attributes
// document. Array-valued attributes are stored as JSON arrays.
func (g *Group) WriteAttrs(attrs map[string]any) error {
	if err := putJSON(g.container.store, g.path+"/"+attrsKey, attrs); err != nil {
		return fmt.Errorf("writing attributes for %s: %w", g.path, err)
	}
	return nil
}

// Dataset is a 3-D chunked dataset with shape (frames, rows, cols). Frames
// are written one plane at a time; the chunk geometry always keeps a single
// frame per chunk.
type Dataset struct {
	store Store
	path  string
	spec  DatasetSpec
	codec compress.Codec
}

// WriteFrame writes plane i of the dataset from vals, a row-major slice of
// rows*cols pixel values. The plane is split into chunks per the dataset's
// chunk geometry; edge chunks are zero-padded to the full chunk size.
func (d *Dataset) WriteFrame(i int, vals []float64) error {
	frames, rows, cols := d.spec.Shape[0], d.spec.Shape[1], d.spec.Shape[2]
	if i < 0 || i >= frames {
		return fmt.Errorf("frame index %d out of range [0,%d)", i, frames)
	}
	if len(vals) != rows*cols {
		return fmt.Errorf("frame %d has %d values, want %d", i, len(vals), rows*cols)
	}
	chunkRows, chunkCols := d.spec.Chunks[1], d.spec.Chunks[2]

	chunk := make([]float64, chunkRows*chunkCols)
	for rb := 0; rb*chunkRows < rows; rb++ {
		for cb := 0; cb*chunkCols < cols; cb++ {
			for k := range chunk {
				chunk[k] = 0
			}
			r0 := rb * chunkRows
			c0 := cb * chunkCols
			for r := 0; r < chunkRows && r0+r < rows; r++ {
				src := vals[(r0+r)*cols+c0:]
				n := chunkCols
				if c0+n > cols {
					n = cols - c0
				}
				copy(chunk[r*chunkCols:r*chunkCols+n], src[:n])
			}

			encoded, err := d.codec.Compress(d.spec.Dtype.EncodeLE(chunk))
			if err != nil {
				return fmt.Errorf("compressing chunk %d.%d.%d: %w", i, rb, cb, err)
			}
			key := fmt.Sprintf("%s/%d.%d.%d", d.path, i, rb, cb)
			if err := d.store.Put(key, bytes.NewReader(encoded)); err != nil {
				return fmt.Errorf("writing chunk %d.%d.%d: %w", i, rb, cb, err)
			}
		}
	}
	return nil
}

// OpenDataset opens an existing dataset at the given logical path by
// reading its metadata document. Part of the minimal verification read
// path.
func OpenDataset(store Store, path string) (*Dataset, error) {
	p := normalizePath(path)
	rc, err := store.Get(p + "/" + arrayKey)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", p, err)
	}
	defer rc.Close()

	var meta arrayMeta
	if err := json.NewDecoder(rc).Decode(&meta); err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", p, err)
	}
	dtype, err := imageseries.DtypeFromDescr(meta.Dtype)
	if err != nil {
		return nil, err
	}
	compressor := compress.IDNone
	if meta.Compressor != nil {
		compressor = meta.Compressor.ID
	}
	codec, err := compress.GetCodec(compressor)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		store: store,
		path:  p,
		spec: DatasetSpec{
			Shape:      meta.Shape,
			Chunks:     meta.Chunks,
			Dtype:      dtype,
			Compressor: compressor,
		},
		codec: codec,
	}, nil
}

// Spec returns the dataset's geometry and encoding description.
func (d *Dataset) Spec() DatasetSpec { return d.spec }

// ReadFrame reassembles plane i from its chunks. This is the minimal read
// path used to verify written data; it is not a general loader.
func (d *Dataset) ReadFrame(i int) ([]float64, error) {
	frames, rows, cols := d.spec.Shape[0], d.spec.Shape[1], d.spec.Shape[2]
	if i < 0 || i >= frames {
		return nil, fmt.Errorf("frame index %d out of range [0,%d)", i, frames)
	}
	chunkRows, chunkCols := d.spec.Chunks[1], d.spec.Chunks[2]

	vals := make([]float64, rows*cols)
	for rb := 0; rb*chunkRows < rows; rb++ {
		for cb := 0; cb*chunkCols < cols; cb++ {
			key := fmt.Sprintf("%s/%d.%d.%d", d.path, i, rb, cb)
			rc, err := d.store.Get(key)
			if err != nil {
				return nil, err
			}
			raw, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, err
			}
			decoded, err := d.codec.Decompress(raw)
			if err != nil {
				return nil, fmt.Errorf("decompressing chunk %d.%d.%d: %w", i, rb, cb, err)
			}
			chunk, err := d.spec.Dtype.DecodeLE(decoded)
			if err != nil {
				return nil, err
			}

			r0 := rb * chunkRows
			c0 := cb * chunkCols
			for r := 0; r < chunkRows && r0+r < rows; r++ {
				n := chunkCols
				if c0+n > cols {
					n = cols - c0
				}
				copy(vals[(r0+r)*cols+c0:(r0+r)*cols+c0+n], chunk[r*chunkCols:r*chunkCols+n])
			}
		}
	}
	return vals, nil
}

// putJSON marshals v and stores it at key.
func putJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(key, bytes.NewReader(data))
}

// normalizePath normalizes a logical path: backslashes become slashes,
// leading/trailing slashes are stripped, and runs of slashes collapse.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}
