package save

import (
	"fmt"

	"imgseries/pkg/compress"
	"imgseries/pkg/container"
	"imgseries/pkg/imageseries"
)

// FormatHDF5 is the registry name of the dense chunked format.
const FormatHDF5 = "hdf5"

// targetChunkBytes bounds the decompressed size of any single chunk.
// Narrow rows get row-batched chunks, wide rows get column-sliced chunks;
// the budget trades random-access granularity against compression and I/O
// overhead.
const targetChunkBytes = 50000

// HDF5Options configures the dense chunked writer.
type HDF5Options struct {
	// Path is the group path inside the container at which the dataset is
	// written. Required.
	Path string

	// Compression selects the chunk codec by id ("gzip", "zstd", "lz4",
	// "none"). Empty means gzip.
	Compression string
}

// hdf5Writer serializes every frame into one 3-D chunked, compressed
// dataset named "images" under a group inside the container store at the
// destination path, then attaches the series metadata as group attributes.
type hdf5Writer struct {
	writerBase
	path        string
	compression string
}

func newHDF5Writer(ims *imageseries.Series, fname string, opts any) (Writer, error) {
	o, ok := opts.(HDF5Options)
	if !ok {
		return nil, fmt.Errorf("%w: format %q takes save.HDF5Options, got %T", ErrMissingOption, FormatHDF5, opts)
	}
	if o.Path == "" {
		return nil, fmt.Errorf("%w: format %q requires Path", ErrMissingOption, FormatHDF5)
	}
	compression := o.Compression
	if compression == "" {
		compression = compress.IDGzip
	}
	if _, err := compress.GetCodec(compression); err != nil {
		return nil, err
	}
	return &hdf5Writer{
		writerBase:  newWriterBase(ims, fname),
		path:        o.Path,
		compression: compression,
	}, nil
}

// chunkGeometry computes the (rows, cols) extent of one chunk for a frame
// of the given shape and element width. Each chunk covers exactly one
// frame. When a whole row fits the byte budget, rows are batched with full
// width; otherwise single rows are sliced into column runs. Both extents
// stay within [1, dimension].
func chunkGeometry(rows, cols, itemSize int) (chunkRows, chunkCols int) {
	bytesPerRow := cols * itemSize
	if bytesPerRow < targetChunkBytes {
		chunkRows = targetChunkBytes / bytesPerRow
		if chunkRows > rows {
			chunkRows = rows
		}
		return chunkRows, cols
	}
	chunkCols = int(float64(targetChunkBytes) / float64(bytesPerRow) * float64(rows))
	if chunkCols < 1 {
		chunkCols = 1
	}
	if chunkCols > cols {
		chunkCols = cols
	}
	return 1, chunkCols
}

// Write creates the group and dataset and copies the frames in series
// order, one frame at a time. A duplicate group aborts before any dataset
// creation.
func (w *hdf5Writer) Write() error {
	store, err := container.NewLocalStore(w.fname)
	if err != nil {
		return err
	}
	c := container.Open(store)

	g, err := c.CreateGroup(w.path)
	if err != nil {
		return err
	}

	chunkRows, chunkCols := chunkGeometry(w.rows, w.cols, w.dtype.ItemSize())
	ds, err := g.CreateDataset("images", container.DatasetSpec{
		Shape:      []int{w.nframes, w.rows, w.cols},
		Chunks:     []int{1, chunkRows, chunkCols},
		Dtype:      w.dtype,
		Compressor: w.compression,
	})
	if err != nil {
		return err
	}

	for i := 0; i < w.nframes; i++ {
		if err := ds.WriteFrame(i, w.ims.FrameValues(i)); err != nil {
			return err
		}
	}

	return g.WriteAttrs(w.meta)
}
