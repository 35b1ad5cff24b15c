package save

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"imgseries/pkg/imageseries"
	"imgseries/pkg/npz"
)

// FormatFrameCache is the registry name of the sparse threshold format.
const FormatFrameCache = "frame-cache"

// arraySentinel marks a descriptor metadata value whose real content was an
// array, stored under the companion "<key>-array" entry.
const arraySentinel = "++np.array"

// FrameCacheOptions configures the sparse threshold writer.
type FrameCacheOptions struct {
	// Threshold is the intensity cutoff: only pixels strictly greater than
	// it are kept. Zero is a legal cutoff.
	Threshold float64

	// CacheFile is the path of the compressed array archive. Required.
	CacheFile string

	// Checksum, when set, records the xxhash64 of the written archive in
	// the descriptor's data block. The base layout carries no such pairing
	// check; this is an opt-in hardening.
	Checksum bool
}

// frameCacheWriter keeps only above-threshold pixels of each frame as
// (row, col, value) triples in one compressed array archive, and writes a
// YAML descriptor at the destination path referencing the archive.
//
// The whole sparse form of the series is accumulated into the one archive,
// so this format presumes it fits in memory; series whose thresholded pixel
// counts are large relative to available memory should use the dense
// format instead.
type frameCacheWriter struct {
	writerBase
	threshold float64
	cacheFile string
	checksum  bool
}

func newFrameCacheWriter(ims *imageseries.Series, fname string, opts any) (Writer, error) {
	o, ok := opts.(FrameCacheOptions)
	if !ok {
		return nil, fmt.Errorf("%w: format %q takes save.FrameCacheOptions, got %T", ErrMissingOption, FormatFrameCache, opts)
	}
	if o.CacheFile == "" {
		return nil, fmt.Errorf("%w: format %q requires CacheFile", ErrMissingOption, FormatFrameCache)
	}
	return &frameCacheWriter{
		writerBase: newWriterBase(ims, fname),
		threshold:  o.Threshold,
		cacheFile:  o.CacheFile,
		checksum:   o.Checksum,
	}, nil
}

// Write stores the sparse frames first, then the descriptor. The two files
// are paired by the archive filename recorded in the descriptor; no
// cross-validation happens unless Checksum was requested.
func (w *frameCacheWriter) Write() error {
	if err := w.writeFrames(); err != nil {
		return err
	}
	return w.writeDescriptor()
}

// writeFrames writes every frame's sparse triples into the archive: keys
// "{i}_data", "{i}_row", "{i}_col" per frame, plus the frame shape once
// under "shape".
func (w *frameCacheWriter) writeFrames() error {
	arch, err := npz.Create(w.cacheFile)
	if err != nil {
		return err
	}

	for i := 0; i < w.nframes; i++ {
		frame := w.ims.Frame(i)
		var (
			rowIdx []int64
			colIdx []int64
			vals   []float64
		)
		for r := 0; r < w.rows; r++ {
			for c := 0; c < w.cols; c++ {
				if v := frame.At(r, c); v > w.threshold {
					rowIdx = append(rowIdx, int64(r))
					colIdx = append(colIdx, int64(c))
					vals = append(vals, v)
				}
			}
		}

		data := npz.Array{
			Descr: w.dtype.NumpyDescr(),
			Shape: []int{len(vals)},
			Data:  w.dtype.EncodeLE(vals),
		}
		if err := arch.Write(fmt.Sprintf("%d_data", i), data); err != nil {
			arch.Close()
			return err
		}
		if err := arch.Write(fmt.Sprintf("%d_row", i), npz.Int64s(rowIdx)); err != nil {
			arch.Close()
			return err
		}
		if err := arch.Write(fmt.Sprintf("%d_col", i), npz.Int64s(colIdx)); err != nil {
			arch.Close()
			return err
		}
		if i == 0 {
			shape := npz.Int64s([]int64{int64(w.rows), int64(w.cols)})
			if err := arch.Write("shape", shape); err != nil {
				arch.Close()
				return err
			}
		}
	}

	return arch.Close()
}

// processMeta reshapes array-valued metadata into a form representable in
// the YAML descriptor: the original key gets the sentinel string and the
// values move under "<key>-array". Scalars and strings pass through.
// Only top-level arrays are handled; nested structures pass through as-is.
func (w *frameCacheWriter) processMeta() map[string]any {
	d := make(map[string]any, len(w.meta))
	for k, v := range w.meta {
		switch vv := v.(type) {
		case []float64:
			d[k] = arraySentinel
			d[k+"-array"] = append([]float64(nil), vv...)
		case []int:
			d[k] = arraySentinel
			d[k+"-array"] = append([]int(nil), vv...)
		default:
			d[k] = v
		}
	}
	return d
}

// frameCacheData is the descriptor's data block.
type frameCacheData struct {
	File     string `yaml:"file"`
	Dtype    string `yaml:"dtype"`
	Nframes  int    `yaml:"nframes"`
	Shape    []int  `yaml:"shape"`
	Checksum string `yaml:"checksum,omitempty"`
}

// frameCacheInfo is the full descriptor document.
type frameCacheInfo struct {
	Data frameCacheData `yaml:"data"`
	Meta map[string]any `yaml:"meta"`
}

// writeDescriptor writes the YAML descriptor referencing the archive.
func (w *frameCacheWriter) writeDescriptor() error {
	info := frameCacheInfo{
		Data: frameCacheData{
			File:    w.cacheFile,
			Dtype:   w.dtype.String(),
			Nframes: w.nframes,
			Shape:   []int{w.rows, w.cols},
		},
		Meta: w.processMeta(),
	}

	if w.checksum {
		sum, err := hashFile(w.cacheFile)
		if err != nil {
			return fmt.Errorf("hashing archive: %w", err)
		}
		info.Data.Checksum = sum
	}

	out, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshaling descriptor: %w", err)
	}
	if err := os.WriteFile(w.fname, out, 0644); err != nil {
		return fmt.Errorf("writing descriptor: %w", err)
	}
	return nil
}

// hashFile returns the xxhash64 of the file contents as a fixed-width hex
// string.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}
