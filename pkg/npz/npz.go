// Package npz writes compressed numpy array archives: zip files whose
// members are .npy arrays, deflate-compressed. The output matches numpy's
// savez_compressed layout, so archives are loadable with numpy.load.
package npz

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
)

// File is an archive being written. Members are written in call order;
// Close must be called to finalize the zip directory.
type File struct {
	f  *os.File
	zw *zip.Writer
}

// Create opens a new archive at path, truncating any existing file.
func Create(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	return &File{f: f, zw: zw}, nil
}

// Write appends arr as the archive member name + ".npy".
func (f *File) Write(name string, arr Array) error {
	encoded, err := encodeNPY(arr)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", name, err)
	}
	w, err := f.zw.CreateHeader(&zip.FileHeader{
		Name:   name + ".npy",
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("writing %q: %w", name, err)
	}
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("writing %q: %w", name, err)
	}
	return nil
}

// Close finalizes the archive and closes the underlying file. The archive
// is not valid until Close returns nil.
func (f *File) Close() error {
	if err := f.zw.Close(); err != nil {
		f.f.Close()
		return err
	}
	return f.f.Close()
}
