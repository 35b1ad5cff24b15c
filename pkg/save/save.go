// Package save persists an image series to one of several on-disk formats,
// selected by name through a writer registry.
//
// Two formats are built in:
//
//   - FormatHDF5 ("hdf5"): every frame goes into a single 3-D chunked,
//     compressed dataset inside a hierarchical container store, with the
//     series metadata attached as group attributes. Options: HDF5Options.
//   - FormatFrameCache ("frame-cache"): only pixels above a threshold are
//     kept, as per-frame (row, col, value) triples in one compressed array
//     archive, paired with a YAML descriptor file. Options:
//     FrameCacheOptions.
//
// Additional formats can be added with Register.
package save

import "imgseries/pkg/imageseries"

// Write persists ims to fname in the named format. The format's factory is
// resolved from the registry, the writer is constructed with opts (the
// format's option struct), and its single write attempt runs to completion.
// Constructor and write errors propagate untranslated; an unknown format
// fails before any file is touched.
func Write(ims *imageseries.Series, fname, format string, opts any) error {
	factory, err := resolve(format)
	if err != nil {
		return err
	}
	w, err := factory(ims, fname, opts)
	if err != nil {
		return err
	}
	return w.Write()
}
