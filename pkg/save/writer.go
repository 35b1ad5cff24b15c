package save

import "imgseries/pkg/imageseries"

// Writer persists one series to one destination. A writer is constructed
// per write request, used exactly once, and discarded.
type Writer interface {
	// Write performs the single write attempt. Errors propagate to the
	// caller unretried; partial output is not rolled back.
	Write() error
}

// writerBase holds the construction state shared by every writer: the
// series, its derived geometry, a reference to its metadata mapping, and
// the destination path. Snapshotted at construction; no I/O happens here.
type writerBase struct {
	ims     *imageseries.Series
	rows    int
	cols    int
	dtype   imageseries.Dtype
	nframes int
	meta    imageseries.Metadata
	fname   string
}

func newWriterBase(ims *imageseries.Series, fname string) writerBase {
	rows, cols := ims.Shape()
	return writerBase{
		ims:     ims,
		rows:    rows,
		cols:    cols,
		dtype:   ims.Dtype(),
		nframes: ims.Len(),
		meta:    ims.Metadata(),
		fname:   fname,
	}
}
