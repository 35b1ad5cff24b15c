package save

import "errors"

// ErrUnknownFormat is returned by Write when the format name was never
// registered. It is surfaced before any file is touched.
var ErrUnknownFormat = errors.New("unknown image series format")

// ErrMissingOption is returned by a writer constructor when a required
// option for the chosen format is absent, or when the options value is not
// the format's option type.
var ErrMissingOption = errors.New("missing required option")
