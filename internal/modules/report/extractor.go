package report

import (
	"context"
	"errors"
)

// ErrUnsupportedMedia means the file is not an image the extractor can read.
var ErrUnsupportedMedia = errors.New("unsupported media type, send a photo")

// Request is one extraction call. RestrictToNames, when non-empty, limits
// the pass to rows whose product matches one of the given names (the repair
// pass).
type Request struct {
	Mode            Mode
	Image           []byte
	MIMEType        string
	RestrictToNames []string
}

// Extractor reads a photographed tally sheet and returns candidate rows.
// Implementations are provider adapters; an empty result means nothing was
// legible, which is a recoverable condition, not an error.
type Extractor interface {
	Extract(ctx context.Context, req Request) (Rows, error)
}
