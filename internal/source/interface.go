package source

import (
	"context"
	"io"
)

// File is one discoverable NRB log file.
type File interface {
	// Name returns the base filename, used for audit rows and logs.
	Name() string

	// Open returns the file contents for a single streaming read. The
	// caller closes the reader.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Source enumerates the NRB files of one input location.
type Source interface {
	// ID returns a stable identifier for this source, used in logs.
	ID() string

	// Files lists the available files in deterministic name order.
	Files(ctx context.Context) ([]File, error)
}
