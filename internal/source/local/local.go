package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/telano/nrbload/internal/source"
)

// Source lists NRB log files with a fixed extension in a local directory.
type Source struct {
	dir string
	ext string
}

// New creates a local directory source.
// Parameters:
//   - dir: directory to scan.
//   - ext: file extension to match; empty defaults to ".nrb".
// Returns:
//   - *Source: initialized local source.
func New(dir, ext string) *Source {
	if ext == "" {
		ext = ".nrb"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Source{dir: dir, ext: ext}
}

// ID returns a stable identifier for this source.
func (s *Source) ID() string {
	return "local:" + s.dir
}

// Files lists the matching files in the directory, sorted by name.
func (s *Source) Files(ctx context.Context) ([]source.File, error) {
	if _, err := os.Stat(s.dir); err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", s.dir, err)
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+s.ext))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	sort.Strings(matches)

	files := make([]source.File, 0, len(matches))
	for _, m := range matches {
		files = append(files, &file{path: m})
	}
	return files, nil
}

type file struct {
	path string
}

func (f *file) Name() string {
	return filepath.Base(f.path)
}

func (f *file) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(f.path)
}
