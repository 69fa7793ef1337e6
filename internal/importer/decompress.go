package importer

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// exportReader wraps an opened export file and its optional decompressor.
type exportReader struct {
	io.Reader
	closers []io.Closer
}

func (r *exportReader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenExport opens an export file, transparently decompressing ".gz" files.
func OpenExport(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip decode %s: %w", path, err)
	}
	return &exportReader{Reader: zr, closers: []io.Closer{f, zr}}, nil
}
