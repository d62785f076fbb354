// Package csvio reads and writes CSV corpus files, transparently handling
// gzip compression by file extension. Corpus text fields can run to multiple
// megabytes; encoding/csv imposes no field-size cap, so nothing here does
// either.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Reader streams one CSV file row by row as header-keyed maps.
type Reader struct {
	f      *os.File
	gz     *gzip.Reader
	csv    *csv.Reader
	header []string
}

// Open opens a CSV file, wrapping it in a gzip reader when the path ends in
// ".gz", and consumes the header row.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}

	r := &Reader{f: f}
	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip corpus %s: %w", path, err)
		}
		r.gz = gz
		src = gz
	}

	r.csv = csv.NewReader(src)
	r.csv.FieldsPerRecord = -1 // per-row validation happens in Read

	header, err := r.csv.Read()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	r.header = header
	return r, nil
}

// Header returns the column names in file order.
func (r *Reader) Header() []string {
	return r.header
}

// Read returns the next row keyed by column name, or io.EOF at the end.
// Rows with a wrong column count are returned as ErrRowShape so callers can
// skip and count them instead of aborting the scan.
func (r *Reader) Read() (map[string]string, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	if len(rec) != len(r.header) {
		return nil, ErrRowShape
	}
	row := make(map[string]string, len(r.header))
	for i, col := range r.header {
		row[col] = rec[i]
	}
	return row, nil
}

// ErrRowShape flags a row whose column count does not match the header.
var ErrRowShape = fmt.Errorf("row column count does not match header")

// Close releases the file and any gzip state.
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.f.Close()
}
