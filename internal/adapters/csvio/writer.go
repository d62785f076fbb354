package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Writer appends CSV rows to a file, gzip-compressed when the path ends in
// ".gz". Not safe for concurrent use.
type Writer struct {
	f    *os.File
	gz   *gzip.Writer
	csv  *csv.Writer
	rows int
}

// Create truncates (or creates) the file at path, creating parent
// directories as needed.
func Create(path string) (*Writer, error) {
	return open(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// Append opens path for appending; the caller is responsible for not
// duplicating the header.
func Append(path string) (*Writer, error) {
	return open(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func open(path string, flag int) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w := &Writer{f: f}
	var dst io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(f)
		dst = w.gz
	}
	w.csv = csv.NewWriter(dst)
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns how many records have been written.
func (w *Writer) Rows() int {
	return w.rows
}

// Flush pushes buffered rows to the underlying file.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.f.Close()
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			w.f.Close()
			return err
		}
	}
	return w.f.Close()
}
