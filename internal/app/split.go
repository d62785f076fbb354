package app

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/adapters/csvio"
)

// DefaultSplitPattern is the output path template for SplitCorpus. "{chunk}"
// expands to the zero-padded chunk number and "{base}" to the input file's
// base name without extension.
const DefaultSplitPattern = "chunk_{chunk}/{base}.csv"

// SplitCorpus cuts a corpus into files of at most size rows each. When the
// input lacks a uniqid column one is prepended, numbering rows from zero
// across the whole input so ids stay unique between parts.
func SplitCorpus(inPath, outPattern string, size int, log zerolog.Logger) error {
	if size < 1 {
		return fmt.Errorf("split: size must be positive, got %d", size)
	}
	if outPattern == "" {
		outPattern = DefaultSplitPattern
	}

	r, err := csvio.Open(inPath)
	if err != nil {
		return err
	}
	defer r.Close()

	header := r.Header()
	addID := !contains(header, "uniqid")
	if addID {
		header = append([]string{"uniqid"}, header...)
	}

	base := filepath.Base(inPath)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var w *csvio.Writer
	chunkID := 0
	rowNum := 0
	inPart := 0
	closeOut := func() error {
		if w == nil {
			return nil
		}
		err := w.Close()
		w = nil
		return err
	}
	defer closeOut()

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csvio.ErrRowShape) {
				continue
			}
			return fmt.Errorf("read corpus %s: %w", inPath, err)
		}

		if w == nil {
			path := splitPath(outPattern, chunkID, base)
			w, err = csvio.Create(path)
			if err != nil {
				return err
			}
			if err := w.Write(header); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
			inPart = 0
			log.Info().Str("file", path).Msg("split part started")
		}

		row := make([]string, 0, len(header))
		if addID {
			row = append(row, strconv.Itoa(rowNum))
		}
		for _, col := range r.Header() {
			row = append(row, fields[col])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		rowNum++
		inPart++

		if inPart >= size {
			if err := closeOut(); err != nil {
				return err
			}
			chunkID++
		}
	}
	return closeOut()
}

func splitPath(pattern string, chunkID int, base string) string {
	out := strings.ReplaceAll(pattern, "{chunk}", fmt.Sprintf("%02d", chunkID))
	return strings.ReplaceAll(out, "{base}", base)
}
