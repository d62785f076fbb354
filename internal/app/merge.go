package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/corey/namescan/internal/adapters/csvio"
)

// MergeResults concatenates result files into one. The first file's header
// becomes the output header; later files may order their columns differently
// but must carry the same column set.
func MergeResults(inputs []string, outPath string, log zerolog.Logger) error {
	if len(inputs) == 0 {
		return fmt.Errorf("merge: no input files")
	}

	w, err := csvio.Create(outPath)
	if err != nil {
		return err
	}
	defer w.Close()

	var header []string
	for _, in := range inputs {
		r, err := csvio.Open(in)
		if err != nil {
			return err
		}

		if header == nil {
			header = r.Header()
			if err := w.Write(header); err != nil {
				r.Close()
				return fmt.Errorf("write header: %w", err)
			}
		} else if err := checkColumns(header, r.Header(), in); err != nil {
			r.Close()
			return err
		}

		rows := 0
		for {
			fields, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				r.Close()
				return fmt.Errorf("read %s: %w", in, err)
			}
			row := make([]string, len(header))
			for i, col := range header {
				row[i] = fields[col]
			}
			if err := w.Write(row); err != nil {
				r.Close()
				return fmt.Errorf("write row from %s: %w", in, err)
			}
			rows++
		}
		r.Close()
		log.Info().Str("file", in).Int("rows", rows).Msg("merged")
	}
	return w.Flush()
}

func checkColumns(want, got []string, path string) error {
	if len(want) != len(got) {
		return fmt.Errorf("merge %s: %d columns, expected %d", path, len(got), len(want))
	}
	have := make(map[string]bool, len(got))
	for _, c := range got {
		have[c] = true
	}
	for _, c := range want {
		if !have[c] {
			return fmt.Errorf("merge %s: missing column %q", path, c)
		}
	}
	return nil
}
