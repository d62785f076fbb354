package csvio

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRows(t *testing.T, path string, rows [][]string) {
	t.Helper()
	w, err := Create(path)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	require.NoError(t, w.Close())
}

func readAll(t *testing.T, path string) ([]string, []map[string]string) {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var rows []map[string]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return r.Header(), rows
}

func TestRoundTrip_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	writeRows(t, path, [][]string{
		{"uniqid", "text"},
		{"0", "hello world"},
		{"1", "text with, commas and \"quotes\""},
	})

	header, rows := readAll(t, path)
	assert.Equal(t, []string{"uniqid", "text"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "hello world", rows[0]["text"])
	assert.Equal(t, "text with, commas and \"quotes\"", rows[1]["text"])
}

func TestRoundTrip_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv.gz")
	writeRows(t, path, [][]string{
		{"uniqid", "text"},
		{"0", "compressed row"},
	})

	_, rows := readAll(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, "compressed row", rows[0]["text"])
}

func TestRead_RowShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	writeRows(t, path, [][]string{
		{"uniqid", "text"},
		{"0", "fine"},
		{"1"},
		{"2", "also fine"},
	})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Read()
	require.NoError(t, err)
	_, err = r.Read()
	assert.ErrorIs(t, err, ErrRowShape)
	row, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "also fine", row["text"])
}

func TestCreate_MakesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")
	writeRows(t, path, [][]string{{"a"}, {"1"}})

	_, rows := readAll(t, path)
	assert.Len(t, rows, 1)
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	writeRows(t, path, [][]string{{"a", "b"}, {"1", "2"}})

	w, err := Append(path)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"3", "4"}))
	require.NoError(t, w.Close())

	_, rows := readAll(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[1]["a"])
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
