package iotsv_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/iotsv"
	"github.com/gnames/gntaxon/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"taxa.tsv", "taxa.tsv.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := iotsv.Create(path, []string{"id", "name", "path"})
			require.NoError(t, err)
			require.NoError(t, w.Write([]string{"EOL:327955", "Homo sapiens",
				"Animalia | Homo sapiens"}))
			require.NoError(t, w.Write([]string{"EOL:1", "Bad\tname"}))
			require.NoError(t, w.Close())

			r, err := iotsv.Open(path)
			require.NoError(t, err)
			defer r.Close()
			assert.Equal(t, []string{"id", "name", "path"}, r.Header())
			assert.True(t, r.Has("name"))
			assert.False(t, r.Has("rank"))

			row, err := r.Read()
			require.NoError(t, err)
			assert.Equal(t, 2, row.Line)
			assert.Equal(t, "EOL:327955", row.Get("id"))
			assert.Equal(t, "Homo sapiens", row.Field(1))
			assert.Equal(t, "Animalia | Homo sapiens", row.Get("path"))
			assert.Equal(t, "", row.Get("rank"))

			row, err = r.Read()
			require.NoError(t, err)
			assert.Equal(t, "Bad name", row.Get("name"))
			assert.Equal(t, "", row.Get("path"))
			assert.Equal(t, 2, row.Len())

			_, err = r.Read()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := iotsv.Open(filepath.Join(dir, "missing.tsv"))
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ReadFileError, gnErr.Code)

	empty := filepath.Join(dir, "empty.tsv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = iotsv.Open(empty)
	require.Error(t, err)
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.TSVHeaderError, gnErr.Code)
}

func TestBOMHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.tsv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffid\tname\nA:1\tAus bus\n"), 0644))
	r, err := iotsv.Open(path)
	require.NoError(t, err)
	defer r.Close()
	row, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "A:1", row.Get("id"))
}
