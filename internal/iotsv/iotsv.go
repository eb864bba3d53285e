// Package iotsv reads and writes tab-separated files. Files are gzipped
// transparently: readers detect compression by content, writers compress
// when the file name ends with ".gz".
package iotsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Reader reads rows of a TSV file with a header line.
type Reader struct {
	path   string
	f      *os.File
	gz     *gzip.Reader
	csv    *csv.Reader
	header []string
	idx    map[string]int
}

// Row is a single data row that knows the header of its file.
type Row struct {
	Line   int
	fields []string
	idx    map[string]int
}

// Open opens a plain or gzipped TSV file and reads its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	res := &Reader{path: path, f: f}

	br := bufio.NewReader(f)
	var r io.Reader = br
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		res.gz, err = gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, OpenError(path, err)
		}
		r = res.gz
	}

	res.csv = csv.NewReader(r)
	res.csv.Comma = '\t'
	res.csv.LazyQuotes = true
	res.csv.FieldsPerRecord = -1

	res.header, err = res.csv.Read()
	if err != nil {
		res.Close()
		return nil, HeaderError(path, err)
	}
	res.idx = make(map[string]int, len(res.header))
	for i, v := range res.header {
		v = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
		res.header[i] = v
		if _, ok := res.idx[v]; !ok {
			res.idx[v] = i
		}
	}
	return res, nil
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Has is true if the header contains the column.
func (r *Reader) Has(col string) bool {
	_, ok := r.idx[col]
	return ok
}

// Read returns the next row or io.EOF. A malformed row returns a
// RowError; reading may continue after it.
func (r *Reader) Read() (Row, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return Row{Line: pe.Line}, RowError(r.path, pe.Line, err)
		}
		return Row{}, ReadError(r.path, err)
	}
	line, _ := r.csv.FieldPos(0)
	return Row{Line: line, fields: fields, idx: r.idx}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.f.Close()
}

// Get returns a trimmed value of the column, or an empty string if
// the column is absent from the header or the row.
func (r Row) Get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Field returns a trimmed value by position.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Len is the number of fields in the row.
func (r Row) Len() int {
	return len(r.fields)
}

// Writer writes TSV rows.
type Writer struct {
	f      *os.File
	gz     *gzip.Writer
	csv    *csv.Writer
	closed bool
}

// Create creates a TSV file and writes its header.
func Create(path string, header []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, CreateError(path, err)
	}
	res := &Writer{f: f}
	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		res.gz = gzip.NewWriter(f)
		w = res.gz
	}
	res.csv = csv.NewWriter(w)
	res.csv.Comma = '\t'
	if err = res.csv.Write(header); err != nil {
		res.Close()
		return nil, CreateError(path, err)
	}
	return res, nil
}

// Write writes a row. Tabs and newlines inside values are replaced with
// spaces.
func (w *Writer) Write(fields []string) error {
	clean := make([]string, len(fields))
	for i, v := range fields {
		clean[i] = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(v)
	}
	return w.csv.Write(clean)
}

// Close flushes buffered rows and closes the file. Calls after the first
// one do nothing.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.csv.Flush()
	err := w.csv.Error()
	if w.gz != nil {
		if gzErr := w.gz.Close(); err == nil {
			err = gzErr
		}
	}
	if fErr := w.f.Close(); err == nil {
		err = fErr
	}
	return err
}
