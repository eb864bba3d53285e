package iotsv

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

func OpenError(path string, err error) error {
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  "Cannot open <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("cannot open tsv %s: %w", path, err),
	}
}

func CreateError(path string, err error) error {
	return &gn.Error{
		Code: errcode.WriteFileError,
		Msg:  "Cannot create <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("cannot create tsv %s: %w", path, err),
	}
}

func HeaderError(path string, err error) error {
	return &gn.Error{
		Code: errcode.TSVHeaderError,
		Msg:  "Cannot read header of <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("cannot read tsv header of %s: %w", path, err),
	}
}

func ReadError(path string, err error) error {
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  "Cannot read <em>%s</em>",
		Vars: []any{path},
		Err:  fmt.Errorf("cannot read tsv %s: %w", path, err),
	}
}

// RowError marks a single unreadable row.
func RowError(path string, line int, err error) error {
	return &gn.Error{
		Code: errcode.InputError,
		Msg:  "Malformed row at line <em>%d</em> of <em>%s</em>",
		Vars: []any{line, path},
		Err:  fmt.Errorf("malformed row %s:%d: %w", path, line, err),
	}
}

// IsRowError is true for errors that affect only one row.
func IsRowError(err error) bool {
	gnErr, ok := err.(*gn.Error)
	return ok && gnErr.Code == errcode.InputError
}
