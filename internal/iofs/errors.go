package iofs

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

func CreateDirError(dir string, err error) error {
	return fileError(errcode.CreateDirError,
		"Cannot create directory <em>%s</em>", dir, "create directory", err)
}

func ReadFileError(path string, err error) error {
	return fileError(errcode.ReadFileError,
		"Cannot read <em>%s</em>", path, "read", err)
}

func WriteFileError(path string, err error) error {
	return fileError(errcode.WriteFileError,
		"Cannot write <em>%s</em>", path, "write", err)
}

func CorrectionsFileError(path string, err error) error {
	return fileError(errcode.CorrectionsFileError,
		"Corrections file <em>%s</em> is not valid YAML", path,
		"decode corrections", err)
}

// fileError names the function that called the exported constructor.
func fileError(
	code gn.ErrorCode,
	msg, path, action string,
	err error,
) error {
	pc, _, _, _ := runtime.Caller(2)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: code,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: cannot %s %s: %w", fn.Name(), action, path, err),
	}
}
