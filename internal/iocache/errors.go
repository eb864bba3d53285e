package iocache

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

func CacheFileError(path string, err error) error {
	msg := "Cannot load taxon cache file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CacheFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot load %s: %w", fn.Name(), path, err),
	}
}

func CacheFormatError(path string, header []string) error {
	msg := "Unexpected columns in taxon cache file <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.CacheLoadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("unexpected header of %s: %s",
			path, strings.Join(header, ", ")),
	}
}
