package ioresolve

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

func CanceledError(done int, err error) error {
	msg := "Resolution stopped after <em>%d</em> records"
	vars := []any{done}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ResolveCanceledError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: canceled after %d records: %w", fn.Name(), done, err),
	}
}
