package sqlstore

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

func ConnectionError(kind, target string, err error) error {
	msg := "Cannot open <em>%s</em> store at <em>%s</em>"
	vars := []any{kind, target}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open %s store %s: %w",
			fn.Name(), kind, target, err),
	}
}

func SchemaError(kind string, err error) error {
	msg := "Cannot create tables of <em>%s</em> store"
	vars := []any{kind}
	return &gn.Error{
		Code: errcode.StoreSchemaError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot create %s schema: %w", kind, err),
	}
}

// UnavailableError wraps failures of a store operation. The cause is
// kept in the Err field.
func UnavailableError(err error) error {
	msg := "Taxon store operation failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreUnavailableError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), err),
	}
}
