package ioweb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

func EnricherUnknownError(name string) error {
	msg := "Unknown web enricher <em>%s</em>"
	vars := []any{name}
	return &gn.Error{
		Code: errcode.EnricherUnknownError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown web enricher %q", name),
	}
}
