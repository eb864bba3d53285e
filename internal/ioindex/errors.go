package ioindex

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
	"github.com/gnames/gntaxon/pkg/graph"
)

func InputError(t string) error {
	msg := "Taxon record <em>%s</em> has neither a name nor an external id"
	vars := []any{t}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.InputError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: blank taxon record %q", fn.Name(), t),
	}
}

func CorruptionError(id graph.NodeID, reason string) error {
	msg := "Taxon index is inconsistent at node <em>%d</em>: %s"
	vars := []any{id, reason}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.IndexCorruptionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: node %d: %s", fn.Name(), id, reason),
	}
}

// ConflictError describes a conflict for logs. Conflicts never stop
// resolution.
func ConflictError(c Conflict) error {
	msg := "<em>%s</em> %s points to taxa %d and %d, keeping %d"
	vars := []any{c.Value, c.Kind, c.Kept, c.Other, c.Kept}
	return &gn.Error{
		Code: errcode.ResolutionConflictError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("%s %q resolves to %d and %d",
			c.Kind, c.Value, c.Kept, c.Other),
	}
}
