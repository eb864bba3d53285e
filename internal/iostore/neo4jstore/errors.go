package neo4jstore

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

func ConnectionError(uri string, err error) error {
	msg := "Cannot connect to Neo4j at <em>%s</em>"
	vars := []any{uri}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreConnectionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot connect to %s: %w", fn.Name(), uri, err),
	}
}

func SchemaError(query string, err error) error {
	msg := "Cannot create constraints and indexes of Neo4j store"
	return &gn.Error{
		Code: errcode.StoreSchemaError,
		Msg:  msg,
		Err:  fmt.Errorf("cannot run %q: %w", query, err),
	}
}

// UnavailableError wraps a failed Neo4j session or transaction. The cause
// is kept in the Err field.
func UnavailableError(err error) error {
	msg := "Neo4j store operation failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreUnavailableError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), err),
	}
}
