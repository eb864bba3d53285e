// Package iostore opens the graph store selected in the configuration.
package iostore

import (
	"context"
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/iostore/memstore"
	"github.com/gnames/gntaxon/internal/iostore/neo4jstore"
	"github.com/gnames/gntaxon/internal/iostore/pgstore"
	"github.com/gnames/gntaxon/internal/iostore/sqlstore"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/errcode"
	"github.com/gnames/gntaxon/pkg/graph"
)

// Open returns a store of cfg.Store.Type.
func Open(ctx context.Context, cfg *config.Config) (graph.Store, error) {
	switch cfg.Store.Type {
	case "memory":
		return memstore.New(), nil
	case "sqlite", "":
		return sqlstore.OpenSQLite(ctx, cfg.StoreFilePath())
	case "postgres":
		return pgstore.Open(ctx, cfg.Store.Postgres)
	case "neo4j":
		return neo4jstore.Open(ctx, cfg.Store.Neo4j)
	}
	return nil, UnknownTypeError(cfg.Store.Type)
}

// Target describes where the store keeps its data, for log messages.
func Target(cfg *config.Config) string {
	switch cfg.Store.Type {
	case "memory":
		return "memory"
	case "postgres":
		pg := cfg.Store.Postgres
		return fmt.Sprintf("%s@%s:%d/%s", pg.User, pg.Host, pg.Port, pg.Database)
	case "neo4j":
		return cfg.Store.Neo4j.URI
	}
	return cfg.StoreFilePath()
}

func UnknownTypeError(kind string) error {
	msg := "Unknown store type <em>%s</em>"
	vars := []any{kind}
	return &gn.Error{
		Code: errcode.StoreUnknownTypeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown store type %q", kind),
	}
}
