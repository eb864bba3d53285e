package pgstore

import (
	"fmt"

	"github.com/gnames/gnlib"
	"github.com/gnames/gntaxon/pkg/config"
)

// ConnectionError is returned when PostgreSQL cannot be reached.
type ConnectionError struct {
	error
	gnlib.MessageBase
}

// NewConnectionError creates a connection error with a message that
// helps to find the cause.
func NewConnectionError(cfg config.DatabaseConfig, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Taxon Store Connection Failed</title>

<warning>Could not connect to PostgreSQL database.</warning>

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>

  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>

  3. Review store settings in <em>~/.config/gntaxon/config.yaml</em>:
     Host: %s
     Port: %d
     Database: %s
     User: %s
`,
		[]any{
			cfg.Host, cfg.Port,
			cfg.Host, cfg.User,
			cfg.Host, cfg.Port, cfg.Database, cfg.User,
		},
	)

	return ConnectionError{
		error: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			cfg.Host, cfg.Port, cfg.Database, cause),
		MessageBase: userBase,
	}
}
