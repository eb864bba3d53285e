package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := `SELECT node_id FROM index_entries WHERE field = ? AND value = ?`
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t,
		`SELECT node_id FROM index_entries WHERE field = $1 AND value = $2`,
		Postgres.rebind(q))
}
