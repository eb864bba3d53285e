package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gnames/gntaxon/internal/iostore/sqlstore"
	"github.com/gnames/gntaxon/internal/iostore/storetest"
	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite(t *testing.T) {
	storetest.Run(t, func(t *testing.T) graph.Store {
		path := filepath.Join(t.TempDir(), "taxa.sqlite")
		s, err := sqlstore.OpenSQLite(context.Background(), path)
		require.NoError(t, err)
		return s
	})
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taxa.sqlite")
	s, err := sqlstore.OpenSQLite(ctx, path)
	require.NoError(t, err)

	var id graph.NodeID
	err = s.Update(ctx, func(tx graph.Tx) error {
		if id, err = tx.CreateNode(map[string]string{"name": "Homo sapiens"}); err != nil {
			return err
		}
		return tx.AddToIndex(id, "name", "Homo sapiens")
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlstore.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	err = s.View(ctx, func(r graph.Reader) error {
		ids, err := r.Lookup("name", "Homo sapiens")
		require.NoError(t, err)
		assert.Equal(t, []graph.NodeID{id}, ids)
		return nil
	})
	require.NoError(t, err)
}
