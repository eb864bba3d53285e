// Package storetest keeps the behavior every graph.Store backend must
// share. Backend tests call Run with a constructor of an empty store.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run executes the shared suite. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) graph.Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, graph.Store)
	}{
		{"nodes", testNodes},
		{"properties", testProperties},
		{"index", testIndex},
		{"scan", testScan},
		{"edges", testEdges},
		{"missing nodes", testMissing},
		{"rollback", testRollback},
		{"canceled", testCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			tt.fn(t, s)
		})
	}
}

var errAbort = errors.New("abort")

func create(t *testing.T, s graph.Store, props ...map[string]string) []graph.NodeID {
	var res []graph.NodeID
	err := s.Update(context.Background(), func(tx graph.Tx) error {
		for _, p := range props {
			id, err := tx.CreateNode(p)
			if err != nil {
				return err
			}
			res = append(res, id)
		}
		return nil
	})
	require.NoError(t, err)
	return res
}

func view(t *testing.T, s graph.Store, fn func(graph.Reader) error) {
	require.NoError(t, s.View(context.Background(), fn))
}

func testNodes(t *testing.T, s graph.Store) {
	ids := create(t, s,
		map[string]string{"name": "Homo sapiens", "externalId": "EOL:327955"},
		map[string]string{"name": "Ariopsis felis"},
		nil,
	)
	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	more := create(t, s, map[string]string{"name": "Felis catus"})
	assert.Less(t, ids[2], more[0])

	view(t, s, func(r graph.Reader) error {
		n, err := r.Node(ids[0])
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, ids[0], n.ID)
		assert.Equal(t, map[string]string{
			"name": "Homo sapiens", "externalId": "EOL:327955",
		}, n.Props)

		n, err = r.Node(ids[2])
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Empty(t, n.Props)

		n, err = r.Node(more[0] + 1000)
		require.NoError(t, err)
		assert.Nil(t, n)
		return nil
	})
}

func testProperties(t *testing.T, s graph.Store) {
	ids := create(t, s, map[string]string{"name": "Homo sapiens"})
	err := s.Update(context.Background(), func(tx graph.Tx) error {
		if err := tx.SetProperty(ids[0], "status", "UNRESOLVED"); err != nil {
			return err
		}
		if err := tx.SetProperty(ids[0], "status", "RESOLVED"); err != nil {
			return err
		}
		n, err := tx.Node(ids[0])
		require.NoError(t, err)
		assert.Equal(t, "RESOLVED", n.Props["status"])
		return nil
	})
	require.NoError(t, err)

	view(t, s, func(r graph.Reader) error {
		n, err := r.Node(ids[0])
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"name": "Homo sapiens", "status": "RESOLVED",
		}, n.Props)
		return nil
	})
}

func testIndex(t *testing.T, s graph.Store) {
	ids := create(t, s, nil, nil, nil)
	err := s.Update(context.Background(), func(tx graph.Tx) error {
		for _, v := range []struct {
			id           graph.NodeID
			field, value string
		}{
			{ids[2], "name", "Homo sapiens"},
			{ids[0], "name", "Homo sapiens"},
			{ids[0], "name", "Homo sapiens"},
			{ids[0], "name", "Man"},
			{ids[1], "externalId", "EOL:327955"},
		} {
			if err := tx.AddToIndex(v.id, v.field, v.value); err != nil {
				return err
			}
		}
		got, err := tx.Lookup("name", "Homo sapiens")
		require.NoError(t, err)
		assert.Equal(t, []graph.NodeID{ids[0], ids[2]}, got)
		return nil
	})
	require.NoError(t, err)

	view(t, s, func(r graph.Reader) error {
		got, err := r.Lookup("name", "Homo sapiens")
		require.NoError(t, err)
		assert.Equal(t, []graph.NodeID{ids[0], ids[2]}, got)

		got, err = r.Lookup("name", "homo sapiens")
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = r.Lookup("externalId", "Homo sapiens")
		require.NoError(t, err)
		assert.Empty(t, got)

		n, err := r.Count("name")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = r.Count("original")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		return nil
	})
}

func testScan(t *testing.T, s graph.Store) {
	props := make([]map[string]string, 7)
	ids := create(t, s, props...)
	err := s.Update(context.Background(), func(tx graph.Tx) error {
		for i, id := range ids {
			if i == 3 {
				continue
			}
			if err := tx.AddToIndex(id, "original", "x"); err != nil {
				return err
			}
			if err := tx.AddToIndex(id, "original", "y"); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var pages [][]graph.NodeID
	view(t, s, func(r graph.Reader) error {
		var after graph.NodeID
		for {
			page, err := r.Scan("original", after, 4)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			pages = append(pages, page)
			after = page[len(page)-1]
		}
		n, err := r.Count("original")
		require.NoError(t, err)
		assert.Equal(t, 6, n)
		return nil
	})
	assert.Equal(t, [][]graph.NodeID{
		{ids[0], ids[1], ids[2], ids[4]},
		{ids[5], ids[6]},
	}, pages)
}

func testEdges(t *testing.T, s graph.Store) {
	ids := create(t, s, nil, nil, nil)
	err := s.Update(context.Background(), func(tx graph.Tx) error {
		for _, to := range []graph.NodeID{ids[2], ids[0], ids[0]} {
			if err := tx.CreateEdge(ids[1], to, graph.SameAs); err != nil {
				return err
			}
		}
		return tx.CreateEdge(ids[1], ids[2], graph.SimilarTo)
	})
	require.NoError(t, err)

	err = s.Update(context.Background(), func(tx graph.Tx) error {
		return tx.CreateEdge(ids[1], ids[2], "LIKES")
	})
	assert.ErrorIs(t, err, graph.ErrUnknownEdgeKind)

	view(t, s, func(r graph.Reader) error {
		got, err := r.Outgoing(ids[1], graph.SameAs)
		require.NoError(t, err)
		assert.Equal(t, []graph.NodeID{ids[0], ids[2]}, got)

		got, err = r.Outgoing(ids[1], graph.SimilarTo)
		require.NoError(t, err)
		assert.Equal(t, []graph.NodeID{ids[2]}, got)

		got, err = r.Outgoing(ids[0], graph.SameAs)
		require.NoError(t, err)
		assert.Empty(t, got)
		return nil
	})
}

func testMissing(t *testing.T, s graph.Store) {
	ids := create(t, s, nil)
	missing := ids[0] + 1000
	tests := []struct {
		msg string
		fn  func(graph.Tx) error
	}{
		{"property", func(tx graph.Tx) error {
			return tx.SetProperty(missing, "name", "x")
		}},
		{"index", func(tx graph.Tx) error {
			return tx.AddToIndex(missing, "name", "x")
		}},
		{"edge to", func(tx graph.Tx) error {
			return tx.CreateEdge(ids[0], missing, graph.SameAs)
		}},
		{"edge from", func(tx graph.Tx) error {
			return tx.CreateEdge(missing, ids[0], graph.SameAs)
		}},
	}
	for _, tt := range tests {
		err := s.Update(context.Background(), tt.fn)
		assert.ErrorIs(t, err, graph.ErrNodeNotFound, tt.msg)
	}
}

func testRollback(t *testing.T, s graph.Store) {
	ids := create(t, s, map[string]string{"name": "Homo sapiens"})

	var created graph.NodeID
	err := s.Update(context.Background(), func(tx graph.Tx) error {
		var err error
		if created, err = tx.CreateNode(map[string]string{"name": "Man"}); err != nil {
			return err
		}
		if err = tx.SetProperty(ids[0], "name", "Homo"); err != nil {
			return err
		}
		if err = tx.SetProperty(ids[0], "rank", "species"); err != nil {
			return err
		}
		if err = tx.AddToIndex(ids[0], "name", "Homo sapiens"); err != nil {
			return err
		}
		if err = tx.AddToIndex(created, "name", "Man"); err != nil {
			return err
		}
		if err = tx.CreateEdge(created, ids[0], graph.SameAs); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	view(t, s, func(r graph.Reader) error {
		n, err := r.Node(created)
		require.NoError(t, err)
		assert.Nil(t, n)

		n, err = r.Node(ids[0])
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"name": "Homo sapiens"}, n.Props)

		for _, v := range []string{"Homo sapiens", "Man"} {
			got, err := r.Lookup("name", v)
			require.NoError(t, err)
			assert.Empty(t, got)
		}
		cnt, err := r.Count("name")
		require.NoError(t, err)
		assert.Zero(t, cnt)

		got, err := r.Outgoing(created, graph.SameAs)
		require.NoError(t, err)
		assert.Empty(t, got)
		return nil
	})

	next := create(t, s, nil)
	assert.Greater(t, next[0], ids[0])
}

func testCanceled(t *testing.T, s graph.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var created graph.NodeID
	err := s.Update(ctx, func(tx graph.Tx) error {
		var err error
		created, err = tx.CreateNode(map[string]string{"name": "Man"})
		return err
	})
	require.Error(t, err)
	if created == 0 {
		return
	}
	view(t, s, func(r graph.Reader) error {
		n, err := r.Node(created)
		require.NoError(t, err)
		assert.Nil(t, n)
		return nil
	})
}
