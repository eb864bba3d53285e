// Package memstore keeps the taxon graph in memory. It is used for tests
// and for short runs that do not need to survive a restart.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/gnames/gntaxon/pkg/graph"
)

type store struct {
	mu    sync.RWMutex
	last  graph.NodeID
	nodes map[graph.NodeID]map[string]string

	// index keeps field -> value -> sorted node ids.
	index map[string]map[string][]graph.NodeID

	// fields keeps sorted distinct node ids per field, and refs counts
	// how many values point to a node under the field.
	fields map[string][]graph.NodeID
	refs   map[string]map[graph.NodeID]int

	edges map[graph.NodeID]map[graph.EdgeKind][]graph.NodeID
}

// New creates an empty in-memory store.
func New() graph.Store {
	return &store{
		nodes:  make(map[graph.NodeID]map[string]string),
		index:  make(map[string]map[string][]graph.NodeID),
		fields: make(map[string][]graph.NodeID),
		refs:   make(map[string]map[graph.NodeID]int),
		edges:  make(map[graph.NodeID]map[graph.EdgeKind][]graph.NodeID),
	}
}

func (s *store) Update(ctx context.Context, fn func(graph.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &tx{store: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *store) View(ctx context.Context, fn func(graph.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s)
}

func (s *store) Close() error {
	return nil
}

func (s *store) Node(id graph.NodeID) (*graph.Node, error) {
	props, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	return &graph.Node{ID: id, Props: maps.Clone(props)}, nil
}

func (s *store) Lookup(field, value string) ([]graph.NodeID, error) {
	return slices.Clone(s.index[field][value]), nil
}

func (s *store) Scan(
	field string,
	after graph.NodeID,
	limit int,
) ([]graph.NodeID, error) {
	ids := s.fields[field]
	i, _ := slices.BinarySearch(ids, after+1)
	end := len(ids)
	if limit > 0 && i+limit < end {
		end = i + limit
	}
	return slices.Clone(ids[i:end]), nil
}

func (s *store) Count(field string) (int, error) {
	return len(s.fields[field]), nil
}

func (s *store) Outgoing(
	id graph.NodeID,
	kind graph.EdgeKind,
) ([]graph.NodeID, error) {
	return slices.Clone(s.edges[id][kind]), nil
}

// tx writes directly into the store and keeps an undo log.
type tx struct {
	*store
	undo []func()
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *tx) exists(id graph.NodeID) error {
	if _, ok := t.nodes[id]; !ok {
		return fmt.Errorf("%w: %d", graph.ErrNodeNotFound, id)
	}
	return nil
}

func (t *tx) CreateNode(props map[string]string) (graph.NodeID, error) {
	t.last++
	id := t.last
	t.nodes[id] = maps.Clone(props)
	if t.nodes[id] == nil {
		t.nodes[id] = make(map[string]string)
	}
	t.undo = append(t.undo, func() { delete(t.nodes, id) })
	return id, nil
}

func (t *tx) SetProperty(id graph.NodeID, key, value string) error {
	if err := t.exists(id); err != nil {
		return err
	}
	props := t.nodes[id]
	old, had := props[key]
	props[key] = value
	t.undo = append(t.undo, func() {
		if had {
			props[key] = old
		} else {
			delete(props, key)
		}
	})
	return nil
}

func (t *tx) AddToIndex(id graph.NodeID, field, value string) error {
	if err := t.exists(id); err != nil {
		return err
	}
	vals, ok := t.index[field]
	if !ok {
		vals = make(map[string][]graph.NodeID)
		t.index[field] = vals
	}
	ids, added := insert(vals[value], id)
	if !added {
		return nil
	}
	vals[value] = ids

	refs, ok := t.refs[field]
	if !ok {
		refs = make(map[graph.NodeID]int)
		t.refs[field] = refs
	}
	refs[id]++
	if refs[id] == 1 {
		t.fields[field], _ = insert(t.fields[field], id)
	}

	t.undo = append(t.undo, func() {
		vals[value] = remove(vals[value], id)
		refs[id]--
		if refs[id] == 0 {
			delete(refs, id)
			t.fields[field] = remove(t.fields[field], id)
		}
	})
	return nil
}

func (t *tx) CreateEdge(from, to graph.NodeID, kind graph.EdgeKind) error {
	if err := graph.CheckEdgeKind(kind); err != nil {
		return err
	}
	if err := t.exists(from); err != nil {
		return err
	}
	if err := t.exists(to); err != nil {
		return err
	}
	kinds, ok := t.edges[from]
	if !ok {
		kinds = make(map[graph.EdgeKind][]graph.NodeID)
		t.edges[from] = kinds
	}
	ids, added := insert(kinds[kind], to)
	if !added {
		return nil
	}
	kinds[kind] = ids
	t.undo = append(t.undo, func() { kinds[kind] = remove(kinds[kind], to) })
	return nil
}

// insert keeps ids sorted and reports whether id was new.
func insert(ids []graph.NodeID, id graph.NodeID) ([]graph.NodeID, bool) {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids, false
	}
	return slices.Insert(ids, i, id), true
}

func remove(ids []graph.NodeID, id graph.NodeID) []graph.NodeID {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}
