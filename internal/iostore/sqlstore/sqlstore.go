// Package sqlstore keeps the taxon graph in four relational tables. It
// works on top of database/sql, so the same code serves SQLite and
// PostgreSQL. Dialects differ only in placeholders.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gnames/gntaxon/pkg/graph"
)

// Dialect adapts queries to a database.
type Dialect struct {
	Name string

	// Numbered placeholders ($1, $2) are used instead of "?".
	Numbered bool
}

var (
	SQLite   = Dialect{Name: "sqlite"}
	Postgres = Dialect{Name: "postgres", Numbered: true}
)

func (d Dialect) rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type queries struct {
	nodeExists, nodeProps, lookup, scan, count, outgoing string
	createNode, setProp, addIndex, createEdge            string
}

func newQueries(d Dialect) queries {
	return queries{
		nodeExists: d.rebind(`SELECT 1 FROM nodes WHERE id = ?`),
		nodeProps: d.rebind(
			`SELECT name, value FROM node_properties WHERE node_id = ?`),
		lookup: d.rebind(`SELECT node_id FROM index_entries
  WHERE field = ? AND value = ? ORDER BY node_id`),
		scan: d.rebind(`SELECT DISTINCT node_id FROM index_entries
  WHERE field = ? AND node_id > ? ORDER BY node_id LIMIT ?`),
		count: d.rebind(
			`SELECT COUNT(DISTINCT node_id) FROM index_entries WHERE field = ?`),
		outgoing: d.rebind(`SELECT to_id FROM edges
  WHERE from_id = ? AND kind = ? ORDER BY to_id`),
		createNode: `INSERT INTO nodes DEFAULT VALUES RETURNING id`,
		setProp: d.rebind(`INSERT INTO node_properties (node_id, name, value)
  VALUES (?, ?, ?)
  ON CONFLICT (node_id, name) DO UPDATE SET value = excluded.value`),
		addIndex: d.rebind(`INSERT INTO index_entries (field, value, node_id)
  VALUES (?, ?, ?) ON CONFLICT DO NOTHING`),
		createEdge: d.rebind(`INSERT INTO edges (from_id, kind, to_id)
  VALUES (?, ?, ?) ON CONFLICT DO NOTHING`),
	}
}

type store struct {
	db *sql.DB
	q  queries
}

// New wraps an opened database that already has the schema. The store
// owns db and closes it on Close.
func New(db *sql.DB, d Dialect) graph.Store {
	return &store{db: db, q: newQueries(d)}
}

func (s *store) Update(ctx context.Context, fn func(graph.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UnavailableError(err)
	}
	t := &tx{reader: reader{ctx: ctx, q: &s.q, db: sqlTx}}
	if err = fn(t); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return UnavailableError(err)
	}
	return nil
}

func (s *store) View(ctx context.Context, fn func(graph.Reader) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UnavailableError(err)
	}
	defer sqlTx.Rollback()
	return fn(reader{ctx: ctx, q: &s.q, db: sqlTx})
}

func (s *store) Close() error {
	return s.db.Close()
}

type reader struct {
	ctx context.Context
	q   *queries
	db  *sql.Tx
}

func (r reader) Node(id graph.NodeID) (*graph.Node, error) {
	ok, err := r.exists(id)
	if err != nil || !ok {
		return nil, err
	}
	rows, err := r.db.QueryContext(r.ctx, r.q.nodeProps, int64(id))
	if err != nil {
		return nil, UnavailableError(err)
	}
	defer rows.Close()

	res := &graph.Node{ID: id, Props: make(map[string]string)}
	for rows.Next() {
		var k, v string
		if err = rows.Scan(&k, &v); err != nil {
			return nil, UnavailableError(err)
		}
		res.Props[k] = v
	}
	if err = rows.Err(); err != nil {
		return nil, UnavailableError(err)
	}
	return res, nil
}

func (r reader) Lookup(field, value string) ([]graph.NodeID, error) {
	return r.ids(r.q.lookup, field, value)
}

func (r reader) Scan(
	field string,
	after graph.NodeID,
	limit int,
) ([]graph.NodeID, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	return r.ids(r.q.scan, field, int64(after), limit)
}

func (r reader) Count(field string) (int, error) {
	var res int
	err := r.db.QueryRowContext(r.ctx, r.q.count, field).Scan(&res)
	if err != nil {
		return 0, UnavailableError(err)
	}
	return res, nil
}

func (r reader) Outgoing(
	id graph.NodeID,
	kind graph.EdgeKind,
) ([]graph.NodeID, error) {
	return r.ids(r.q.outgoing, int64(id), string(kind))
}

func (r reader) exists(id graph.NodeID) (bool, error) {
	var one int
	err := r.db.QueryRowContext(r.ctx, r.q.nodeExists, int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, UnavailableError(err)
	}
	return true, nil
}

func (r reader) mustExist(ids ...graph.NodeID) error {
	for _, id := range ids {
		ok, err := r.exists(id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", graph.ErrNodeNotFound, id)
		}
	}
	return nil
}

func (r reader) ids(q string, args ...any) ([]graph.NodeID, error) {
	rows, err := r.db.QueryContext(r.ctx, q, args...)
	if err != nil {
		return nil, UnavailableError(err)
	}
	defer rows.Close()

	var res []graph.NodeID
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, UnavailableError(err)
		}
		res = append(res, graph.NodeID(id))
	}
	if err = rows.Err(); err != nil {
		return nil, UnavailableError(err)
	}
	return res, nil
}

type tx struct {
	reader
}

func (t *tx) CreateNode(props map[string]string) (graph.NodeID, error) {
	var id int64
	err := t.db.QueryRowContext(t.ctx, t.q.createNode).Scan(&id)
	if err != nil {
		return 0, UnavailableError(err)
	}
	for k, v := range props {
		if err = t.setProperty(id, k, v); err != nil {
			return 0, err
		}
	}
	return graph.NodeID(id), nil
}

func (t *tx) SetProperty(id graph.NodeID, key, value string) error {
	if err := t.mustExist(id); err != nil {
		return err
	}
	return t.setProperty(int64(id), key, value)
}

func (t *tx) setProperty(id int64, key, value string) error {
	if _, err := t.db.ExecContext(t.ctx, t.q.setProp, id, key, value); err != nil {
		return UnavailableError(err)
	}
	return nil
}

func (t *tx) AddToIndex(id graph.NodeID, field, value string) error {
	if err := t.mustExist(id); err != nil {
		return err
	}
	_, err := t.db.ExecContext(t.ctx, t.q.addIndex, field, value, int64(id))
	if err != nil {
		return UnavailableError(err)
	}
	return nil
}

func (t *tx) CreateEdge(from, to graph.NodeID, kind graph.EdgeKind) error {
	if err := graph.CheckEdgeKind(kind); err != nil {
		return err
	}
	if err := t.mustExist(from, to); err != nil {
		return err
	}
	_, err := t.db.ExecContext(t.ctx, t.q.createEdge,
		int64(from), string(kind), int64(to))
	if err != nil {
		return UnavailableError(err)
	}
	return nil
}
