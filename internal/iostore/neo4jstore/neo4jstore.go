// Package neo4jstore keeps the taxon graph in Neo4j. Taxa are :Taxon
// nodes with a numeric nid, index entries are :Idx nodes and edges are
// native relationships.
package neo4jstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// propPrefix keeps taxon properties apart from the node id.
const propPrefix = "p_"

var schema = []string{
	`CREATE CONSTRAINT taxon_nid_unique IF NOT EXISTS
  FOR (n:Taxon) REQUIRE n.nid IS UNIQUE`,
	`CREATE INDEX idx_field_value IF NOT EXISTS
  FOR (i:Idx) ON (i.field, i.value)`,
	`CREATE INDEX idx_field_nid IF NOT EXISTS
  FOR (i:Idx) ON (i.field, i.nid)`,
}

type store struct {
	driver   neo4j.DriverWithContext
	database string
}

// Open connects to Neo4j and creates constraints and indexes.
func Open(ctx context.Context, cfg config.Neo4jConfig) (graph.Store, error) {
	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth,
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = 10
			c.SocketConnectTimeout = 10 * time.Second
		})
	if err != nil {
		return nil, ConnectionError(cfg.URI, err)
	}
	if err = driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, ConnectionError(cfg.URI, err)
	}

	s := &store{driver: driver, database: cfg.Database}
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	for _, q := range schema {
		res, err := session.Run(ctx, q, nil)
		if err == nil {
			_, err = res.Consume(ctx)
		}
		if err != nil {
			_ = driver.Close(ctx)
			return nil, SchemaError(q, err)
		}
	}
	return s, nil
}

func (s *store) session(
	ctx context.Context,
	mode neo4j.AccessMode,
) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

// Update runs fn in an explicit transaction, fn is never retried.
func (s *store) Update(ctx context.Context, fn func(graph.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	ntx, err := session.BeginTransaction(ctx)
	if err != nil {
		return UnavailableError(err)
	}
	defer ntx.Close(ctx)

	if err = fn(&tx{reader{ctx: ctx, run: ntx}}); err != nil {
		_ = ntx.Rollback(ctx)
		return err
	}
	if err = ntx.Commit(ctx); err != nil {
		return UnavailableError(err)
	}
	return nil
}

func (s *store) View(ctx context.Context, fn func(graph.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	ntx, err := session.BeginTransaction(ctx)
	if err != nil {
		return UnavailableError(err)
	}
	defer ntx.Close(ctx)
	return fn(reader{ctx: ctx, run: ntx})
}

func (s *store) Close() error {
	return s.driver.Close(context.Background())
}

type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)
}

type reader struct {
	ctx context.Context
	run runner
}

func (r reader) records(q string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := r.run.Run(r.ctx, q, params)
	if err != nil {
		return nil, UnavailableError(err)
	}
	recs, err := res.Collect(r.ctx)
	if err != nil {
		return nil, UnavailableError(err)
	}
	return recs, nil
}

func (r reader) ids(q string, params map[string]any) ([]graph.NodeID, error) {
	recs, err := r.records(q, params)
	if err != nil {
		return nil, err
	}
	res := make([]graph.NodeID, 0, len(recs))
	for _, rec := range recs {
		v, _ := rec.Get("nid")
		id, ok := v.(int64)
		if !ok {
			return nil, UnavailableError(
				fmt.Errorf("unexpected nid %v", v))
		}
		res = append(res, graph.NodeID(id))
	}
	return res, nil
}

func (r reader) Node(id graph.NodeID) (*graph.Node, error) {
	recs, err := r.records(
		`MATCH (n:Taxon {nid: $nid}) RETURN properties(n) AS props`,
		map[string]any{"nid": int64(id)},
	)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	v, _ := recs[0].Get("props")
	props, _ := v.(map[string]any)
	res := &graph.Node{ID: id, Props: make(map[string]string)}
	for k, val := range props {
		if !strings.HasPrefix(k, propPrefix) {
			continue
		}
		if s, ok := val.(string); ok {
			res.Props[strings.TrimPrefix(k, propPrefix)] = s
		}
	}
	return res, nil
}

func (r reader) Lookup(field, value string) ([]graph.NodeID, error) {
	return r.ids(`MATCH (i:Idx {field: $field, value: $value})
RETURN i.nid AS nid ORDER BY nid`,
		map[string]any{"field": field, "value": value})
}

func (r reader) Scan(
	field string,
	after graph.NodeID,
	limit int,
) ([]graph.NodeID, error) {
	q := `MATCH (i:Idx {field: $field}) WHERE i.nid > $after
RETURN DISTINCT i.nid AS nid ORDER BY nid`
	params := map[string]any{"field": field, "after": int64(after)}
	if limit > 0 {
		q += " LIMIT $limit"
		params["limit"] = int64(limit)
	}
	return r.ids(q, params)
}

func (r reader) Count(field string) (int, error) {
	recs, err := r.records(`MATCH (i:Idx {field: $field})
RETURN count(DISTINCT i.nid) AS cnt`, map[string]any{"field": field})
	if err != nil || len(recs) == 0 {
		return 0, err
	}
	v, _ := recs[0].Get("cnt")
	n, _ := v.(int64)
	return int(n), nil
}

func (r reader) Outgoing(
	id graph.NodeID,
	kind graph.EdgeKind,
) ([]graph.NodeID, error) {
	if err := graph.CheckEdgeKind(kind); err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`MATCH (:Taxon {nid: $nid})-[:%s]->(b:Taxon)
RETURN b.nid AS nid ORDER BY nid`, kind)
	return r.ids(q, map[string]any{"nid": int64(id)})
}

type tx struct {
	reader
}

func (t *tx) CreateNode(props map[string]string) (graph.NodeID, error) {
	ids, err := t.ids(`MERGE (s:Sequence {name: 'taxon'})
ON CREATE SET s.next = 0
SET s.next = s.next + 1
WITH s
CREATE (n:Taxon {nid: s.next})
SET n += $props
RETURN n.nid AS nid`, map[string]any{"props": prefixed(props)})
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, UnavailableError(fmt.Errorf("node was not created"))
	}
	return ids[0], nil
}

func (t *tx) SetProperty(id graph.NodeID, key, value string) error {
	return t.expectOne(id, `MATCH (n:Taxon {nid: $nid})
SET n += $props
RETURN n.nid AS nid`, map[string]any{
		"nid":   int64(id),
		"props": prefixed(map[string]string{key: value}),
	})
}

func (t *tx) AddToIndex(id graph.NodeID, field, value string) error {
	return t.expectOne(id, `MATCH (n:Taxon {nid: $nid})
MERGE (:Idx {field: $field, value: $value, nid: $nid})
RETURN n.nid AS nid`, map[string]any{
		"nid":   int64(id),
		"field": field,
		"value": value,
	})
}

func (t *tx) CreateEdge(from, to graph.NodeID, kind graph.EdgeKind) error {
	if err := graph.CheckEdgeKind(kind); err != nil {
		return err
	}
	q := fmt.Sprintf(`MATCH (a:Taxon {nid: $from}), (b:Taxon {nid: $to})
MERGE (a)-[:%s]->(b)
RETURN a.nid AS nid`, kind)
	ids, err := t.ids(q, map[string]any{"from": int64(from), "to": int64(to)})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: %d or %d", graph.ErrNodeNotFound, from, to)
	}
	return nil
}

func (t *tx) expectOne(id graph.NodeID, q string, params map[string]any) error {
	ids, err := t.ids(q, params)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: %d", graph.ErrNodeNotFound, id)
	}
	return nil
}

func prefixed(props map[string]string) map[string]any {
	res := make(map[string]any, len(props))
	for k, v := range props {
		res[propPrefix+k] = v
	}
	return res
}
