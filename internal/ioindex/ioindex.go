// Package ioindex is the authoritative mapping of names and external ids
// to canonical taxa. It works on top of any graph.Store.
//
// A canonical taxon is a node with the "canonical" property. Alternates
// (raw records, synonyms, ids from other providers) link to it with a
// single SAME_AS edge. Lookups follow at most one hop and, when several
// canonical taxa match, return the earliest created one.
package ioindex

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/gnames/gntaxon/pkg/taxon"
)

// Index fields.
const (
	FieldExternalID = taxon.KeyExternalID
	FieldName       = taxon.KeyName
	FieldCanonical  = taxon.KeyCanonical
	FieldOriginal   = "original"
	FieldSimilar    = "similar"
)

// ConflictKind tells what kind of key points to more than one canonical
// taxon.
type ConflictKind string

const (
	ConflictExternalID ConflictKind = "externalId"
	ConflictName       ConflictKind = "name"
)

// Conflict is a key that points to two canonical taxa. Kept is the earlier
// one, lookups by the key return it.
type Conflict struct {
	Kind  ConflictKind
	Value string
	Kept  graph.NodeID
	Other graph.NodeID
}

// Entry is a stored taxon together with its node id and bookkeeping
// properties.
type Entry struct {
	ID         graph.NodeID
	Taxon      taxon.Taxon
	Canonical  bool
	Status     taxon.Status
	UUID       string
	ResolvedBy string
}

func entryOf(n *graph.Node) Entry {
	return Entry{
		ID:         n.ID,
		Taxon:      taxon.FromProperties(n.Props),
		Canonical:  n.Props[taxon.KeyCanonical] == "true",
		Status:     taxon.Status(n.Props[taxon.KeyStatus]),
		UUID:       n.Props[taxon.KeyUUID],
		ResolvedBy: n.Props[taxon.KeyResolvedBy],
	}
}

// Index serializes all writes through one lock. Reads run concurrently.
type Index struct {
	store graph.Store
	wmu   sync.Mutex

	cmu       sync.Mutex
	conflicts []Conflict
	seen      map[Conflict]struct{}
}

// New creates an Index on top of a store.
func New(store graph.Store) *Index {
	return &Index{
		store: store,
		seen:  make(map[Conflict]struct{}),
	}
}

// Update runs fn inside one store transaction. Conflicts found by fn are
// recorded only if the transaction commits.
func (idx *Index) Update(ctx context.Context, fn func(*Writer) error) error {
	idx.wmu.Lock()
	defer idx.wmu.Unlock()

	var w *Writer
	err := idx.store.Update(ctx, func(tx graph.Tx) error {
		w = &Writer{tx: tx}
		return fn(w)
	})
	if err != nil {
		return err
	}
	idx.record(w.conflicts)
	return nil
}

// View runs fn with read access to the index.
func (idx *Index) View(ctx context.Context, fn func(*Reader) error) error {
	return idx.store.View(ctx, func(r graph.Reader) error {
		return fn(&Reader{r: r})
	})
}

// GetOrCreateTaxon returns the canonical taxon for the record, creating
// it when there is none. See Writer.GetOrCreateTaxon.
func (idx *Index) GetOrCreateTaxon(
	ctx context.Context,
	t taxon.Taxon,
) (*Entry, error) {
	var res Entry
	err := idx.Update(ctx, func(w *Writer) error {
		var err error
		res, err = w.GetOrCreateTaxon(t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ConnectTaxa links an alternate to a canonical taxon. See
// Writer.ConnectTaxa.
func (idx *Index) ConnectTaxa(
	ctx context.Context,
	alt taxon.Taxon,
	canonicalID graph.NodeID,
	kind graph.EdgeKind,
) (*Entry, error) {
	var res Entry
	err := idx.Update(ctx, func(w *Writer) error {
		var err error
		res, err = w.ConnectTaxa(alt, canonicalID, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindTaxonByID returns the canonical taxon for an external id, or nil.
func (idx *Index) FindTaxonByID(ctx context.Context, id string) (*Entry, error) {
	return idx.find(ctx, FieldExternalID, id)
}

// FindTaxonByName returns the canonical taxon for an exact name, or nil.
func (idx *Index) FindTaxonByName(ctx context.Context, name string) (*Entry, error) {
	return idx.find(ctx, FieldName, name)
}

// ClassificationOf returns the canonical taxon a collaborator node is
// classified as. See Reader.ClassificationOf.
func (idx *Index) ClassificationOf(ctx context.Context, id graph.NodeID) (*Entry, error) {
	var res *Entry
	err := idx.View(ctx, func(r *Reader) error {
		var err error
		res, err = r.ClassificationOf(id)
		return err
	})
	return res, err
}

func (idx *Index) find(ctx context.Context, field, value string) (*Entry, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var res *Entry
	err := idx.View(ctx, func(r *Reader) error {
		e, ok, err := findCanonical(r.r, field, value)
		if ok {
			res = &e
		}
		return err
	})
	return res, err
}

// AddOriginal stores raw records as UNRESOLVED nodes, indexed under
// "original" only. Records without a name and an id are skipped, as are
// records already stored. It returns the number of added records.
func (idx *Index) AddOriginal(ctx context.Context, records []taxon.Taxon) (int, error) {
	var res int
	err := idx.Update(ctx, func(w *Writer) error {
		res = 0
		for _, t := range records {
			ok, err := w.addOriginal(t)
			if err != nil {
				return err
			}
			if ok {
				res++
			}
		}
		return nil
	})
	return res, err
}

// Unresolved returns raw records with ids greater than after that are not
// RESOLVED yet. It scans at most limit records, the returned id is the
// last scanned one, or 0 when there is nothing left to scan.
func (idx *Index) Unresolved(
	ctx context.Context,
	after graph.NodeID,
	limit int,
) ([]Entry, graph.NodeID, error) {
	var res []Entry
	var last graph.NodeID
	err := idx.View(ctx, func(r *Reader) error {
		ids, err := r.r.Scan(FieldOriginal, after, limit)
		if err != nil {
			return err
		}
		for _, id := range ids {
			last = id
			n, err := r.r.Node(id)
			if err != nil {
				return err
			}
			if n == nil {
				return CorruptionError(id, "indexed node does not exist")
			}
			e := entryOf(n)
			if e.Status != taxon.Resolved {
				res = append(res, e)
			}
		}
		return nil
	})
	return res, last, err
}

// CountOriginal returns the number of raw records.
func (idx *Index) CountOriginal(ctx context.Context) (int, error) {
	var res int
	err := idx.View(ctx, func(r *Reader) error {
		var err error
		res, err = r.r.Count(FieldOriginal)
		return err
	})
	return res, err
}

// CountPending returns the number of raw records that are not RESOLVED
// yet, the records Unresolved walks through.
func (idx *Index) CountPending(ctx context.Context) (int, error) {
	const page = 1000
	var res int
	err := idx.View(ctx, func(r *Reader) error {
		var after graph.NodeID
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids, err := r.r.Scan(FieldOriginal, after, page)
			if err != nil {
				return err
			}
			for _, id := range ids {
				n, err := r.r.Node(id)
				if err != nil {
					return err
				}
				if n == nil {
					return CorruptionError(id, "indexed node does not exist")
				}
				if taxon.Status(n.Props[taxon.KeyStatus]) != taxon.Resolved {
					res++
				}
			}
			if len(ids) < page {
				return nil
			}
			after = ids[len(ids)-1]
		}
	})
	return res, err
}

// Conflicts returns conflicts recorded since the Index was created.
func (idx *Index) Conflicts() []Conflict {
	idx.cmu.Lock()
	defer idx.cmu.Unlock()
	res := make([]Conflict, len(idx.conflicts))
	copy(res, idx.conflicts)
	return res
}

func (idx *Index) record(cc []Conflict) {
	idx.cmu.Lock()
	defer idx.cmu.Unlock()
	for _, c := range cc {
		if _, ok := idx.seen[c]; ok {
			continue
		}
		idx.seen[c] = struct{}{}
		idx.conflicts = append(idx.conflicts, c)
		slog.Warn("Resolution conflict, the earliest taxon wins",
			"kind", c.Kind,
			"value", c.Value,
			"kept", c.Kept,
			"other", c.Other,
			"error", ConflictError(c),
		)
	}
}

// Reader gives read access to index lookups.
type Reader struct {
	r graph.Reader
}

// FindTaxonByID works like Index.FindTaxonByID inside a View.
func (r *Reader) FindTaxonByID(id string) (*Entry, error) {
	return r.find(FieldExternalID, id)
}

// FindTaxonByName works like Index.FindTaxonByName inside a View.
func (r *Reader) FindTaxonByName(name string) (*Entry, error) {
	return r.find(FieldName, name)
}

// Canonical returns the canonical taxon of a node, or nil.
func (r *Reader) Canonical(id graph.NodeID) (*Entry, error) {
	cid, ok, err := canonicalOf(r.r, id)
	if err != nil || !ok {
		return nil, err
	}
	n, err := r.r.Node(cid)
	if err != nil {
		return nil, err
	}
	e := entryOf(n)
	return &e, nil
}

// ClassificationOf follows the CLASSIFIED_AS edge of a collaborator node
// and returns the canonical taxon behind it, or nil while the classified
// record is not resolved.
func (r *Reader) ClassificationOf(id graph.NodeID) (*Entry, error) {
	targets, err := r.r.Outgoing(id, graph.ClassifiedAs)
	if err != nil || len(targets) == 0 {
		return nil, err
	}
	return r.Canonical(targets[0])
}

func (r *Reader) find(field, value string) (*Entry, error) {
	e, ok, err := findCanonical(r.r, field, strings.TrimSpace(value))
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

// canonicalOf follows at most one SAME_AS edge from the node.
func canonicalOf(r graph.Reader, id graph.NodeID) (graph.NodeID, bool, error) {
	n, err := r.Node(id)
	if err != nil {
		return 0, false, err
	}
	if n == nil {
		return 0, false, CorruptionError(id, "indexed node does not exist")
	}
	if n.Props[taxon.KeyCanonical] == "true" {
		return id, true, nil
	}
	targets, err := r.Outgoing(id, graph.SameAs)
	if err != nil {
		return 0, false, err
	}
	for _, t := range targets {
		tn, err := r.Node(t)
		if err != nil {
			return 0, false, err
		}
		if tn == nil {
			return 0, false, CorruptionError(id, "SAME_AS edge to a missing node")
		}
		if tn.Props[taxon.KeyCanonical] == "true" {
			return t, true, nil
		}
	}
	return 0, false, nil
}

// findCanonical returns the earliest canonical taxon reachable from nodes
// indexed under field/value.
func findCanonical(r graph.Reader, field, value string) (Entry, bool, error) {
	var res Entry
	if value == "" {
		return res, false, nil
	}
	ids, err := r.Lookup(field, value)
	if err != nil {
		return res, false, err
	}
	var best graph.NodeID
	for _, id := range ids {
		c, ok, err := canonicalOf(r, id)
		if err != nil {
			return res, false, err
		}
		if ok && (best == 0 || c < best) {
			best = c
		}
	}
	if best == 0 {
		return res, false, nil
	}
	n, err := r.Node(best)
	if err != nil {
		return res, false, err
	}
	return entryOf(n), true, nil
}

func trimmed(t taxon.Taxon) taxon.Taxon {
	t.Name = strings.TrimSpace(t.Name)
	t.ExternalID = strings.TrimSpace(t.ExternalID)
	return t
}
