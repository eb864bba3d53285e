package ioindex

import (
	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/gnames/gntaxon/pkg/taxon"
)

// Writer changes the index inside a transaction started by Index.Update.
type Writer struct {
	tx        graph.Tx
	conflicts []Conflict
}

// Reader returns lookups that see writes of the current transaction.
func (w *Writer) Reader() *Reader {
	return &Reader{r: w.tx}
}

// GetOrCreateTaxon looks the record up by its external id if it has one,
// by its exact name otherwise, and returns the canonical taxon it finds.
// When there is none, it creates a canonical taxon indexed by both keys.
func (w *Writer) GetOrCreateTaxon(t taxon.Taxon) (Entry, error) {
	t = trimmed(t)
	field, value := FieldName, t.Name
	if t.ExternalID != "" {
		field, value = FieldExternalID, t.ExternalID
	}
	if value == "" {
		return Entry{}, InputError(t.Key())
	}

	e, ok, err := findCanonical(w.tx, field, value)
	if err != nil || ok {
		return e, err
	}
	return w.create(t)
}

func (w *Writer) create(t taxon.Taxon) (Entry, error) {
	props := t.Properties()
	props[taxon.KeyCanonical] = "true"
	props[taxon.KeyUUID] = t.UUID().String()
	id, err := w.tx.CreateNode(props)
	if err != nil {
		return Entry{}, err
	}
	if err = w.indexCanonical(id, t); err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:        id,
		Taxon:     t,
		Canonical: true,
		UUID:      props[taxon.KeyUUID],
	}, nil
}

func (w *Writer) indexCanonical(id graph.NodeID, t taxon.Taxon) error {
	if err := w.tx.AddToIndex(id, FieldCanonical, t.Key()); err != nil {
		return err
	}
	if t.ExternalID != "" {
		if err := w.tx.AddToIndex(id, FieldExternalID, t.ExternalID); err != nil {
			return err
		}
	}
	if t.Name != "" {
		if err := w.checkName(id, t.Name); err != nil {
			return err
		}
		if err := w.tx.AddToIndex(id, FieldName, t.Name); err != nil {
			return err
		}
	}
	return nil
}

// ConnectTaxa links an alternate record to a canonical taxon, creating
// the alternate node when it is not linked yet.
//
// For SAME_AS links the alternate becomes findable by its id and name. If
// its id already belongs to another canonical taxon, the earlier created
// one wins and the conflict is recorded. The returned entry is the
// canonical taxon the alternate ends up with. SIMILAR_TO alternates are
// indexed only as "similar" and never change lookups.
func (w *Writer) ConnectTaxa(
	alt taxon.Taxon,
	canonicalID graph.NodeID,
	kind graph.EdgeKind,
) (Entry, error) {
	if err := graph.CheckEdgeKind(kind); err != nil {
		return Entry{}, err
	}
	canon, err := w.tx.Node(canonicalID)
	if err != nil {
		return Entry{}, err
	}
	if canon == nil || canon.Props[taxon.KeyCanonical] != "true" {
		return Entry{}, CorruptionError(canonicalID, "not a canonical taxon")
	}
	alt = trimmed(alt)
	if alt.Key() == "" {
		return Entry{}, InputError(alt.Key())
	}
	if ce := entryOf(canon); ce.Taxon.Key() == alt.Key() {
		return ce, nil
	}

	found, err := w.linkedAlternate(alt, canonicalID, kind)
	if err != nil {
		return Entry{}, err
	}
	if found {
		return entryOf(canon), nil
	}

	props := alt.Properties()
	props[taxon.KeyUUID] = alt.UUID().String()
	altID, err := w.tx.CreateNode(props)
	if err != nil {
		return Entry{}, err
	}
	winner, err := w.link(altID, alt, canonicalID, kind)
	if err != nil {
		return Entry{}, err
	}
	n, err := w.tx.Node(winner)
	if err != nil {
		return Entry{}, err
	}
	return entryOf(n), nil
}

// linkedAlternate reports whether a node with the alternate's key already
// has an edge of the kind to the canonical taxon.
func (w *Writer) linkedAlternate(
	alt taxon.Taxon,
	canonicalID graph.NodeID,
	kind graph.EdgeKind,
) (bool, error) {
	field, value := FieldName, alt.Name
	switch {
	case kind != graph.SameAs:
		field, value = FieldSimilar, alt.Key()
	case alt.ExternalID != "":
		field, value = FieldExternalID, alt.ExternalID
	}
	ids, err := w.tx.Lookup(field, value)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		targets, err := w.tx.Outgoing(id, kind)
		if err != nil {
			return false, err
		}
		for _, t := range targets {
			if t == canonicalID {
				return true, nil
			}
		}
	}
	return false, nil
}

// link indexes an existing alternate node and adds its edge. It returns
// the canonical taxon the node is linked to.
func (w *Writer) link(
	altID graph.NodeID,
	alt taxon.Taxon,
	canonicalID graph.NodeID,
	kind graph.EdgeKind,
) (graph.NodeID, error) {
	if kind != graph.SameAs {
		if err := w.tx.AddToIndex(altID, FieldSimilar, alt.Key()); err != nil {
			return 0, err
		}
		return canonicalID, w.tx.CreateEdge(altID, canonicalID, kind)
	}

	winner := canonicalID
	if alt.ExternalID != "" {
		other, ok, err := findCanonical(w.tx, FieldExternalID, alt.ExternalID)
		if err != nil {
			return 0, err
		}
		if ok && other.ID != canonicalID {
			w.conflict(ConflictExternalID, alt.ExternalID, other.ID, canonicalID)
			if canonicalID < other.ID {
				err = w.tx.AddToIndex(canonicalID, FieldExternalID, alt.ExternalID)
				if err != nil {
					return 0, err
				}
			} else {
				winner = other.ID
			}
		}
		if err = w.tx.AddToIndex(altID, FieldExternalID, alt.ExternalID); err != nil {
			return 0, err
		}
	}
	if alt.Name != "" {
		if err := w.checkName(winner, alt.Name); err != nil {
			return 0, err
		}
		if err := w.tx.AddToIndex(altID, FieldName, alt.Name); err != nil {
			return 0, err
		}
	}
	if altID == winner {
		return winner, nil
	}
	return winner, w.tx.CreateEdge(altID, winner, graph.SameAs)
}

// ResolveOriginal stores the enrichment result of a raw record and marks
// it RESOLVED.
//
// A raw record that already is the taxon it was resolved to (same name,
// no other id, no canonical taxon yet) is promoted to canonical in place.
// Otherwise it is linked to the canonical taxon of the result.
func (w *Writer) ResolveOriginal(
	rawID graph.NodeID,
	enriched taxon.Taxon,
	by string,
) (Entry, error) {
	n, err := w.tx.Node(rawID)
	if err != nil {
		return Entry{}, err
	}
	if n == nil {
		return Entry{}, CorruptionError(rawID, "raw record does not exist")
	}
	raw := entryOf(n)
	enriched = trimmed(enriched)
	if enriched.Key() == "" {
		return Entry{}, InputError(raw.Taxon.Key())
	}

	if raw.Canonical {
		return raw, w.setStatus(rawID, taxon.Resolved, by)
	}

	if w.promotable(raw.Taxon, enriched) {
		field, value := FieldName, enriched.Name
		if enriched.ExternalID != "" {
			field, value = FieldExternalID, enriched.ExternalID
		}
		_, exists, err := findCanonical(w.tx, field, value)
		if err != nil {
			return Entry{}, err
		}
		if !exists {
			return w.promote(rawID, enriched, by)
		}
	}

	canon, err := w.GetOrCreateTaxon(enriched)
	if err != nil {
		return Entry{}, err
	}
	winner, err := w.link(rawID, raw.Taxon, canon.ID, graph.SameAs)
	if err != nil {
		return Entry{}, err
	}
	if err = w.setStatus(rawID, taxon.Resolved, by); err != nil {
		return Entry{}, err
	}
	if winner == canon.ID {
		return canon, nil
	}
	wn, err := w.tx.Node(winner)
	if err != nil {
		return Entry{}, err
	}
	return entryOf(wn), nil
}

func (w *Writer) promotable(raw, enriched taxon.Taxon) bool {
	if raw.Name == "" || raw.Name != enriched.Name {
		return false
	}
	return raw.ExternalID == "" || raw.ExternalID == enriched.ExternalID
}

func (w *Writer) promote(
	id graph.NodeID,
	t taxon.Taxon,
	by string,
) (Entry, error) {
	props := t.Properties()
	props[taxon.KeyCanonical] = "true"
	props[taxon.KeyUUID] = t.UUID().String()
	props[taxon.KeyStatus] = string(taxon.Resolved)
	if by != "" {
		props[taxon.KeyResolvedBy] = by
	}
	for k, v := range props {
		if err := w.tx.SetProperty(id, k, v); err != nil {
			return Entry{}, err
		}
	}
	if err := w.indexCanonical(id, t); err != nil {
		return Entry{}, err
	}
	n, err := w.tx.Node(id)
	if err != nil {
		return Entry{}, err
	}
	return entryOf(n), nil
}

// Classify creates a collaborator node, such as a specimen, with a
// CLASSIFIED_AS edge to a taxon node. The taxon node may be a raw record,
// its canonical taxon is reached later through ClassificationOf.
func (w *Writer) Classify(
	props map[string]string,
	taxonID graph.NodeID,
) (graph.NodeID, error) {
	n, err := w.tx.Node(taxonID)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, CorruptionError(taxonID, "classified taxon does not exist")
	}
	clean := make(map[string]string, len(props))
	for k, v := range props {
		if k != taxon.KeyCanonical && k != taxon.KeyStatus {
			clean[k] = v
		}
	}
	id, err := w.tx.CreateNode(clean)
	if err != nil {
		return 0, err
	}
	return id, w.tx.CreateEdge(id, taxonID, graph.ClassifiedAs)
}

// MarkStatus sets the resolution status of a raw record.
func (w *Writer) MarkStatus(
	rawID graph.NodeID,
	status taxon.Status,
	by string,
) error {
	return w.setStatus(rawID, status, by)
}

func (w *Writer) setStatus(id graph.NodeID, status taxon.Status, by string) error {
	if err := w.tx.SetProperty(id, taxon.KeyStatus, string(status)); err != nil {
		return err
	}
	if by == "" {
		return nil
	}
	return w.tx.SetProperty(id, taxon.KeyResolvedBy, by)
}

func (w *Writer) addOriginal(t taxon.Taxon) (bool, error) {
	t = trimmed(t)
	key := t.Name
	if key == "" {
		key = t.ExternalID
	}
	if key == "" {
		return false, nil
	}
	ids, err := w.tx.Lookup(FieldOriginal, key)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		n, err := w.tx.Node(id)
		if err != nil {
			return false, err
		}
		if n == nil {
			return false, CorruptionError(id, "indexed node does not exist")
		}
		if n.Props[taxon.KeyName] == t.Name &&
			n.Props[taxon.KeyExternalID] == t.ExternalID {
			return false, nil
		}
	}

	props := t.Properties()
	props[taxon.KeyStatus] = string(taxon.Unresolved)
	id, err := w.tx.CreateNode(props)
	if err != nil {
		return false, err
	}
	return true, w.tx.AddToIndex(id, FieldOriginal, key)
}

// checkName records a conflict when the name already belongs to another
// canonical taxon.
func (w *Writer) checkName(id graph.NodeID, name string) error {
	e, ok, err := findCanonical(w.tx, FieldName, name)
	if err != nil || !ok || e.ID == id {
		return err
	}
	w.conflict(ConflictName, name, e.ID, id)
	return nil
}

func (w *Writer) conflict(kind ConflictKind, value string, a, b graph.NodeID) {
	if a > b {
		a, b = b, a
	}
	w.conflicts = append(w.conflicts, Conflict{
		Kind:  kind,
		Value: value,
		Kept:  a,
		Other: b,
	})
}
