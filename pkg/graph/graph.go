// Package graph describes the narrow capability GNtaxon needs from a
// graph store: nodes with string properties, exact-match indexes and
// typed directed edges, all inside scoped transactions.
//
// Implementations live in internal/iostore.
package graph

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned by writes that refer to a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrUnknownEdgeKind is returned for edge kinds outside of the known
	// set.
	ErrUnknownEdgeKind = errors.New("unknown edge kind")
)

// NodeID identifies a node. IDs increase monotonically, so a smaller id
// always belongs to an earlier created node.
type NodeID int64

// EdgeKind is the type of a directed edge.
type EdgeKind string

const (
	// SameAs links an alternate taxon to its canonical taxon.
	SameAs EdgeKind = "SAME_AS"
	// SimilarTo is a weaker link that is never followed for canonical
	// lookups.
	SimilarTo EdgeKind = "SIMILAR_TO"
	// ClassifiedAs links collaborator entities to a taxon.
	ClassifiedAs EdgeKind = "CLASSIFIED_AS"
)

// Valid reports whether the kind is one of the known edge kinds.
func (k EdgeKind) Valid() bool {
	switch k {
	case SameAs, SimilarTo, ClassifiedAs:
		return true
	}
	return false
}

// Node is a stored node with its properties.
type Node struct {
	ID    NodeID
	Props map[string]string
}

// Reader gives read access to the store. Reader methods return results
// in ascending NodeID order.
type Reader interface {
	// Node returns the node, or nil if it does not exist.
	Node(id NodeID) (*Node, error)

	// Lookup returns nodes indexed under the exact field/value pair.
	Lookup(field, value string) ([]NodeID, error)

	// Scan returns up to limit distinct nodes indexed under field with
	// ids greater than after.
	Scan(field string, after NodeID, limit int) ([]NodeID, error)

	// Count returns the number of distinct nodes indexed under the field.
	Count(field string) (int, error)

	// Outgoing returns targets of edges of the given kind that start
	// at the node.
	Outgoing(id NodeID, kind EdgeKind) ([]NodeID, error)
}

// Tx is a read-write transaction. Writes that refer to a missing node
// fail with ErrNodeNotFound.
type Tx interface {
	Reader

	CreateNode(props map[string]string) (NodeID, error)
	SetProperty(id NodeID, key, value string) error

	// AddToIndex is idempotent for the same field/value/node triple.
	AddToIndex(id NodeID, field, value string) error

	// CreateEdge is idempotent for the same from/to/kind triple.
	CreateEdge(from, to NodeID, kind EdgeKind) error
}

// Store runs transactions. Update commits all writes of fn atomically,
// or none of them when fn returns an error.
type Store interface {
	Update(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Reader) error) error
	Close() error
}

// CheckEdgeKind returns an error for unknown edge kinds. Backends that
// interpolate kinds into queries must call it.
func CheckEdgeKind(kind EdgeKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownEdgeKind, kind)
	}
	return nil
}
