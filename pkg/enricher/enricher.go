// Package enricher defines lookup sources that add identity and lineage
// to a taxon, and the fallback chain that combines them.
package enricher

import (
	"context"

	"github.com/gnames/gntaxon/pkg/taxon"
)

// Enricher adds external id, rank, path, common names, and links to a
// taxon that has at least a name.
//
// Enrich has two outcomes besides a match. If the source does not know the
// taxon, the input is returned unchanged with a nil error. If the source
// cannot be reached, or its answer cannot be parsed, the error is a service
// error (see IsServiceError) and the call may be retried later.
type Enricher interface {
	// Name is a short label used in logs and metrics.
	Name() string

	Enrich(ctx context.Context, t taxon.Taxon) (taxon.Taxon, error)

	// Shutdown releases held resources. It is safe to call more than once.
	Shutdown()
}
