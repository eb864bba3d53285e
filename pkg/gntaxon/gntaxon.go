// Package gntaxon defines the interfaces of GNtaxon lifecycle operations.
// Implementations live in internal/io* packages.
package gntaxon

import (
	"context"
	"time"

	"github.com/gnames/gntaxon/pkg/filter"
)

// Resolver links raw taxon records to canonical taxa using a chain of
// lookup sources. Re-running Resolve converges to the same end state.
type Resolver interface {
	// Resolve processes all raw records that are not RESOLVED yet.
	// It fails only on storage faults or cancellation, enrichment
	// failures are counted in Stats.
	Resolve(ctx context.Context, opts ...Option) (Stats, error)
}

// Stats summarizes a resolution run.
type Stats struct {
	// Resolved records got a canonical taxon.
	Resolved int

	// NoMatch records were not recognized by any lookup source.
	NoMatch int

	// Errors counts records that could not be looked up because every
	// lookup source failed.
	Errors int

	// Skipped records were blank or excluded by a filter.
	Skipped int

	// Conflicts found during the run. See ioindex.Conflict.
	Conflicts int

	Batches int
	Elapsed time.Duration
}

// Records is the number of processed raw records.
func (s Stats) Records() int {
	return s.Resolved + s.NoMatch + s.Errors + s.Skipped
}

// Options of a single resolution run.
type Options struct {
	BatchSize int
	Filter    filter.Exclude
}

// Option changes Options of a run.
type Option func(*Options)

// OptBatchSize sets the number of records committed in one transaction.
// Non-positive values are ignored.
func OptBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// OptFilter sets a predicate for records that must not be resolved.
func OptFilter(f filter.Exclude) Option {
	return func(o *Options) {
		o.Filter = f
	}
}

// NewOptions applies opts to defaults.
func NewOptions(batchSize int, opts ...Option) Options {
	res := Options{BatchSize: 100}
	if batchSize > 0 {
		res.BatchSize = batchSize
	}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}
