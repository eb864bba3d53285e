// Package ioresolve implements the Resolver interface. It walks raw taxon
// records in the taxon index batch by batch, looks them up with a chain
// of enrichers and links them to canonical taxa.
package ioresolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gntaxon/internal/ioindex"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/corrector"
	"github.com/gnames/gntaxon/pkg/enricher"
	"github.com/gnames/gntaxon/pkg/filter"
	"github.com/gnames/gntaxon/pkg/gntaxon"
	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/gnames/gntaxon/pkg/taxon"
	"golang.org/x/sync/errgroup"
)

// matcher is implemented by enricher.Chain.
type matcher interface {
	Match(ctx context.Context, t taxon.Taxon) (taxon.Taxon, string, error)
}

type resolver struct {
	cfg *config.Config
	idx *ioindex.Index
	en  enricher.Enricher
	cor corrector.Corrector
}

// New creates a Resolver. A nil corrector leaves names as they are.
func New(
	cfg *config.Config,
	idx *ioindex.Index,
	en enricher.Enricher,
	cor corrector.Corrector,
) gntaxon.Resolver {
	return &resolver{cfg: cfg, idx: idx, en: en, cor: cor}
}

// outcome is the enrichment result of one raw record.
type outcome struct {
	raw    ioindex.Entry
	res    taxon.Taxon
	by     string
	status taxon.Status
}

// run keeps counters of one Resolve call.
type run struct {
	stats     gntaxon.Stats
	start     time.Time
	lastShown int
	bar       *pb.ProgressBar
}

func (r *resolver) Resolve(
	ctx context.Context,
	opts ...gntaxon.Option,
) (gntaxon.Stats, error) {
	o := gntaxon.NewOptions(r.cfg.Resolve.BatchSize, opts...)
	st := &run{start: time.Now()}
	conflicts := len(r.idx.Conflicts())

	total, err := r.idx.CountPending(ctx)
	if err != nil {
		return st.stats, err
	}
	slog.Info("Starting resolution",
		"pending", humanize.Comma(int64(total)),
		"batchSize", o.BatchSize,
		"jobs", r.jobs(),
	)
	if r.cfg.Resolve.ProgressBar {
		st.bar = newProgressBar(total)
		defer st.bar.Finish()
	}

	var after graph.NodeID
	for done := false; !done; {
		if err = ctx.Err(); err != nil {
			return st.finish(r.idx, conflicts), CanceledError(st.stats.Records(), err)
		}
		var recs []ioindex.Entry
		for len(recs) < o.BatchSize {
			var page []ioindex.Entry
			page, after, err = r.idx.Unresolved(ctx, after, o.BatchSize-len(recs))
			if err != nil {
				return st.finish(r.idx, conflicts), err
			}
			if after == 0 {
				done = true
				break
			}
			recs = append(recs, page...)
		}
		if len(recs) == 0 {
			break
		}

		st.stats.Batches++
		if err = r.batch(ctx, st, o, recs); err != nil {
			if ctx.Err() != nil {
				err = CanceledError(st.stats.Records(), err)
			}
			return st.finish(r.idx, conflicts), err
		}
		r.progress(st)
	}

	res := st.finish(r.idx, conflicts)
	slog.Info("Resolution finished",
		"resolved", humanize.Comma(int64(res.Resolved)),
		"noMatch", humanize.Comma(int64(res.NoMatch)),
		"errors", res.Errors,
		"skipped", res.Skipped,
		"conflicts", res.Conflicts,
		"batches", res.Batches,
		"rate", RateMsg(res),
		"duration", gnfmt.TimeString(res.Elapsed.Seconds()),
	)
	return res, nil
}

// batch enriches records concurrently and commits their outcomes in one
// transaction.
func (r *resolver) batch(
	ctx context.Context,
	st *run,
	o gntaxon.Options,
	recs []ioindex.Entry,
) error {
	out := make([]outcome, len(recs))
	batchNum := st.stats.Batches
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs())
	for i := range recs {
		out[i] = outcome{raw: recs[i]}
		q, ok := r.query(recs[i], o.Filter)
		if !ok {
			continue
		}
		g.Go(func() error {
			return r.enrich(gCtx, batchNum, q, &out[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var stats gntaxon.Stats
	err := r.idx.Update(ctx, func(w *ioindex.Writer) error {
		stats = gntaxon.Stats{}
		for _, v := range out {
			switch v.status {
			case taxon.Resolved:
				e, err := w.ResolveOriginal(v.raw.ID, v.res, v.by)
				if err != nil {
					return err
				}
				if err = linkRelated(w, e, v.res); err != nil {
					return err
				}
				stats.Resolved++
			case taxon.NoMatch:
				if err := w.MarkStatus(v.raw.ID, taxon.NoMatch, ""); err != nil {
					return err
				}
				stats.NoMatch++
			case taxon.ResolutionError:
				err := w.MarkStatus(v.raw.ID, taxon.ResolutionError, "")
				if err != nil {
					return err
				}
				stats.Errors++
			default:
				stats.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	st.stats.Resolved += stats.Resolved
	st.stats.NoMatch += stats.NoMatch
	st.stats.Errors += stats.Errors
	st.stats.Skipped += stats.Skipped
	if st.bar != nil {
		st.bar.Add(len(recs))
	}
	return nil
}

// linkRelated makes ids the enricher found at other providers alternates
// of the canonical taxon.
func linkRelated(w *ioindex.Writer, e ioindex.Entry, res taxon.Taxon) error {
	for _, id := range taxon.SplitPath(res.RelatedIDs) {
		alt := taxon.Taxon{Name: res.Name, ExternalID: id}
		if _, err := w.ConnectTaxa(alt, e.ID, graph.SameAs); err != nil {
			return err
		}
	}
	return nil
}

// query prepares the lookup of a raw record. It returns false for records
// that must be skipped.
func (r *resolver) query(e ioindex.Entry, exclude filter.Exclude) (taxon.Taxon, bool) {
	q := e.Taxon
	if r.cor != nil {
		q.Name = r.cor.Correct(q.Name)
	}
	if q.Key() == "" {
		slog.Warn("Skipping blank taxon record",
			"node", e.ID, "error", ioindex.InputError(e.Taxon.Name))
		return q, false
	}
	if exclude != nil && exclude(q) {
		slog.Debug("Skipping excluded taxon record",
			"node", e.ID, "name", q.Name, "externalId", q.ExternalID)
		return q, false
	}
	return q, true
}

// enrich looks a record up. Service errors are logged and do not stop
// the batch.
func (r *resolver) enrich(
	ctx context.Context,
	batch int,
	q taxon.Taxon,
	out *outcome,
) error {
	var res taxon.Taxon
	var by string
	var err error
	if m, ok := r.en.(matcher); ok {
		res, by, err = m.Match(ctx, q)
	} else {
		res, err = r.en.Enrich(ctx, q)
		by = r.en.Name()
	}

	switch {
	case err != nil && enricher.IsServiceError(err):
		slog.Error("Cannot resolve taxon",
			"name", q.Name,
			"externalId", q.ExternalID,
			"batch", batch,
			"error", err,
		)
		out.status = taxon.ResolutionError
	case err != nil:
		return err
	case res.IsEnrichedFrom(q):
		out.res = res
		out.by = by
		out.status = taxon.Resolved
	default:
		out.status = taxon.NoMatch
	}
	return nil
}

func (r *resolver) progress(st *run) {
	every := r.cfg.Resolve.ProgressEvery
	n := st.stats.Records()
	if every <= 0 || n/every == st.lastShown/every {
		return
	}
	st.lastShown = n
	cur := st.stats
	cur.Elapsed = time.Since(st.start)
	slog.Info("Resolution progress",
		"records", humanize.Comma(int64(n)),
		"resolved", humanize.Comma(int64(cur.Resolved)),
		"rate", RateMsg(cur),
	)
}

func (r *resolver) jobs() int {
	if r.cfg.JobsNumber < 1 {
		return 1
	}
	return r.cfg.JobsNumber
}

func (st *run) finish(idx *ioindex.Index, conflictsBefore int) gntaxon.Stats {
	st.stats.Conflicts = len(idx.Conflicts()) - conflictsBefore
	st.stats.Elapsed = time.Since(st.start)
	return st.stats
}
