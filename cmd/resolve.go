/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gntaxon/internal/iocache"
	"github.com/gnames/gntaxon/internal/iofs"
	"github.com/gnames/gntaxon/internal/ioindex"
	"github.com/gnames/gntaxon/internal/iometrics"
	"github.com/gnames/gntaxon/internal/ioresolve"
	"github.com/gnames/gntaxon/internal/iostore"
	"github.com/gnames/gntaxon/internal/ioweb"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/corrector"
	"github.com/gnames/gntaxon/pkg/enricher"
	"github.com/gnames/gntaxon/pkg/filter"
	"github.com/gnames/gntaxon/pkg/gntaxon"
	"github.com/gnames/gntaxon/pkg/parserpool"
	"github.com/spf13/cobra"
)

// getResolveCmd returns the resolve command.
func getResolveCmd() *cobra.Command {
	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Link unresolved taxon records to canonical taxa",
		Long: `Resolve raw taxon records that are not linked to a canonical taxon yet.

Resolution runs in two passes. The first pass uses only the offline taxon
cache (cache.taxon_path and cache.map_path), iNaturalist ids are left for
the second pass. The second pass tries the lookup sources listed in
resolve.enrichers in order, and stops at the first one that knows the
taxon.

Records without a match are marked NO_MATCH, records that could not be
looked up because services failed are marked RESOLUTION_ERROR. Both are
tried again on the next run.

Examples:
  # both passes
  gntaxon resolve

  # offline cache only
  gntaxon resolve --cache-only

  # more workers, larger transactions
  gntaxon resolve -j 16 -b 500 --progress-bar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, storeOpts, jobsOpts, batchSizeOpts,
				cacheOnlyOpts, progressBarOpts)
			err := runResolve(cmd.Context())
			if err != nil {
				printError(err)
			}
			return err
		},
	}

	storeFlag(resolveCmd)
	resolveCmd.Flags().IntP("jobs", "j", 0, "number of concurrent lookups")
	resolveCmd.Flags().IntP("batch-size", "b", 0,
		"number of records committed in one transaction")
	resolveCmd.Flags().Bool("cache-only", false,
		"resolve with the offline taxon cache only")
	resolveCmd.Flags().Bool("progress-bar", false, "show a progress bar")
	return resolveCmd
}

// pass is one resolution run with its own lookup sources.
type pass struct {
	name   string
	chain  *enricher.Chain
	filter filter.Exclude
}

func runResolve(ctx context.Context) error {
	store, err := iostore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	idx := ioindex.New(store)
	gn.Info("Taxon store: <em>%s</em>", iostore.Target(cfg))

	cor, closeCor, err := newCorrector(cfg)
	if err != nil {
		return err
	}
	defer closeCor()

	passes, err := resolvePasses(cfg)
	if err != nil {
		return err
	}

	total := gntaxon.Stats{}
	for _, p := range passes {
		gn.Info("Resolving with <em>%s</em>", p.name)
		r := ioresolve.New(cfg, idx, p.chain, cor)
		st, err := r.Resolve(ctx, gntaxon.OptFilter(p.filter))
		p.chain.Shutdown()
		if err != nil {
			return err
		}
		printStats(p.name, st)
		total = addStats(total, st)

		if path := cfg.Resolve.MetricsPath; path != "" {
			if err = iometrics.Write(path, total, callsOf(passes)); err != nil {
				return err
			}
		}
	}

	for _, c := range idx.Conflicts() {
		slog.Warn("Conflict needs review",
			"kind", c.Kind, "value", c.Value, "kept", c.Kept, "other", c.Other)
	}
	return nil
}

// resolvePasses returns the cache pass, if the cache is configured, and
// the full chain pass unless only the cache is requested.
func resolvePasses(cfg *config.Config) ([]pass, error) {
	var res []pass
	cache, err := newCache(cfg)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		res = append(res, pass{
			name:   "taxon cache",
			chain:  enricher.NewChain(cache),
			filter: filter.ForCachePass(),
		})
	}
	if cfg.Resolve.CacheOnly {
		if cache == nil {
			gn.Warn("<warn>Taxon cache files are not configured</warn>")
		}
		return res, nil
	}

	client := ioweb.NewClient(cfg.Web)
	var members []enricher.Enricher
	for _, name := range cfg.Resolve.Enrichers {
		if name == config.EnricherCache {
			if cache != nil {
				members = append(members, cache)
			}
			continue
		}
		en, err := ioweb.New(name, cfg.Web, client)
		if err != nil {
			return nil, err
		}
		members = append(members, en)
	}
	ch := enricher.NewChain(members...)
	slog.Info("Lookup sources", "enrichers", ch.Members())
	res = append(res, pass{
		name:  "all lookup sources",
		chain: ch,
		filter: filter.Any(
			filter.KnownBadNames(),
			filter.Prefixes(cfg.Resolve.ExcludePrefixes...),
		),
	})
	return res, nil
}

func newCache(cfg *config.Config) (*iocache.Cache, error) {
	if cfg.Cache.TaxonPath == "" || cfg.Cache.MapPath == "" {
		return nil, nil
	}
	return iocache.New(cfg.Cache.TaxonPath, cfg.Cache.MapPath)
}

func newCorrector(cfg *config.Config) (corrector.Corrector, func(), error) {
	var fixes map[string]string
	if path := cfg.Resolve.CorrectionsPath; path != "" {
		var err error
		if fixes, err = iofs.LoadCorrections(path); err != nil {
			return nil, nil, err
		}
		slog.Info("Name corrections loaded", "file", path, "count", len(fixes))
	}
	pool := parserpool.NewPool(cfg.JobsNumber)
	return corrector.New(pool, fixes), pool.Close, nil
}

func callsOf(passes []pass) []iometrics.Calls {
	var res []iometrics.Calls
	for _, p := range passes {
		calls := p.chain.Calls()
		for i, name := range p.chain.Members() {
			res = append(res, iometrics.Calls{Enricher: name, Count: calls[i]})
		}
	}
	return res
}

func addStats(a, b gntaxon.Stats) gntaxon.Stats {
	a.Resolved += b.Resolved
	a.NoMatch += b.NoMatch
	a.Errors += b.Errors
	a.Skipped += b.Skipped
	a.Conflicts += b.Conflicts
	a.Batches += b.Batches
	a.Elapsed += b.Elapsed
	return a
}

func printStats(name string, st gntaxon.Stats) {
	fmt.Printf(`
Pass: %s
  resolved:  %s
  no match:  %s
  errors:    %s
  skipped:   %s
  conflicts: %s
  rate:      %s
  duration:  %s
`,
		name,
		humanize.Comma(int64(st.Resolved)),
		humanize.Comma(int64(st.NoMatch)),
		humanize.Comma(int64(st.Errors)),
		humanize.Comma(int64(st.Skipped)),
		humanize.Comma(int64(st.Conflicts)),
		ioresolve.RateMsg(st),
		gnfmt.TimeString(st.Elapsed.Seconds()),
	)
}
