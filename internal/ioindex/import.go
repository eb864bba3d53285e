package ioindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gnames/gntaxon/internal/iotsv"
	"github.com/gnames/gntaxon/pkg/taxon"
)

// columns name the name and id columns of one taxon in an input file.
type columns struct {
	name, id string
}

// layouts of input files, the first one found in the header wins.
// Interaction files carry two taxa per row.
var layouts = [][]columns{
	{{taxon.KeyName, taxon.KeyExternalID}},
	{{"providedTaxonName", "providedTaxonId"}},
	{{"taxonName", "taxonId"}},
	{{"sourceTaxonName", "sourceTaxonId"}, {"targetTaxonName", "targetTaxonId"}},
}

// ImportStats counts imported records.
type ImportStats struct {
	// Read is the number of taxon records found in the file.
	Read int
	// Added records were not stored before.
	Added int
}

// ImportTSV adds raw records from a TSV file, see AddOriginal. Records
// are committed in chunks of the given size.
func (idx *Index) ImportTSV(
	ctx context.Context,
	path string,
	chunk int,
) (ImportStats, error) {
	var res ImportStats
	if chunk <= 0 {
		chunk = 10_000
	}
	r, err := iotsv.Open(path)
	if err != nil {
		return res, err
	}
	defer r.Close()

	cols, ok := layoutOf(r)
	if !ok {
		return res, iotsv.HeaderError(path,
			fmt.Errorf("no taxon name or id columns in %v", r.Header()))
	}

	batch := make([]taxon.Taxon, 0, chunk)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := idx.AddOriginal(ctx, batch)
		if err != nil {
			return err
		}
		res.Added += n
		batch = batch[:0]
		return nil
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if iotsv.IsRowError(err) {
				slog.Warn("Skipping malformed row", "error", err)
				continue
			}
			return res, err
		}
		for _, c := range cols {
			t := taxon.Taxon{Name: row.Get(c.name), ExternalID: row.Get(c.id)}
			if t.Key() == "" {
				continue
			}
			res.Read++
			batch = append(batch, t)
		}
		if len(batch) >= chunk {
			if err = flush(); err != nil {
				return res, err
			}
		}
	}
	return res, flush()
}

func layoutOf(r *iotsv.Reader) ([]columns, bool) {
	for _, l := range layouts {
		for _, c := range l {
			if r.Has(c.name) || r.Has(c.id) {
				return l, true
			}
		}
	}
	return nil, false
}
