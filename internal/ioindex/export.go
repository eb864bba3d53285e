package ioindex

import (
	"context"

	"github.com/gnames/gntaxon/internal/iotsv"
	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/gnames/gntaxon/pkg/taxon"
)

// TaxaHeader is the header of exported taxon files.
var TaxaHeader = []string{
	"id", taxon.KeyName, taxon.KeyRank, taxon.KeyCommonNames, taxon.KeyPath,
	taxon.KeyPathIDs, taxon.KeyPathNames, taxon.KeyExternalURL,
	taxon.KeyThumbnailURL,
}

// MapHeader is the header of exported taxon map files.
var MapHeader = []string{
	"providedTaxonId", "providedTaxonName", "resolvedTaxonId",
	"resolvedTaxonName",
}

const exportPage = 1000

// ExportStats counts exported rows.
type ExportStats struct {
	Taxa    int
	Aliases int
}

// ExportTaxa writes canonical taxa with external ids to taxaPath and the
// mapping of resolved raw records to mapPath. Both files use the layout
// read by the bulk cache, ".gz" paths are compressed.
func (idx *Index) ExportTaxa(
	ctx context.Context,
	taxaPath, mapPath string,
) (ExportStats, error) {
	var res ExportStats
	taxa, err := iotsv.Create(taxaPath, TaxaHeader)
	if err != nil {
		return res, err
	}
	defer taxa.Close()
	aliases, err := iotsv.Create(mapPath, MapHeader)
	if err != nil {
		return res, err
	}
	defer aliases.Close()

	err = idx.View(ctx, func(r *Reader) error {
		err := scan(ctx, r.r, FieldCanonical, func(n *graph.Node) error {
			t := taxon.FromProperties(n.Props)
			if t.ExternalID == "" {
				return nil
			}
			res.Taxa++
			return taxa.Write([]string{
				t.ExternalID, t.Name, t.Rank, t.CommonNames, t.Path,
				t.PathIDs, t.PathNames, t.ExternalURL, t.ThumbnailURL,
			})
		})
		if err != nil {
			return err
		}

		return scan(ctx, r.r, FieldOriginal, func(n *graph.Node) error {
			raw := entryOf(n)
			if raw.Status != taxon.Resolved {
				return nil
			}
			canon, err := r.Canonical(raw.ID)
			if err != nil || canon == nil || canon.Taxon.ExternalID == "" {
				return err
			}
			if raw.Taxon == canon.Taxon {
				return nil
			}
			res.Aliases++
			return aliases.Write([]string{
				raw.Taxon.ExternalID, raw.Taxon.Name,
				canon.Taxon.ExternalID, canon.Taxon.Name,
			})
		})
	})
	if err != nil {
		return res, err
	}
	if err = taxa.Close(); err != nil {
		return res, err
	}
	return res, aliases.Close()
}

func scan(
	ctx context.Context,
	r graph.Reader,
	field string,
	fn func(*graph.Node) error,
) error {
	var after graph.NodeID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ids, err := r.Scan(field, after, exportPage)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		for _, id := range ids {
			n, err := r.Node(id)
			if err != nil {
				return err
			}
			if n == nil {
				return CorruptionError(id, "indexed node does not exist")
			}
			if err = fn(n); err != nil {
				return err
			}
		}
		after = ids[len(ids)-1]
	}
}
