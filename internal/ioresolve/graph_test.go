package ioresolve_test

import (
	"context"
	"testing"

	"github.com/gnames/gntaxon/internal/ioindex"
	"github.com/gnames/gntaxon/internal/ioresolve"
	"github.com/gnames/gntaxon/internal/iostore/memstore"
	"github.com/gnames/gntaxon/pkg/corrector"
	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/gnames/gntaxon/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveGraph checks the whole graph after a mixed run: every
// canonical key is unique, canonical taxa have no SAME_AS edges, and
// every resolved record or classified specimen reaches a canonical taxon
// in at most one SAME_AS hop.
func TestResolveGraph(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	idx := ioindex.New(store)
	_, err := idx.AddOriginal(ctx, []taxon.Taxon{
		{Name: "Homo sapiens"},
		{Name: "Homo sapiens Linnaeus, 1758"},
		{Name: "Homo sapiens", ExternalID: "GBIF:2436436"},
		{Name: "Enhydra lutris"},
		{Name: "Heterotheca", ExternalID: "INAT_TAXON:58831"},
		{Name: "ThemFishes"},
	})
	require.NoError(t, err)

	raw, _, err := idx.Unresolved(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, raw, 6)
	specimens := make(map[graph.NodeID]graph.NodeID)
	err = idx.Update(ctx, func(w *ioindex.Writer) error {
		for _, v := range raw {
			id, err := w.Classify(map[string]string{
				"catalogNumber": "MVZ:" + v.Taxon.Name,
				"canonical":     "true",
			}, v.ID)
			if err != nil {
				return err
			}
			specimens[id] = v.ID
		}
		return nil
	})
	require.NoError(t, err)

	src := newSource()
	src.data["GBIF:2436436"] = taxon.Taxon{
		Name:       "Homo sapiens",
		ExternalID: "GBIF:2436436",
		Path:       homo.Path,
	}
	withRelated := otter
	withRelated.RelatedIDs = "GBIF:2433670 | NCBI:34882"
	src.data["Enhydra lutris"] = withRelated
	cor := corrector.New(nil, map[string]string{
		"Homo sapiens Linnaeus, 1758": "Homo sapiens",
	})
	r := ioresolve.New(newConfig(t), idx, src, cor)
	stats, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Resolved)
	assert.Equal(t, 1, stats.NoMatch)
	assert.Equal(t, 1, stats.Conflicts)

	err = store.View(ctx, func(g graph.Reader) error {
		canon, err := g.Scan(ioindex.FieldCanonical, 0, 1000)
		require.NoError(t, err)
		assert.Len(t, canon, 4)
		keys := make(map[string]graph.NodeID)
		for _, id := range canon {
			n, err := g.Node(id)
			require.NoError(t, err)
			require.NotNil(t, n)
			assert.Equal(t, "true", n.Props[taxon.KeyCanonical])
			key := taxon.FromProperties(n.Props).Key()
			_, dup := keys[key]
			assert.False(t, dup, key)
			keys[key] = id

			out, err := g.Outgoing(id, graph.SameAs)
			require.NoError(t, err)
			assert.Empty(t, out, key)
		}

		originals, err := g.Scan(ioindex.FieldOriginal, 0, 1000)
		require.NoError(t, err)
		for _, id := range originals {
			n, err := g.Node(id)
			require.NoError(t, err)
			if taxon.Status(n.Props[taxon.KeyStatus]) != taxon.Resolved {
				continue
			}
			_, ok := oneHop(t, g, id)
			assert.True(t, ok, n.Props[taxon.KeyName])
		}
		return nil
	})
	require.NoError(t, err)

	for spec, rawID := range specimens {
		res, err := idx.ClassificationOf(ctx, spec)
		require.NoError(t, err)
		var want *ioindex.Entry
		err = idx.View(ctx, func(r *ioindex.Reader) error {
			want, err = r.Canonical(rawID)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, want, res)
	}

	tests := []struct {
		msg  string
		name string
		id   string
		res  string
	}{
		{"promoted", "Homo sapiens", "", "EOL:327955"},
		{"corrected spelling", "Homo sapiens Linnaeus, 1758", "", "EOL:327955"},
		{"colliding name keeps own id", "", "GBIF:2436436", "GBIF:2436436"},
		{"related id", "", "NCBI:34882", "INAT_TAXON:41860"},
		{"inaturalist", "", "INAT_TAXON:58831", "INAT_TAXON:58831"},
		{"no match", "ThemFishes", "", ""},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var e *ioindex.Entry
			if v.id != "" {
				e, err = idx.FindTaxonByID(ctx, v.id)
			} else {
				e, err = idx.FindTaxonByName(ctx, v.name)
			}
			require.NoError(t, err)
			if v.res == "" {
				assert.Nil(t, e)
				return
			}
			require.NotNil(t, e)
			assert.True(t, e.Canonical)
			assert.Equal(t, v.res, e.Taxon.ExternalID)
		})
	}
}

// oneHop returns the canonical node reached from id without following
// more than one SAME_AS edge.
func oneHop(t *testing.T, g graph.Reader, id graph.NodeID) (graph.NodeID, bool) {
	n, err := g.Node(id)
	require.NoError(t, err)
	if n.Props[taxon.KeyCanonical] == "true" {
		return id, true
	}
	out, err := g.Outgoing(id, graph.SameAs)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 1)
	for _, v := range out {
		tn, err := g.Node(v)
		require.NoError(t, err)
		if tn.Props[taxon.KeyCanonical] == "true" {
			return v, true
		}
	}
	return 0, false
}
