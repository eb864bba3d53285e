package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gnames/gntaxon/internal/iocache"
	"github.com/gnames/gntaxon/internal/ioindex"
	"github.com/gnames/gntaxon/internal/iostore"
	"github.com/gnames/gntaxon/internal/iotsv"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homoPath = "Animalia | Chordata | Mammalia | Primates | Hominidae | Homo | Homo sapiens"

func writeTSV(t *testing.T, dir, name string, header []string, rows ...[]string) string {
	path := filepath.Join(dir, name)
	w, err := iotsv.Create(path, header)
	require.NoError(t, err)
	for _, v := range rows {
		require.NoError(t, w.Write(v))
	}
	require.NoError(t, w.Close())
	return path
}

// testConfig sets the package configuration to a SQLite store and a
// small taxon cache in a temporary home.
func testConfig(t *testing.T, opts ...config.Option) string {
	home := t.TempDir()
	taxa := writeTSV(t, home, "taxa.tsv.gz", ioindex.TaxaHeader,
		[]string{"EOL:327955", "Homo sapiens", "species", "", homoPath, "", "", "", ""},
	)
	aliases := writeTSV(t, home, "map.tsv.gz", ioindex.MapHeader,
		[]string{"", "Man", "EOL:327955", "Homo sapiens"},
	)
	cfg = config.New()
	cfg.Update(append([]config.Option{
		config.OptHomeDir(home),
		config.OptStoreType("sqlite"),
		config.OptStoreSQLitePath(filepath.Join(home, "taxa.sqlite")),
		config.OptCacheTaxonPath(taxa),
		config.OptCacheMapPath(aliases),
		config.OptJobsNumber(2),
	}, opts...))
	return home
}

func TestResolvePasses(t *testing.T) {
	tests := []struct {
		msg     string
		opts    []config.Option
		passes  []string
		members [][]string
	}{
		{
			msg:    "both passes",
			passes: []string{"taxon cache", "all lookup sources"},
			members: [][]string{
				{"cache"},
				{"cache", "gnverifier", "gbif", "inaturalist", "eol", "wikidata"},
			},
		},
		{
			msg:     "cache only",
			opts:    []config.Option{config.OptResolveCacheOnly(true)},
			passes:  []string{"taxon cache"},
			members: [][]string{{"cache"}},
		},
		{
			msg: "custom enrichers",
			opts: []config.Option{
				config.OptResolveEnrichers([]string{"cache", "gbif"}),
			},
			passes:  []string{"taxon cache", "all lookup sources"},
			members: [][]string{{"cache"}, {"cache", "gbif"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			testConfig(t, tt.opts...)
			res, err := resolvePasses(cfg)
			require.NoError(t, err)
			var passes []string
			var members [][]string
			for _, p := range res {
				passes = append(passes, p.name)
				members = append(members, p.chain.Members())
			}
			assert.Equal(t, tt.passes, passes)
			assert.Equal(t, tt.members, members)
		})
	}
}

func TestResolvePassesWithoutCache(t *testing.T) {
	cfg = config.New()
	cfg.Update([]config.Option{config.OptResolveEnrichers([]string{"cache", "eol"})})
	res, err := resolvePasses(cfg)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, []string{"eol"}, res[0].chain.Members())

	cfg.Update([]config.Option{config.OptResolveCacheOnly(true)})
	res, err = resolvePasses(cfg)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestExportPaths(t *testing.T) {
	c := config.New()
	c.Update([]config.Option{config.OptHomeDir("/home/user")})
	dir := config.CacheDir("/home/user")

	taxa, aliases := exportPaths(c, nil)
	assert.Equal(t, filepath.Join(dir, "taxonCache.tsv.gz"), taxa)
	assert.Equal(t, filepath.Join(dir, "taxonMap.tsv.gz"), aliases)

	taxa, aliases = exportPaths(c, []string{"taxa.tsv"})
	assert.Equal(t, "taxa.tsv", taxa)
	assert.Equal(t, filepath.Join(dir, "taxonMap.tsv.gz"), aliases)

	taxa, aliases = exportPaths(c, []string{"taxa.tsv", "map.tsv"})
	assert.Equal(t, "taxa.tsv", taxa)
	assert.Equal(t, "map.tsv", aliases)
}

func TestIngestResolveExport(t *testing.T) {
	ctx := context.Background()
	home := testConfig(t, config.OptResolveCacheOnly(true))
	input := writeTSV(t, home, "input.tsv", []string{"name", "externalId"},
		[]string{"Homo sapiens", ""},
		[]string{"Man", ""},
		[]string{"ThemFishes", ""},
		[]string{"Heterotheca grandiflora", "INAT_TAXON:58831"},
	)

	require.NoError(t, runIngest(ctx, []string{input, input}))
	require.NoError(t, runResolve(ctx))

	taxaPath := filepath.Join(home, "out", "taxa.tsv.gz")
	mapPath := filepath.Join(home, "out", "map.tsv")
	require.Error(t, runExport(ctx, taxaPath, mapPath))
	taxaPath = filepath.Join(home, "taxa-out.tsv.gz")
	mapPath = filepath.Join(home, "map-out.tsv")
	require.NoError(t, runExport(ctx, taxaPath, mapPath))

	cache, err := iocache.New(taxaPath, mapPath)
	require.NoError(t, err)
	res, err := cache.Enrich(ctx, taxon.Taxon{Name: "Man"})
	require.NoError(t, err)
	assert.Equal(t, "EOL:327955", res.ExternalID)
	assert.Equal(t, homoPath, res.Path)

	store, err := iostore.Open(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()
	idx := ioindex.New(store)

	n, err := idx.CountOriginal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	left, _, err := idx.Unresolved(ctx, 0, 10)
	require.NoError(t, err)
	status := make(map[string]taxon.Status)
	for _, v := range left {
		status[v.Taxon.Name] = v.Status
	}
	assert.Equal(t, map[string]taxon.Status{
		"ThemFishes":              taxon.NoMatch,
		"Heterotheca grandiflora": taxon.Unresolved,
	}, status)
}
