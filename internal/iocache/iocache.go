// Package iocache implements the offline bulk-cache enricher. The cache is
// a pair of tab-separated files loaded into memory: a taxon table with
// fully resolved taxa and a taxon map that points provided names and ids
// to rows of the taxon table.
package iocache

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gntaxon/internal/iotsv"
	"github.com/gnames/gntaxon/pkg/enricher"
	"github.com/gnames/gntaxon/pkg/provider"
	"github.com/gnames/gntaxon/pkg/taxon"
)

// Stats describes a loaded cache.
type Stats struct {
	Taxa        int
	IDAliases   int
	NameAliases int
	// Skipped rows had no id or name, or could not be parsed.
	Skipped int
	// Conflicts are rows that overwrote an earlier row with the same key.
	Conflicts int
	// Dangling map rows point to ids missing from the taxon table.
	Dangling int
}

// alias is the target of a taxon map row. Name is known only for the
// four-column layout.
type alias struct {
	id   string
	name string
}

// Cache is an enricher backed by the bulk taxon cache.
type Cache struct {
	byID      map[string]taxon.Taxon
	byName    map[string]taxon.Taxon
	aliasID   map[string]alias
	aliasName map[string]alias
	stats     Stats
}

// New loads both cache files. Missing or unreadable files are errors,
// bad rows are only logged.
func New(taxonPath, mapPath string) (*Cache, error) {
	res := &Cache{
		byID:      make(map[string]taxon.Taxon),
		byName:    make(map[string]taxon.Taxon),
		aliasID:   make(map[string]alias),
		aliasName: make(map[string]alias),
	}
	if err := res.loadTaxa(taxonPath); err != nil {
		return nil, err
	}
	if err := res.loadMap(mapPath); err != nil {
		return nil, err
	}
	slog.Info("Taxon cache loaded",
		"taxa", humanize.Comma(int64(res.stats.Taxa)),
		"idAliases", humanize.Comma(int64(res.stats.IDAliases)),
		"nameAliases", humanize.Comma(int64(res.stats.NameAliases)),
		"skipped", res.stats.Skipped,
		"conflicts", res.stats.Conflicts,
		"dangling", res.stats.Dangling,
	)
	return res, nil
}

// Name implements enricher.Enricher.
func (c *Cache) Name() string {
	return "cache"
}

// Stats returns load statistics.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Enrich looks the taxon up by external id first, directly and through
// the map, then by name. Cached values win over the input. A map row
// whose target is missing from the taxon table still provides the
// preferred id and, when known, the resolved name.
func (c *Cache) Enrich(
	_ context.Context,
	t taxon.Taxon,
) (taxon.Taxon, error) {
	if res, ok := c.find(t); ok {
		return res.Merge(t), nil
	}
	return t, nil
}

func (c *Cache) find(t taxon.Taxon) (taxon.Taxon, bool) {
	if id := t.ExternalID; id != "" {
		if res, ok := c.byID[id]; ok {
			return res, true
		}
		if a, ok := c.aliasID[id]; ok {
			return c.target(a), true
		}
	}
	if t.Name == "" {
		return taxon.Taxon{}, false
	}
	if a, ok := c.aliasName[t.Name]; ok {
		return c.target(a), true
	}
	res, ok := c.byName[t.Name]
	return res, ok
}

func (c *Cache) target(a alias) taxon.Taxon {
	if res, ok := c.byID[a.id]; ok {
		return res
	}
	res := taxon.Taxon{Name: a.name, ExternalID: a.id}
	res.ExternalURL, _ = provider.URLFor(a.id)
	return res
}

// Shutdown implements enricher.Enricher. The cache holds no connections.
func (c *Cache) Shutdown() {}

func (c *Cache) loadTaxa(path string) error {
	r, err := iotsv.Open(path)
	if err != nil {
		return CacheFileError(path, err)
	}
	defer r.Close()

	idCol := "id"
	if !r.Has(idCol) {
		idCol = taxon.KeyExternalID
	}
	if !r.Has(idCol) || !r.Has(taxon.KeyName) {
		return CacheFormatError(path, r.Header())
	}

	return eachRow(r, path, &c.stats.Skipped, func(row iotsv.Row) {
		t := taxon.Taxon{
			Name:         row.Get(taxon.KeyName),
			ExternalID:   row.Get(idCol),
			Rank:         row.Get(taxon.KeyRank),
			Path:         row.Get(taxon.KeyPath),
			PathIDs:      row.Get(taxon.KeyPathIDs),
			PathNames:    row.Get(taxon.KeyPathNames),
			CommonNames:  row.Get(taxon.KeyCommonNames),
			ExternalURL:  row.Get(taxon.KeyExternalURL),
			ThumbnailURL: row.Get(taxon.KeyThumbnailURL),
		}
		if t.ExternalID == "" || t.Name == "" {
			slog.Warn("Skipping cache row without id or name",
				"file", path, "line", row.Line)
			c.stats.Skipped++
			return
		}
		if t.ExternalURL == "" {
			t.ExternalURL, _ = provider.URLFor(t.ExternalID)
		}

		if old, ok := c.byID[t.ExternalID]; ok && old != t {
			slog.Warn("Duplicate taxon id in cache, last row wins",
				"file", path, "line", row.Line, "externalId", t.ExternalID)
			c.stats.Conflicts++
		} else if !ok {
			c.stats.Taxa++
		}
		c.byID[t.ExternalID] = t

		if old, ok := c.byName[t.Name]; ok && old.ExternalID != t.ExternalID {
			slog.Debug("Duplicate taxon name in cache, last row wins",
				"file", path, "line", row.Line, "name", t.Name)
		}
		c.byName[t.Name] = t
	})
}

func (c *Cache) loadMap(path string) error {
	r, err := iotsv.Open(path)
	if err != nil {
		return CacheFileError(path, err)
	}
	defer r.Close()

	wide := r.Has("resolvedTaxonId")
	if !wide && len(r.Header()) < 2 {
		return CacheFormatError(path, r.Header())
	}

	return eachRow(r, path, &c.stats.Skipped, func(row iotsv.Row) {
		var providedID, providedName string
		var resolved alias
		if wide {
			providedID = row.Get("providedTaxonId")
			providedName = row.Get("providedTaxonName")
			resolved = alias{
				id:   row.Get("resolvedTaxonId"),
				name: row.Get("resolvedTaxonName"),
			}
		} else {
			key := row.Field(0)
			if provider.IsSupported(key) {
				providedID = key
			} else {
				providedName = key
			}
			resolved = alias{id: row.Field(1)}
		}
		if resolved.id == "" || (providedID == "" && providedName == "") {
			c.stats.Skipped++
			return
		}
		if _, ok := c.byID[resolved.id]; !ok {
			slog.Debug("Taxon map row points outside of the taxon table",
				"file", path, "line", row.Line, "resolvedId", resolved.id)
			c.stats.Dangling++
		}
		if providedID != "" {
			c.addAlias(c.aliasID, providedID, resolved, &c.stats.IDAliases,
				path, row.Line)
		}
		if providedName != "" {
			c.addAlias(c.aliasName, providedName, resolved, &c.stats.NameAliases,
				path, row.Line)
		}
	})
}

func (c *Cache) addAlias(
	m map[string]alias,
	key string,
	resolved alias,
	count *int,
	path string,
	line int,
) {
	if old, ok := m[key]; ok {
		if old.id != resolved.id {
			slog.Warn("Conflicting taxon map entry, last row wins",
				"file", path, "line", line, "provided", key,
				"was", old.id, "now", resolved.id)
			c.stats.Conflicts++
		}
	} else {
		*count++
	}
	m[key] = resolved
}

func eachRow(
	r *iotsv.Reader,
	path string,
	skipped *int,
	fn func(iotsv.Row),
) error {
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if iotsv.IsRowError(err) {
				slog.Warn("Skipping malformed cache row", "error", err)
				*skipped++
				continue
			}
			return CacheFileError(path, err)
		}
		fn(row)
	}
}

var _ enricher.Enricher = (*Cache)(nil)
