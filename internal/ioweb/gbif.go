package ioweb

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/enricher"
	"github.com/gnames/gntaxon/pkg/provider"
	"github.com/gnames/gntaxon/pkg/taxon"
)

type gbifMatch struct {
	UsageKey         int    `json:"usageKey"`
	AcceptedUsageKey int    `json:"acceptedUsageKey"`
	MatchType        string `json:"matchType"`
	Synonym          bool   `json:"synonym"`
}

type gbifUsage struct {
	Key            int    `json:"key"`
	AcceptedKey    int    `json:"acceptedKey"`
	CanonicalName  string `json:"canonicalName"`
	Rank           string `json:"rank"`
	VernacularName string `json:"vernacularName"`
	Kingdom        string `json:"kingdom"`
	Phylum         string `json:"phylum"`
	Class          string `json:"class"`
	Order          string `json:"order"`
	Family         string `json:"family"`
	Genus          string `json:"genus"`
	Species        string `json:"species"`
	KingdomKey     int    `json:"kingdomKey"`
	PhylumKey      int    `json:"phylumKey"`
	ClassKey       int    `json:"classKey"`
	OrderKey       int    `json:"orderKey"`
	FamilyKey      int    `json:"familyKey"`
	GenusKey       int    `json:"genusKey"`
	SpeciesKey     int    `json:"speciesKey"`
}

type gbif struct {
	service
}

// NewGBIF creates an enricher backed by the GBIF backbone taxonomy.
func NewGBIF(cfg config.WebConfig, client *Client) enricher.Enricher {
	return &gbif{service: newService(config.EnricherGBIF, cfg.GBIFURL, client)}
}

func (g *gbif) Enrich(
	ctx context.Context,
	t taxon.Taxon,
) (taxon.Taxon, error) {
	key := 0
	if p, ok := provider.ProviderFor(t.ExternalID); ok && p == provider.GBIF {
		key, _ = strconv.Atoi(provider.StripPrefix(t.ExternalID))
	}

	if key == 0 && t.Name != "" {
		var m gbifMatch
		u := g.base + "/v1/species/match?strict=true&name=" + url.QueryEscape(t.Name)
		ok, err := g.getJSON(ctx, t.Name, u, &m)
		if !ok || err != nil {
			return t, err
		}
		if m.MatchType == "" || m.MatchType == "NONE" || m.UsageKey == 0 {
			return t, nil
		}
		key = m.UsageKey
		if m.Synonym && m.AcceptedUsageKey != 0 {
			key = m.AcceptedUsageKey
		}
	}
	if key == 0 {
		return t, nil
	}

	var usage gbifUsage
	u := g.base + "/v1/species/" + strconv.Itoa(key)
	ok, err := g.getJSON(ctx, t.Name, u, &usage)
	if !ok || err != nil || usage.Key == 0 || usage.CanonicalName == "" {
		return t, err
	}
	return usage.toTaxon().Merge(t), nil
}

func (u gbifUsage) toTaxon() taxon.Taxon {
	rank := strings.ToLower(u.Rank)
	levels := []struct {
		rank, name string
		key        int
	}{
		{"kingdom", u.Kingdom, u.KingdomKey},
		{"phylum", u.Phylum, u.PhylumKey},
		{"class", u.Class, u.ClassKey},
		{"order", u.Order, u.OrderKey},
		{"family", u.Family, u.FamilyKey},
		{"genus", u.Genus, u.GenusKey},
		{"species", u.Species, u.SpeciesKey},
	}

	var names, ids, ranks []string
	self := false
	for _, v := range levels {
		if v.name == "" || v.key == 0 {
			continue
		}
		names = append(names, v.name)
		ids = append(ids, provider.GBIF.Prefix()+strconv.Itoa(v.key))
		ranks = append(ranks, v.rank)
		if v.key == u.Key {
			self = true
		}
	}
	if !self {
		names = append(names, u.CanonicalName)
		ids = append(ids, provider.GBIF.Prefix()+strconv.Itoa(u.Key))
		ranks = append(ranks, rank)
	}

	id := provider.GBIF.Prefix() + strconv.Itoa(u.Key)
	res := taxon.Taxon{
		Name:        u.CanonicalName,
		ExternalID:  id,
		Rank:        rank,
		Path:        strings.Join(names, taxon.PathSeparator),
		PathIDs:     strings.Join(ids, taxon.PathSeparator),
		PathNames:   strings.Join(ranks, taxon.PathSeparator),
		CommonNames: commonName(u.VernacularName, "en"),
	}
	res.ExternalURL, _ = provider.URLFor(id)
	return res
}
