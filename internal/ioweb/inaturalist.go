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

type inatResults struct {
	Results []inatTaxon `json:"results"`
}

type inatTaxon struct {
	ID                  int         `json:"id"`
	Name                string      `json:"name"`
	Rank                string      `json:"rank"`
	PreferredCommonName string      `json:"preferred_common_name"`
	DefaultPhoto        *inatPhoto  `json:"default_photo"`
	Ancestors           []inatTaxon `json:"ancestors"`
}

type inatPhoto struct {
	SquareURL string `json:"square_url"`
}

type inaturalist struct {
	service
}

// NewINaturalist creates an enricher that uses iNaturalist taxa API.
func NewINaturalist(cfg config.WebConfig, client *Client) enricher.Enricher {
	return &inaturalist{
		service: newService(config.EnricherINaturalist, cfg.INaturalistURL, client),
	}
}

func (n *inaturalist) Enrich(
	ctx context.Context,
	t taxon.Taxon,
) (taxon.Taxon, error) {
	id := 0
	if p, ok := provider.ProviderFor(t.ExternalID); ok &&
		p == provider.INaturalistTaxon {
		id, _ = strconv.Atoi(provider.StripPrefix(t.ExternalID))
	}

	if id == 0 && t.Name != "" {
		var found inatResults
		u := n.base + "/v1/taxa?is_active=true&q=" + url.QueryEscape(t.Name)
		ok, err := n.getJSON(ctx, t.Name, u, &found)
		if !ok || err != nil {
			return t, err
		}
		for _, v := range found.Results {
			if strings.EqualFold(v.Name, t.Name) {
				id = v.ID
				break
			}
		}
	}
	if id == 0 {
		return t, nil
	}

	var res inatResults
	u := n.base + "/v1/taxa/" + strconv.Itoa(id)
	ok, err := n.getJSON(ctx, t.Name, u, &res)
	if !ok || err != nil || len(res.Results) == 0 {
		return t, err
	}
	it := res.Results[0]
	if it.ID == 0 || it.Name == "" {
		return t, nil
	}
	return it.toTaxon().Merge(t), nil
}

func (it inatTaxon) toTaxon() taxon.Taxon {
	pref := provider.INaturalistTaxon.Prefix()
	lineage := append(append([]inatTaxon{}, it.Ancestors...), it)
	names := make([]string, 0, len(lineage))
	ids := make([]string, 0, len(lineage))
	ranks := make([]string, 0, len(lineage))
	for _, v := range lineage {
		if v.Name == "" {
			continue
		}
		names = append(names, v.Name)
		ids = append(ids, pref+strconv.Itoa(v.ID))
		ranks = append(ranks, v.Rank)
	}

	id := pref + strconv.Itoa(it.ID)
	res := taxon.Taxon{
		Name:        it.Name,
		ExternalID:  id,
		Rank:        it.Rank,
		Path:        strings.Join(names, taxon.PathSeparator),
		PathIDs:     strings.Join(ids, taxon.PathSeparator),
		PathNames:   strings.Join(ranks, taxon.PathSeparator),
		CommonNames: commonName(it.PreferredCommonName, "en"),
	}
	if it.DefaultPhoto != nil {
		res.ThumbnailURL = it.DefaultPhoto.SquareURL
	}
	res.ExternalURL, _ = provider.URLFor(id)
	return res
}

// commonName formats a single vernacular name the way commonNames
// field keeps them: "name @lang".
func commonName(name, lang string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return name + " @" + lang
}
