package ioweb

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/enricher"
	"github.com/gnames/gntaxon/pkg/provider"
	"github.com/gnames/gntaxon/pkg/taxon"
)

const (
	wikidataEntity = "http://www.wikidata.org/entity/"
	wikidataProp   = "http://www.wikidata.org/prop/direct/"
)

var wikidataItemRe = regexp.MustCompile(`^Q[0-9]+$`)

type sparqlResult struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Lang  string `json:"xml:lang"`
}

type wikidata struct {
	service
}

// NewWikidata creates an enricher that queries the Wikidata SPARQL
// endpoint for taxon items.
func NewWikidata(cfg config.WebConfig, client *Client) enricher.Enricher {
	return &wikidata{service: newService(config.EnricherWikidata, cfg.WikidataURL, client)}
}

func (w *wikidata) Enrich(
	ctx context.Context,
	t taxon.Taxon,
) (taxon.Taxon, error) {
	where, ok := wikidataSelector(t)
	if !ok {
		return t, nil
	}
	q := wikidataQuery(where)
	u := w.base + "?format=json&query=" + url.QueryEscape(q)

	body, ok, err := w.getBody(ctx, t.Name, u, "application/sparql-results+json")
	if !ok || err != nil {
		return t, err
	}
	var res sparqlResult
	if err = w.enc.Decode(body, &res); err != nil {
		return t, enricher.ServiceError(w.name, t.Name, err)
	}
	found, ok := fromBindings(res.Results.Bindings)
	if !ok {
		return t, nil
	}
	if found.RelatedIDs, err = w.related(ctx, found); err != nil {
		return t, err
	}
	return found.Merge(t), nil
}

// related finds ids of the item at the providers Wikidata keeps
// identifiers for.
func (w *wikidata) related(ctx context.Context, t taxon.Taxon) (string, error) {
	item := provider.StripPrefix(t.ExternalID)
	q := wikidataRelatedQuery(item)
	u := w.base + "?format=json&query=" + url.QueryEscape(q)

	body, ok, err := w.getBody(ctx, t.Name, u, "application/sparql-results+json")
	if !ok || err != nil {
		return "", err
	}
	var res sparqlResult
	if err = w.enc.Decode(body, &res); err != nil {
		return "", enricher.ServiceError(w.name, t.Name, err)
	}
	return relatedIDs(res.Results.Bindings), nil
}

func wikidataRelatedQuery(item string) string {
	pids := provider.WikidataProperties()
	for i := range pids {
		pids[i] = "wdt:" + pids[i]
	}
	return `SELECT ?prop ?value WHERE {
  VALUES ?prop { ` + strings.Join(pids, " ") + ` }
  wd:` + item + ` ?prop ?value .
}`
}

// relatedIDs turns property bindings into sorted prefixed ids. Values of
// unknown properties are ignored.
func relatedIDs(bb []map[string]sparqlValue) string {
	seen := make(map[string]struct{})
	var res []string
	for _, b := range bb {
		pid := strings.TrimPrefix(b["prop"].Value, wikidataProp)
		p, ok := provider.ProviderForWikidataProperty(pid)
		value := strings.TrimSpace(b["value"].Value)
		if !ok || value == "" {
			continue
		}
		id := p.Prefix() + value
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	sort.Strings(res)
	return strings.Join(res, taxon.PathSeparator)
}

// wikidataSelector builds the triple pattern that selects the item. Ids
// are preferred over names.
func wikidataSelector(t taxon.Taxon) (string, bool) {
	if p, ok := provider.ProviderFor(t.ExternalID); ok {
		local := provider.StripPrefix(t.ExternalID)
		if p == provider.Wikidata && wikidataItemRe.MatchString(local) {
			return "VALUES ?item { wd:" + local + " }", true
		}
		if pid, ok := provider.WikidataProperty(p); ok && local != "" {
			return fmt.Sprintf("?item wdt:%s %s .", pid, sparqlString(local)), true
		}
	}
	if t.Name == "" {
		return "", false
	}
	return fmt.Sprintf("?item wdt:P225 %s .", sparqlString(t.Name)), true
}

func wikidataQuery(where string) string {
	return `SELECT ?item ?name ?rank ?image ?common WHERE {
  ` + where + `
  ?item wdt:P225 ?name .
  OPTIONAL { ?item wdt:P105 ?rankItem .
    ?rankItem rdfs:label ?rank . FILTER(lang(?rank) = "en") }
  OPTIONAL { ?item wdt:P18 ?image . }
  OPTIONAL { ?item wdt:P1843 ?common . }
} LIMIT 50`
}

// fromBindings takes the item with the smallest Q number and collects its
// common names.
func fromBindings(bb []map[string]sparqlValue) (taxon.Taxon, bool) {
	var res taxon.Taxon
	var item string
	var qnum int
	for _, b := range bb {
		id := strings.TrimPrefix(b["item"].Value, wikidataEntity)
		if !wikidataItemRe.MatchString(id) {
			continue
		}
		n, _ := strconv.Atoi(id[1:])
		if item == "" || n < qnum {
			item, qnum = id, n
		}
	}
	if item == "" {
		return res, false
	}

	common := make(map[string]struct{})
	for _, b := range bb {
		if strings.TrimPrefix(b["item"].Value, wikidataEntity) != item {
			continue
		}
		if res.Name == "" {
			res.Name = b["name"].Value
		}
		if res.Rank == "" {
			res.Rank = b["rank"].Value
		}
		if res.ThumbnailURL == "" && b["image"].Value != "" {
			res.ThumbnailURL = b["image"].Value + "?width=100"
		}
		if c := b["common"]; c.Value != "" && c.Lang != "" {
			common[commonName(c.Value, c.Lang)] = struct{}{}
		}
	}
	if res.Name == "" {
		return res, false
	}

	names := make([]string, 0, len(common))
	for k := range common {
		names = append(names, k)
	}
	sort.Strings(names)
	res.CommonNames = strings.Join(names, taxon.PathSeparator)
	res.ExternalID = provider.Wikidata.Prefix() + item
	res.ExternalURL, _ = provider.URLFor(res.ExternalID)
	return res, true
}

func sparqlString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
