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

// dataSourcePrefix maps GNverifier data-source IDs to id prefixes.
var dataSourcePrefix = map[int]provider.Provider{
	1:   provider.COL,
	3:   provider.ITIS,
	4:   provider.NCBI,
	5:   provider.IndexFungorum,
	9:   provider.WoRMS,
	11:  provider.GBIF,
	12:  provider.EOL,
	180: provider.INaturalistTaxon,
}

type verification struct {
	Names []verifiedName `json:"names"`
}

type verifiedName struct {
	Name       string      `json:"name"`
	MatchType  string      `json:"matchType"`
	BestResult *bestResult `json:"bestResult"`
}

type bestResult struct {
	DataSourceID           int    `json:"dataSourceId"`
	RecordID               string `json:"recordId"`
	Outlink                string `json:"outlink"`
	CurrentRecordID        string `json:"currentRecordId"`
	CurrentCanonicalSimple string `json:"currentCanonicalSimple"`
	MatchedCanonicalSimple string `json:"matchedCanonicalSimple"`
	ClassificationPath     string `json:"classificationPath"`
	ClassificationRanks    string `json:"classificationRanks"`
	ClassificationIDs      string `json:"classificationIds"`
}

type gnverifier struct {
	service
	sources string
}

// NewGNverifier creates an enricher that checks names with GNverifier
// and keeps the best match from the preferred data sources.
func NewGNverifier(cfg config.WebConfig, client *Client) enricher.Enricher {
	ids := make([]string, len(cfg.DataSources))
	for i, v := range cfg.DataSources {
		ids[i] = strconv.Itoa(v)
	}
	return &gnverifier{
		service: newService(config.EnricherGNverifier, cfg.GNverifierURL, client),
		sources: strings.Join(ids, "|"),
	}
}

func (g *gnverifier) Enrich(
	ctx context.Context,
	t taxon.Taxon,
) (taxon.Taxon, error) {
	if t.Name == "" {
		return t, nil
	}
	u := g.base + "/api/v1/verifications/" + url.PathEscape(t.Name)
	if g.sources != "" {
		u += "?data_sources=" + url.QueryEscape(g.sources)
	}

	var v verification
	ok, err := g.getJSON(ctx, t.Name, u, &v)
	if !ok || err != nil || len(v.Names) == 0 {
		return t, err
	}

	n := v.Names[0]
	br := n.BestResult
	if br == nil || n.MatchType == "NoMatch" {
		return t, nil
	}
	p, ok := dataSourcePrefix[br.DataSourceID]
	if !ok {
		return t, nil
	}

	id := br.CurrentRecordID
	if id == "" {
		id = br.RecordID
	}
	name := br.CurrentCanonicalSimple
	if name == "" {
		name = br.MatchedCanonicalSimple
	}
	if id == "" || name == "" {
		return t, nil
	}

	res := taxon.Taxon{
		Name:       name,
		ExternalID: p.Prefix() + id,
		Path:       pipesToPath(br.ClassificationPath),
		PathNames:  pipesToPath(br.ClassificationRanks),
	}
	if br.ClassificationIDs != "" {
		ids := strings.Split(br.ClassificationIDs, "|")
		for i, v := range ids {
			if v = strings.TrimSpace(v); v != "" {
				ids[i] = p.Prefix() + v
			}
		}
		res.PathIDs = pipesToPath(strings.Join(ids, "|"))
	}
	if ranks := strings.Split(br.ClassificationRanks, "|"); len(ranks) > 0 {
		res.Rank = strings.TrimSpace(ranks[len(ranks)-1])
	}
	res.ExternalURL = br.Outlink
	if res.ExternalURL == "" {
		res.ExternalURL, _ = provider.URLFor(res.ExternalID)
	}
	return res.Merge(t), nil
}

// pipesToPath keeps empty elements, so ranks stay aligned with names.
func pipesToPath(s string) string {
	if s == "" {
		return ""
	}
	els := strings.Split(s, "|")
	for i := range els {
		els[i] = strings.TrimSpace(els[i])
	}
	return strings.Join(els, taxon.PathSeparator)
}
