package ioweb

import (
	"context"
	"encoding/xml"
	"net/url"
	"strconv"
	"strings"

	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/enricher"
	"github.com/gnames/gntaxon/pkg/provider"
	"github.com/gnames/gntaxon/pkg/taxon"
)

// eolFeed is the Atom feed returned by the EOL search API.
type eolFeed struct {
	XMLName xml.Name   `xml:"feed"`
	Entries []eolEntry `xml:"entry"`
	Links   []eolLink  `xml:"link"`
}

type eolEntry struct {
	ID    string `xml:"id"`
	Title string `xml:"title"`
}

type eolLink struct {
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

type eolPage struct {
	Identifier     int             `json:"identifier"`
	ScientificName string          `json:"scientificName"`
	TaxonConcepts  []eolConcept    `json:"taxonConcepts"`
	Vernacular     []eolVernacular `json:"vernacularNames"`
	DataObjects    []eolDataObject `json:"dataObjects"`
}

type eolConcept struct {
	Identifier     int    `json:"identifier"`
	ScientificName string `json:"scientificName"`
	TaxonRank      string `json:"taxonRank"`
}

type eolVernacular struct {
	Name     string `json:"vernacularName"`
	Language string `json:"language"`
}

type eolDataObject struct {
	MimeType            string `json:"mimeType"`
	EOLThumbnailURL     string `json:"eolThumbnailURL"`
	EOLMediaURL         string `json:"eolMediaURL"`
	DataObjectVersionID int    `json:"dataObjectVersionID"`
}

type eolHierarchy struct {
	TaxonID        int           `json:"taxonID"`
	ScientificName string        `json:"scientificName"`
	TaxonRank      string        `json:"taxonRank"`
	Ancestors      []eolAncestor `json:"ancestors"`
}

type eolAncestor struct {
	TaxonConceptID int    `json:"taxonConceptID"`
	ScientificName string `json:"scientificName"`
	TaxonRank      string `json:"taxonRank"`
}

type eol struct {
	service
}

// NewEOL creates an enricher backed by the Encyclopedia of Life API.
func NewEOL(cfg config.WebConfig, client *Client) enricher.Enricher {
	return &eol{service: newService(config.EnricherEOL, cfg.EOLURL, client)}
}

func (e *eol) Enrich(
	ctx context.Context,
	t taxon.Taxon,
) (taxon.Taxon, error) {
	pageID := 0
	if p, ok := provider.ProviderFor(t.ExternalID); ok &&
		(p == provider.EOL || p == provider.EOLV2) {
		pageID, _ = strconv.Atoi(provider.StripPrefix(t.ExternalID))
	}
	if pageID == 0 && t.Name != "" {
		var err error
		pageID, err = e.search(ctx, t.Name, true)
		if err != nil {
			return t, err
		}
	}
	if pageID == 0 {
		return t, nil
	}

	res, ok, err := e.page(ctx, t.Name, pageID)
	if !ok || err != nil {
		return t, err
	}
	return res.Merge(t), nil
}

// search returns the smallest page id among exact matches. If there are
// none, the alternate name suggested by the service is tried once.
func (e *eol) search(
	ctx context.Context,
	name string,
	followAlternate bool,
) (int, error) {
	u := e.base + "/api/search/1.0.xml?exact=true&q=" + url.QueryEscape(name)
	body, ok, err := e.getBody(ctx, name, u, "application/xml")
	if !ok || err != nil {
		return 0, err
	}
	var feed eolFeed
	if err = xml.Unmarshal(body, &feed); err != nil {
		return 0, enricher.ServiceError(e.name, name, err)
	}

	res := 0
	for _, v := range feed.Entries {
		id, err := strconv.Atoi(strings.TrimSpace(v.ID))
		if err != nil || id == 0 {
			continue
		}
		if res == 0 || id < res {
			res = id
		}
	}
	if res > 0 || !followAlternate {
		return res, nil
	}

	for _, l := range feed.Links {
		if l.Rel != "alternate" {
			continue
		}
		alt := strings.TrimSpace(l.Title)
		if alt == "" && l.Href != "" {
			if au, err := url.Parse(l.Href); err == nil {
				alt = au.Query().Get("q")
			}
		}
		if alt != "" && !strings.EqualFold(alt, name) {
			return e.search(ctx, alt, false)
		}
	}
	return 0, nil
}

func (e *eol) page(
	ctx context.Context,
	name string,
	pageID int,
) (taxon.Taxon, bool, error) {
	var res taxon.Taxon
	var pg eolPage
	u := e.base + "/api/pages/1.0/" + strconv.Itoa(pageID) +
		".json?images_per_page=1&videos_per_page=0&sounds_per_page=0" +
		"&maps_per_page=0&texts_per_page=0&common_names=true&taxonomy=true"
	ok, err := e.getJSON(ctx, name, u, &pg)
	if !ok || err != nil {
		return res, false, err
	}

	id := provider.EOL.Prefix() + strconv.Itoa(pageID)
	res.ExternalID = id
	res.Name = pg.ScientificName
	res.ExternalURL, _ = provider.URLFor(id)
	res.CommonNames = eolCommonNames(pg.Vernacular)
	for _, v := range pg.DataObjects {
		if v.EOLThumbnailURL != "" {
			res.ThumbnailURL = v.EOLThumbnailURL
			break
		}
	}
	if len(pg.TaxonConcepts) == 0 {
		return res, res.Name != "", nil
	}

	c := pg.TaxonConcepts[0]
	res.Rank = strings.ToLower(c.TaxonRank)
	if res.Name == "" {
		res.Name = c.ScientificName
	}
	res.Name = canonicalPart(res.Name, res.Rank)

	var h eolHierarchy
	u = e.base + "/api/hierarchy_entries/1.0/" + strconv.Itoa(c.Identifier) +
		".json"
	ok, err = e.getJSON(ctx, name, u, &h)
	if err != nil {
		return res, false, err
	}
	if ok {
		applyHierarchy(&res, pageID, h)
	}
	return res, res.Name != "", nil
}

func applyHierarchy(res *taxon.Taxon, pageID int, h eolHierarchy) {
	pref := provider.EOL.Prefix()
	var names, ids, ranks []string
	for _, v := range h.Ancestors {
		if v.ScientificName == "" {
			continue
		}
		names = append(names, canonicalPart(v.ScientificName, v.TaxonRank))
		ids = append(ids, pref+strconv.Itoa(v.TaxonConceptID))
		ranks = append(ranks, strings.ToLower(v.TaxonRank))
	}
	self := h.ScientificName
	if self == "" {
		self = res.Name
	}
	rank := strings.ToLower(h.TaxonRank)
	if rank == "" {
		rank = res.Rank
	}
	names = append(names, canonicalPart(self, rank))
	ids = append(ids, pref+strconv.Itoa(pageID))
	ranks = append(ranks, rank)

	res.Path = strings.Join(names, taxon.PathSeparator)
	res.PathIDs = strings.Join(ids, taxon.PathSeparator)
	res.PathNames = strings.Join(ranks, taxon.PathSeparator)
	if res.Rank == "" {
		res.Rank = rank
	}
}

// canonicalPart drops authorship from EOL scientific names, keeping one
// word for genera and higher ranks, two for species and three for
// infraspecies.
func canonicalPart(name, rank string) string {
	words := strings.Fields(name)
	n := 1
	switch strings.ToLower(rank) {
	case "":
		return strings.Join(words, " ")
	case "species":
		n = 2
	case "subspecies", "variety", "form", "infraspecies":
		n = 3
	}
	if len(words) < n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

func eolCommonNames(vv []eolVernacular) string {
	var res []string
	for _, v := range vv {
		if cn := commonName(v.Name, v.Language); cn != "" &&
			v.Language != "" {
			res = append(res, cn)
		}
	}
	return strings.Join(res, taxon.PathSeparator)
}
