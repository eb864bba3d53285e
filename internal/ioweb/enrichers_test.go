package ioweb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gnames/gntaxon/internal/ioweb"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/enricher"
	"github.com/gnames/gntaxon/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve answers with the body registered for the exact request path.
func serve(t *testing.T, routes map[string]string) string {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			body, ok := routes[r.URL.Path]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(body))
		}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newEnricher(t *testing.T, name, url string) enricher.Enricher {
	cfg := webConfig(url, 0)
	e, err := ioweb.New(name, cfg, ioweb.NewClient(cfg))
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e
}

const verifierHomo = `{"names":[{"name":"Homo sapiens","matchType":"Exact",
"bestResult":{"dataSourceId":12,"recordId":"327955","currentRecordId":"327955",
"currentCanonicalSimple":"Homo sapiens","matchedCanonicalSimple":"Homo sapiens",
"classificationPath":"Animalia|Chordata|Mammalia|Homo sapiens",
"classificationRanks":"kingdom|phylum|class|species",
"classificationIds":"1|694|1642|327955"}}]}`

func TestGNverifier(t *testing.T) {
	url := serve(t, map[string]string{
		"/api/v1/verifications/Homo sapiens": verifierHomo,
		"/api/v1/verifications/ThemFishes":   `{"names":[{"name":"ThemFishes","matchType":"NoMatch"}]}`,
	})
	e := newEnricher(t, config.EnricherGNverifier, url)

	res, err := e.Enrich(context.Background(), taxon.Taxon{Name: "Homo sapiens"})
	require.NoError(t, err)
	assert.Equal(t, taxon.Taxon{
		Name:        "Homo sapiens",
		ExternalID:  "EOL:327955",
		Rank:        "species",
		Path:        "Animalia | Chordata | Mammalia | Homo sapiens",
		PathIDs:     "EOL:1 | EOL:694 | EOL:1642 | EOL:327955",
		PathNames:   "kingdom | phylum | class | species",
		ExternalURL: "http://eol.org/pages/327955",
	}, res)

	in := taxon.Taxon{Name: "ThemFishes"}
	res, err = e.Enrich(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, res)
}

func TestGBIF(t *testing.T) {
	homo := `{"key":2436436,"canonicalName":"Homo sapiens","rank":"SPECIES",
"vernacularName":"Human","kingdom":"Animalia","kingdomKey":1,
"phylum":"Chordata","phylumKey":44,"genus":"Homo","genusKey":2436435,
"species":"Homo sapiens","speciesKey":2436436}`
	expected := taxon.Taxon{
		Name:        "Homo sapiens",
		ExternalID:  "GBIF:2436436",
		Rank:        "species",
		Path:        "Animalia | Chordata | Homo | Homo sapiens",
		PathIDs:     "GBIF:1 | GBIF:44 | GBIF:2436435 | GBIF:2436436",
		PathNames:   "kingdom | phylum | genus | species",
		CommonNames: "Human @en",
		ExternalURL: "http://www.gbif.org/species/2436436",
	}

	tests := []struct {
		msg   string
		match string
		input taxon.Taxon
		res   taxon.Taxon
	}{
		{"by name", `{"usageKey":2436436,"matchType":"EXACT"}`,
			taxon.Taxon{Name: "Homo sapiens"}, expected},
		{"synonym goes to accepted",
			`{"usageKey":5,"acceptedUsageKey":2436436,"synonym":true,"matchType":"EXACT"}`,
			taxon.Taxon{Name: "Homo sapiens"}, expected},
		{"by id", `{"matchType":"NONE"}`,
			taxon.Taxon{Name: "Homo sapiens", ExternalID: "GBIF:2436436"}, expected},
		{"no match", `{"matchType":"NONE"}`,
			taxon.Taxon{Name: "ThemFishes"}, taxon.Taxon{Name: "ThemFishes"}},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			url := serve(t, map[string]string{
				"/v1/species/match":   tt.match,
				"/v1/species/2436436": homo,
			})
			e := newEnricher(t, config.EnricherGBIF, url)
			res, err := e.Enrich(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.res, res)
		})
	}
}

func TestINaturalist(t *testing.T) {
	url := serve(t, map[string]string{
		"/v1/taxa": `{"results":[{"id":1,"name":"Animalia"},
{"id":43584,"name":"Homo sapiens"}]}`,
		"/v1/taxa/43584": `{"results":[{"id":43584,"name":"Homo sapiens",
"rank":"species","preferred_common_name":"Human",
"default_photo":{"square_url":"https://static.inaturalist.org/sq.jpg"},
"ancestors":[{"id":1,"name":"Animalia","rank":"kingdom"},
{"id":43583,"name":"Homo","rank":"genus"}]}]}`,
	})
	e := newEnricher(t, config.EnricherINaturalist, url)

	expected := taxon.Taxon{
		Name:         "Homo sapiens",
		ExternalID:   "INAT_TAXON:43584",
		Rank:         "species",
		Path:         "Animalia | Homo | Homo sapiens",
		PathIDs:      "INAT_TAXON:1 | INAT_TAXON:43583 | INAT_TAXON:43584",
		PathNames:    "kingdom | genus | species",
		CommonNames:  "Human @en",
		ExternalURL:  "https://inaturalist.org/taxa/43584",
		ThumbnailURL: "https://static.inaturalist.org/sq.jpg",
	}
	for _, in := range []taxon.Taxon{
		{Name: "Homo sapiens"},
		{Name: "Human", ExternalID: "INAT_TAXON:43584"},
	} {
		res, err := e.Enrich(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, expected, res)
	}
}

const (
	eolPage = `{"identifier":327955,"scientificName":"Homo sapiens Linnaeus 1758",
"taxonConcepts":[{"identifier":51,"scientificName":"Homo sapiens Linnaeus 1758",
"taxonRank":"Species"}],
"vernacularNames":[{"vernacularName":"Human","language":"en"}],
"dataObjects":[{"eolThumbnailURL":"http://media.eol.org/thumb.jpg"}]}`
	eolHierarchy = `{"taxonID":51,"scientificName":"Homo sapiens Linnaeus 1758",
"taxonRank":"species","ancestors":[
{"taxonConceptID":1,"scientificName":"Animalia","taxonRank":"kingdom"},
{"taxonConceptID":42268,"scientificName":"Homo Linnaeus, 1758","taxonRank":"genus"}]}`
)

func TestEOL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search/1.0.xml", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "Homo sapiens":
			w.Write([]byte(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<entry><id>9999999</id><title>Homo sapiens ssp.</title></entry>
<entry><id>327955</id><title>Homo sapiens</title></entry>
</feed>`))
		case "Homo sapienz":
			w.Write([]byte(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<link rel="alternate" title="Homo sapiens" href="http://eol.org/search?q=Homo+sapiens"/>
</feed>`))
		default:
			w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
		}
	})
	mux.HandleFunc("/api/pages/1.0/327955.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(eolPage))
	})
	mux.HandleFunc("/api/hierarchy_entries/1.0/51.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(eolHierarchy))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	e := newEnricher(t, config.EnricherEOL, srv.URL)

	expected := taxon.Taxon{
		Name:         "Homo sapiens",
		ExternalID:   "EOL:327955",
		Rank:         "species",
		Path:         "Animalia | Homo | Homo sapiens",
		PathIDs:      "EOL:1 | EOL:42268 | EOL:327955",
		PathNames:    "kingdom | genus | species",
		CommonNames:  "Human @en",
		ExternalURL:  "http://eol.org/pages/327955",
		ThumbnailURL: "http://media.eol.org/thumb.jpg",
	}

	tests := []struct {
		msg   string
		input taxon.Taxon
		res   taxon.Taxon
	}{
		{"smallest page id", taxon.Taxon{Name: "Homo sapiens"}, expected},
		{"alternate name", taxon.Taxon{Name: "Homo sapienz"}, expected},
		{"by id", taxon.Taxon{Name: "Man", ExternalID: "EOL:327955"}, expected},
		{"no match", taxon.Taxon{Name: "ThemFishes"}, taxon.Taxon{Name: "ThemFishes"}},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			res, err := e.Enrich(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.res, res)
		})
	}
}

func TestWikidata(t *testing.T) {
	bindings := `{"results":{"bindings":[
{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q20000000"},
 "name":{"type":"literal","value":"Homo sapiens"}},
{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q15978631"},
 "name":{"type":"literal","value":"Homo sapiens"},
 "rank":{"type":"literal","value":"species","xml:lang":"en"},
 "image":{"type":"uri","value":"http://commons.wikimedia.org/wiki/Special:FilePath/Human.jpg"},
 "common":{"type":"literal","value":"human","xml:lang":"en"}},
{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q15978631"},
 "name":{"type":"literal","value":"Homo sapiens"},
 "common":{"type":"literal","value":"Mensch","xml:lang":"de"}}]}}`

	related := `{"results":{"bindings":[
{"prop":{"type":"uri","value":"http://www.wikidata.org/prop/direct/P846"},
 "value":{"type":"literal","value":"2436436"}},
{"prop":{"type":"uri","value":"http://www.wikidata.org/prop/direct/P815"},
 "value":{"type":"literal","value":"180092"}},
{"prop":{"type":"uri","value":"http://www.wikidata.org/prop/direct/P815"},
 "value":{"type":"literal","value":"180092"}},
{"prop":{"type":"uri","value":"http://www.wikidata.org/prop/direct/P9999"},
 "value":{"type":"literal","value":"42"}}]}}`

	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query().Get("query")
			queries = append(queries, q)
			switch {
			case strings.Contains(q, `"ThemFishes"`):
				w.Write([]byte(`{"results":{"bindings":[]}}`))
			case strings.Contains(q, "wd:Q15978631 ?prop ?value"):
				w.Write([]byte(related))
			default:
				w.Write([]byte(bindings))
			}
		}))
	defer srv.Close()
	e := newEnricher(t, config.EnricherWikidata, srv.URL)

	expected := taxon.Taxon{
		Name:         "Homo sapiens",
		ExternalID:   "WD:Q15978631",
		Rank:         "species",
		CommonNames:  "Mensch @de | human @en",
		ExternalURL:  "https://www.wikidata.org/wiki/Q15978631",
		ThumbnailURL: "http://commons.wikimedia.org/wiki/Special:FilePath/Human.jpg?width=100",
		RelatedIDs:   "GBIF:2436436 | ITIS:180092",
	}

	tests := []struct {
		msg      string
		input    taxon.Taxon
		res      taxon.Taxon
		selector string
		queries  int
	}{
		{"by name", taxon.Taxon{Name: "Homo sapiens"}, expected,
			`?item wdt:P225 "Homo sapiens" .`, 2},
		{"by provider id", taxon.Taxon{ExternalID: "GBIF:2436436"}, expected,
			`?item wdt:P846 "2436436" .`, 2},
		{"by item", taxon.Taxon{ExternalID: "WD:Q15978631"}, expected,
			`VALUES ?item { wd:Q15978631 }`, 2},
		{"no match", taxon.Taxon{Name: "ThemFishes"}, taxon.Taxon{Name: "ThemFishes"},
			`?item wdt:P225 "ThemFishes" .`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			queries = nil
			res, err := e.Enrich(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.res, res)
			require.Len(t, queries, tt.queries)
			assert.Contains(t, queries[0], tt.selector)
			if tt.queries > 1 {
				assert.Contains(t, queries[1], "VALUES ?prop { wdt:P685 wdt:P815")
			}
		})
	}
}

func TestWikidataRelatedDown(t *testing.T) {
	bindings := `{"results":{"bindings":[
{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q15978631"},
 "name":{"type":"literal","value":"Homo sapiens"}}]}}`
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Query().Get("query"), "?prop ?value") {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(bindings))
		}))
	defer srv.Close()
	e := newEnricher(t, config.EnricherWikidata, srv.URL)

	in := taxon.Taxon{Name: "Homo sapiens"}
	res, err := e.Enrich(context.Background(), in)
	require.Error(t, err)
	assert.True(t, enricher.IsServiceError(err))
	assert.Equal(t, in, res)
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		msg    string
		status int
		body   string
		isErr  bool
	}{
		{"unknown taxon", http.StatusNotFound, "", false},
		{"garbage", http.StatusOK, "<html>oops</html>", true},
		{"server down", http.StatusServiceUnavailable, "", true},
	}
	names := []string{
		config.EnricherGNverifier, config.EnricherGBIF,
		config.EnricherINaturalist, config.EnricherEOL, config.EnricherWikidata,
	}

	for _, tt := range tests {
		for _, name := range names {
			t.Run(tt.msg+" "+name, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(tt.status)
						w.Write([]byte(tt.body))
					}))
				defer srv.Close()
				e := newEnricher(t, name, srv.URL)
				in := taxon.Taxon{Name: "Homo sapiens"}
				res, err := e.Enrich(context.Background(), in)
				assert.Equal(t, in, res)
				if !tt.isErr {
					assert.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.True(t, enricher.IsServiceError(err))
			})
		}
	}
}
