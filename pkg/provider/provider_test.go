package provider_test

import (
	"strings"
	"testing"

	"github.com/gnames/gntaxon/pkg/provider"
	"github.com/stretchr/testify/assert"
)

func TestProviderFor(t *testing.T) {
	tests := []struct {
		msg, id string
		res     provider.Provider
		ok      bool
	}{
		{"eol", "EOL:327955", provider.EOL, true},
		{"eol v2", "EOL_V2:1234", provider.EOLV2, true},
		{"inat observation", "INAT:831", provider.INaturalist, true},
		{"inat taxon", "INAT_TAXON:58831", provider.INaturalistTaxon, true},
		{"fishbase", "FBC:FB:SpecCode:947", provider.FishBase, true},
		{"sealifebase", "FBC:SLB:SpecCode:69", provider.SeaLifeBase, true},
		{"url", "https://example.org/x", provider.HTTPS, true},
		{"blank", "  ", provider.Unknown, false},
		{"empty", "", provider.Unknown, false},
		{"unknown", "FOO:123", provider.Unknown, false},
		{"case matters", "gbif:123", provider.Unknown, false},
	}

	for _, v := range tests {
		res, ok := provider.ProviderFor(v.id)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestPrefixesDoNotOverlap(t *testing.T) {
	pp := provider.Providers()
	for i := range pp {
		for j := range pp {
			if i == j {
				continue
			}
			a, b := pp[i].Prefix(), pp[j].Prefix()
			if strings.HasPrefix(a, b) {
				// a longer prefix must still resolve to its own provider
				res, ok := provider.ProviderFor(a + "1")
				assert.True(t, ok)
				assert.Equal(t, pp[i], res, a)
			}
		}
	}
}

func TestURLFor(t *testing.T) {
	tests := []struct {
		msg, id, url string
		ok           bool
	}{
		{"eol", "EOL:1234", "http://eol.org/pages/1234", true},
		{"worms", "WORMS:1234",
			"http://www.marinespecies.org/aphia.php?p=taxdetails&id=1234", true},
		{"envo", "ENVO:00001995", "http://purl.obolibrary.org/obo/ENVO_00001995", true},
		{"wikipedia", "W:Homo_sapiens", "http://wikipedia.org/wiki/Homo_sapiens", true},
		{"bioinfo suffix", "BioInfo:123", "http://bioinfo.org.uk/html/b123.htm", true},
		{"gbif", "GBIF:2436436", "http://www.gbif.org/species/2436436", true},
		{"inat", "INAT:831", "http://www.inaturalist.org/observations/831", true},
		{"ncbi", "NCBI:9606",
			"https://www.ncbi.nlm.nih.gov/Taxonomy/Browser/wwwtax.cgi?id=9606", true},
		{"doi", "doi:10.1/2", "http://dx.doi.org/10.1/2", true},
		{"itis", "ITIS:180092",
			"http://www.itis.gov/servlet/SingleRpt/SingleRpt?search_topic=TSN&search_value=180092",
			true},
		{"ott", "OTT:770315", "https://tree.opentreeoflife.org/taxonomy/browse?id=770315", true},
		{"irmng family", "IRMNG:104889",
			"http://www.marine.csiro.au/mirrorsearch/ir_search.list_genera?fam_id=104889", true},
		{"irmng genus", "IRMNG:1048899",
			"http://www.marine.csiro.au/mirrorsearch/ir_search.list_species?gen_id=1048899", true},
		{"irmng species", "IRMNG:10488999",
			"http://www.marine.csiro.au/mirrorsearch/ir_search.list_species?sp_id=10488999", true},
		{"http", "http://example.org/a", "http://example.org/a", true},
		{"unsupported", "FOO:1", "", false},
		{"blank", "", "", false},
	}

	for _, v := range tests {
		res, ok := provider.URLFor(v.id)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.url, res, v.msg)
	}
}

func TestJSONURL(t *testing.T) {
	assert.Equal(t, `{"url":"http://eol.org/pages/1"}`, provider.JSONURL("EOL:1"))
	assert.Equal(t, "{}", provider.JSONURL("FOO:1"))
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "58831", provider.StripPrefix("INAT_TAXON:58831"))
	assert.Equal(t, "947", provider.StripPrefix("FBC:FB:SpecCode:947"))
	assert.Equal(t, "FOO:1", provider.StripPrefix("FOO:1"))
	assert.Equal(t, "http://a.b", provider.StripPrefix("http://a.b"))
}

func TestCitationFragment(t *testing.T) {
	tests := []struct {
		msg, contr, year, desc, res string
	}{
		{"all", "Smith", "2010", "Bees of Ohio", "Smith. 2010. Bees of Ohio"},
		{"no year", "Smith", "", "Bees", "Smith. Bees"},
		{"blank parts", " ", "2010", "", "2010"},
		{"nothing", "", "", "", ""},
	}
	for _, v := range tests {
		res := provider.CitationFragment(v.contr, v.year, v.desc)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestSelectValue(t *testing.T) {
	m := map[string]string{"a": "1", "b": " ", "c": "3"}
	assert.Equal(t, "3", provider.SelectValue(m, "a", "b", "c"))
	assert.Equal(t, "1", provider.SelectValue(m, "c", "a", "b"))
	assert.Equal(t, "", provider.SelectValue(m, "x"))
}

func TestWikidataProperty(t *testing.T) {
	pid, ok := provider.WikidataProperty(provider.GBIF)
	assert.True(t, ok)
	assert.Equal(t, "P846", pid)

	p, ok := provider.ProviderForWikidataProperty("P3151")
	assert.True(t, ok)
	assert.Equal(t, provider.INaturalistTaxon, p)

	_, ok = provider.WikidataProperty(provider.DOI)
	assert.False(t, ok)

	pids := provider.WikidataProperties()
	assert.Len(t, pids, 11)
	assert.Equal(t, "P685", pids[0])
	assert.Equal(t, "P6018", pids[len(pids)-1])
	for _, v := range pids {
		p, ok := provider.ProviderForWikidataProperty(v)
		assert.True(t, ok, v)
		res, _ := provider.WikidataProperty(p)
		assert.Equal(t, v, res)
	}
}
