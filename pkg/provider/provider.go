// Package provider keeps the immutable registry of taxonomy providers.
// Every external taxon id starts with a provider prefix ("GBIF:2436436",
// "EOL:327955"). The registry maps ids to providers and to the web pages
// of the providers.
package provider

import (
	"strings"
)

// Provider is an enumerated taxonomy provider.
type Provider int

const (
	Unknown Provider = iota
	EOL
	EOLV2
	WoRMS
	ENVO
	Wikipedia
	GulfBase
	GAME
	CMECS
	BioInfo
	GBIF
	INaturalist
	INaturalistTaxon
	AFD
	APNI
	IndexFungorum
	NCBI
	NBN
	DOI
	IRMNG
	OTT
	ITIS
	Wikidata
	FishBase
	SeaLifeBase
	MSW
	COL
	HTTP
	HTTPS
)

// entry is a row of the registry. Suffix is appended to generated URLs.
type entry struct {
	provider Provider
	name     string
	prefix   string
	url      string
	suffix   string
}

var registry = []entry{
	{EOL, "Encyclopedia of Life", "EOL:", "http://eol.org/pages/", ""},
	{EOLV2, "Encyclopedia of Life v2", "EOL_V2:", "https://eol.org/pages/", ""},
	{WoRMS, "World Register of Marine Species", "WORMS:",
		"http://www.marinespecies.org/aphia.php?p=taxdetails&id=", ""},
	{ENVO, "Environment Ontology", "ENVO:", "http://purl.obolibrary.org/obo/ENVO_", ""},
	{Wikipedia, "Wikipedia", "W:", "http://wikipedia.org/wiki/", ""},
	{GulfBase, "GulfBase", "GULFBASE:",
		"http://gulfbase.org/biogomx/biospecies.php?species=", ""},
	{GAME, "FWC GAME", "GAME:", "http://public.myfwc.com/FWRI/GAME/Survey.aspx?id=", ""},
	{CMECS, "CMECS", "CMECS:",
		"http://cmecscatalog.org/classification/aquaticSetting/", ""},
	{BioInfo, "BioInfo", "BioInfo:", "http://bioinfo.org.uk/html/b", ".htm"},
	{GBIF, "GBIF Backbone Taxonomy", "GBIF:", "http://www.gbif.org/species/", ""},
	{INaturalist, "iNaturalist observations", "INAT:",
		"http://www.inaturalist.org/observations/", ""},
	{INaturalistTaxon, "iNaturalist taxa", "INAT_TAXON:",
		"https://inaturalist.org/taxa/", ""},
	{AFD, "Australian Faunal Directory", "AFD:",
		"http://www.environment.gov.au/biodiversity/abrs/online-resources/fauna/afd/taxa/", ""},
	{APNI, "Australian Plant Name Index", "BDA:", "http://biodiversity.org.au/apni.taxon/", ""},
	{IndexFungorum, "Index Fungorum", "IF:",
		"http://www.indexfungorum.org/names/NamesRecord.asp?RecordID=", ""},
	{NCBI, "NCBI Taxonomy", "NCBI:",
		"https://www.ncbi.nlm.nih.gov/Taxonomy/Browser/wwwtax.cgi?id=", ""},
	{NBN, "National Biodiversity Network", "NBN:", "https://data.nbn.org.uk/Taxa/", ""},
	{DOI, "DOI", "doi:", "http://dx.doi.org/", ""},
	{IRMNG, "Interim Register of Marine and Nonmarine Genera", "IRMNG:",
		irmngBase + "ir_search.list_species?sp_id=", ""},
	{OTT, "Open Tree of Life", "OTT:",
		"https://tree.opentreeoflife.org/taxonomy/browse?id=", ""},
	{ITIS, "Integrated Taxonomic Information System", "ITIS:",
		"http://www.itis.gov/servlet/SingleRpt/SingleRpt?search_topic=TSN&search_value=", ""},
	{Wikidata, "Wikidata", "WD:", "https://www.wikidata.org/wiki/", ""},
	{FishBase, "FishBase", "FBC:FB:SpecCode:", "http://fishbase.org/summary/", ""},
	{SeaLifeBase, "SeaLifeBase", "FBC:SLB:SpecCode:", "http://sealifebase.org/summary/", ""},
	{MSW, "Mammal Species of the World", "MSW:",
		"http://www.departments.bucknell.edu/biology/resources/msw3/browse.asp?id=", ""},
	{COL, "Catalogue of Life", "COL:", "https://www.catalogueoflife.org/data/taxon/", ""},
	{HTTP, "Web page", "http://", "http://", ""},
	{HTTPS, "Secure web page", "https://", "https://", ""},
}

const irmngBase = "http://www.marine.csiro.au/mirrorsearch/"

var byProvider = func() map[Provider]entry {
	res := make(map[Provider]entry, len(registry))
	for _, v := range registry {
		res[v.provider] = v
	}
	return res
}()

// Prefix returns the id prefix of the provider, empty for Unknown.
func (p Provider) Prefix() string {
	return byProvider[p].prefix
}

// String returns the human-readable name of the provider.
func (p Provider) String() string {
	if e, ok := byProvider[p]; ok {
		return e.name
	}
	return "Unknown"
}

// Providers returns all registered providers in registry order.
func Providers() []Provider {
	res := make([]Provider, len(registry))
	for i, v := range registry {
		res[i] = v.provider
	}
	return res
}

// ProviderFor finds the provider of an external id. The longest matching
// prefix wins, so the answer does not depend on registry order.
func ProviderFor(externalID string) (Provider, bool) {
	e, ok := lookup(externalID)
	if !ok {
		return Unknown, false
	}
	return e.provider, true
}

// IsSupported is true if the id starts with a known prefix.
func IsSupported(externalID string) bool {
	_, ok := lookup(externalID)
	return ok
}

// StripPrefix returns the provider-local part of an id. Unsupported ids
// are returned as is.
func StripPrefix(externalID string) string {
	e, ok := lookup(externalID)
	if !ok || e.provider == HTTP || e.provider == HTTPS {
		return externalID
	}
	return externalID[len(e.prefix):]
}

// URLFor builds the web page URL of an external id. It returns false for
// blank or unsupported ids.
func URLFor(externalID string) (string, bool) {
	e, ok := lookup(externalID)
	if !ok {
		return "", false
	}
	id := externalID[len(e.prefix):]
	if e.provider == IRMNG {
		return irmngURL(id), true
	}
	return e.url + id + e.suffix, true
}

// JSONURL wraps the URL of an external id into a tiny JSON object,
// or returns "{}" when there is no URL.
func JSONURL(externalID string) string {
	u, ok := URLFor(externalID)
	if !ok {
		return "{}"
	}
	return `{"url":"` + u + `"}`
}

func irmngURL(id string) string {
	switch len(id) {
	case 6:
		return irmngBase + "ir_search.list_genera?fam_id=" + id
	case 7:
		return irmngBase + "ir_search.list_species?gen_id=" + id
	default:
		return irmngBase + "ir_search.list_species?sp_id=" + id
	}
}

func lookup(externalID string) (entry, bool) {
	var res entry
	if strings.TrimSpace(externalID) == "" {
		return res, false
	}
	for _, v := range registry {
		if strings.HasPrefix(externalID, v.prefix) &&
			len(v.prefix) > len(res.prefix) {
			res = v
		}
	}
	return res, res.prefix != ""
}
