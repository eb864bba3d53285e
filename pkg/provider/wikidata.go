package provider

import "sort"

// Wikidata properties that keep identifiers of other providers.
var wikidataProps = map[Provider]string{
	ITIS:             "P815",
	NCBI:             "P685",
	EOL:              "P830",
	WoRMS:            "P850",
	IRMNG:            "P5055",
	FishBase:         "P938",
	SeaLifeBase:      "P6018",
	GBIF:             "P846",
	INaturalistTaxon: "P3151",
	NBN:              "P3240",
	MSW:              "P959",
}

// WikidataProperty returns the Wikidata property id that stores
// identifiers of the provider.
func WikidataProperty(p Provider) (string, bool) {
	res, ok := wikidataProps[p]
	return res, ok
}

// ProviderForWikidataProperty is the reverse of WikidataProperty.
func ProviderForWikidataProperty(pid string) (Provider, bool) {
	for k, v := range wikidataProps {
		if v == pid {
			return k, true
		}
	}
	return Unknown, false
}

// WikidataProperties returns all mapped property ids in ascending order.
func WikidataProperties() []string {
	res := make([]string, 0, len(wikidataProps))
	for _, v := range wikidataProps {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool {
		if len(res[i]) != len(res[j]) {
			return len(res[i]) < len(res[j])
		}
		return res[i] < res[j]
	})
	return res
}
