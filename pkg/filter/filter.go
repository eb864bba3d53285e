// Package filter provides predicates that keep raw taxon records out of
// automatic resolution.
package filter

import (
	"strings"
	"unicode"

	"github.com/gnames/gntaxon/pkg/provider"
	"github.com/gnames/gntaxon/pkg/taxon"
)

// Exclude returns true if a record must be skipped.
type Exclude func(taxon.Taxon) bool

var badNames = map[string]struct{}{
	"sp":           {},
	"sp.":          {},
	"spp":          {},
	"spp.":         {},
	"na":           {},
	"n/a":          {},
	"none":         {},
	"null":         {},
	"unknown":      {},
	"unidentified": {},
	"no name":      {},
}

// KnownBadNames skips names that cannot identify any taxon: placeholders,
// one-letter names, and names without letters.
func KnownBadNames() Exclude {
	return func(t taxon.Taxon) bool {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if len([]rune(name)) < 2 {
			return true
		}
		if _, ok := badNames[name]; ok {
			return true
		}
		return !strings.ContainsFunc(name, unicode.IsLetter)
	}
}

// Prefixes skips records with external ids that start with
// any of the prefixes.
func Prefixes(prefixes ...string) Exclude {
	return func(t taxon.Taxon) bool {
		for _, v := range prefixes {
			if v != "" && strings.HasPrefix(t.ExternalID, v) {
				return true
			}
		}
		return false
	}
}

// Any skips a record when at least one of the filters does.
func Any(filters ...Exclude) Exclude {
	return func(t taxon.Taxon) bool {
		for _, f := range filters {
			if f != nil && f(t) {
				return true
			}
		}
		return false
	}
}

// ForCachePass is used when resolving against the offline cache only.
// iNaturalist taxon ids are left for the iNaturalist service.
func ForCachePass() Exclude {
	return Any(
		KnownBadNames(),
		Prefixes(provider.INaturalistTaxon.Prefix()),
	)
}
