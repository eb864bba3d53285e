package filter_test

import (
	"testing"

	"github.com/gnames/gntaxon/pkg/filter"
	"github.com/gnames/gntaxon/pkg/taxon"
	"github.com/stretchr/testify/assert"
)

func TestKnownBadNames(t *testing.T) {
	tests := []struct {
		name string
		res  bool
	}{
		{"Homo sapiens", false},
		{"Aa", false},
		{"", true},
		{"  ", true},
		{"x", true},
		{"sp.", true},
		{"Unknown", true},
		{"1234", true},
		{"?-?", true},
	}
	f := filter.KnownBadNames()
	for _, v := range tests {
		assert.Equal(t, v.res, f(taxon.Taxon{Name: v.name}), v.name)
	}
}

func TestPrefixes(t *testing.T) {
	f := filter.Prefixes("INAT_TAXON:", "")
	assert.True(t, f(taxon.Taxon{Name: "A b", ExternalID: "INAT_TAXON:1"}))
	assert.False(t, f(taxon.Taxon{Name: "A b", ExternalID: "INAT:1"}))
	assert.False(t, f(taxon.Taxon{Name: "A b"}))
}

func TestForCachePass(t *testing.T) {
	f := filter.ForCachePass()
	assert.True(t, f(taxon.Taxon{Name: "Heterotheca grandiflora",
		ExternalID: "INAT_TAXON:58831"}))
	assert.True(t, f(taxon.Taxon{Name: "sp"}))
	assert.False(t, f(taxon.Taxon{Name: "Homo sapiens", ExternalID: "EOL:327955"}))
	assert.False(t, filter.Any()(taxon.Taxon{}))
}
