// Package corrector normalizes raw organism names before they are looked
// up. It fixes whitespace, applies curated corrections and reduces
// scientific names to their simple canonical form.
package corrector

import (
	"strings"

	"github.com/gnames/gnlib"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gntaxon/pkg/parserpool"
)

// Corrector returns a cleaned-up version of a name. The result is empty
// only for blank input.
type Corrector interface {
	Correct(name string) string
}

type corrector struct {
	fixes map[string]string
	pool  parserpool.Pool
}

// New creates a Corrector. Keys of fixes are matched against the
// whitespace-normalized name. A nil pool disables canonical reduction.
func New(pool parserpool.Pool, fixes map[string]string) Corrector {
	res := &corrector{
		fixes: make(map[string]string, len(fixes)),
		pool:  pool,
	}
	for k, v := range fixes {
		k, v = normalize(k), normalize(v)
		if k != "" && v != "" {
			res.fixes[k] = v
		}
	}
	return res
}

func (c *corrector) Correct(name string) string {
	res := normalize(name)
	if res == "" {
		return ""
	}
	if fix, ok := c.fixes[res]; ok {
		res = fix
	}
	if c.pool == nil {
		return res
	}

	p, err := c.pool.Parse(res, nomcode.Zoological)
	if err != nil || !p.Parsed || p.Virus || p.Canonical == nil {
		return res
	}
	if p.Canonical.Simple != "" {
		res = p.Canonical.Simple
	}
	return res
}

// normalize repairs broken UTF-8, trims the name, drops surrounding
// quotes and collapses inner whitespace.
func normalize(s string) string {
	s = strings.TrimSpace(gnlib.FixUtf8(s))
	s = strings.Trim(s, `"'`)
	return strings.Join(strings.Fields(s), " ")
}
