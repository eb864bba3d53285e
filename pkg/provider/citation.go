package provider

import (
	"strings"
)

// CitationFragment joins non-blank contributor, year and description with
// ". " in that order.
func CitationFragment(contributor, year, description string) string {
	var parts []string
	for _, v := range []string{contributor, year, description} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ". "))
}

// SelectValue returns the value of the most preferred non-blank key.
// Candidates go in increasing order of preference.
func SelectValue(m map[string]string, candidates ...string) string {
	var res string
	for _, k := range candidates {
		if v, ok := m[k]; ok && strings.TrimSpace(v) != "" {
			res = v
		}
	}
	return res
}
