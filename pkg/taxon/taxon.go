// Package taxon defines the taxon record shared by importers, enrichers
// and the taxon index.
package taxon

import (
	"strings"

	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
)

// PathSeparator separates elements of Path, PathIDs and PathNames.
const PathSeparator = " | "

// Property keys used when a taxon is stored as a set of node properties.
const (
	KeyName         = "name"
	KeyExternalID   = "externalId"
	KeyRank         = "rank"
	KeyPath         = "path"
	KeyPathIDs      = "pathIds"
	KeyPathNames    = "pathNames"
	KeyCommonNames  = "commonNames"
	KeyExternalURL  = "externalUrl"
	KeyThumbnailURL = "thumbnailUrl"

	KeyStatus     = "status"
	KeyCanonical  = "canonical"
	KeyUUID       = "uuid"
	KeyResolvedBy = "resolvedBy"
)

// Status is the resolution state of a raw taxon record.
type Status string

const (
	Unresolved      Status = "UNRESOLVED"
	Resolved        Status = "RESOLVED"
	NoMatch         Status = "NO_MATCH"
	ResolutionError Status = "RESOLUTION_ERROR"
)

// Taxon is a name with optional identity and lineage. Only Name is
// required.
//
// RelatedIDs lists ids of the same taxon at other providers, separated by
// PathSeparator. It is filled by enrichers and is not stored as a node
// property.
type Taxon struct {
	Name         string
	ExternalID   string
	Rank         string
	Path         string
	PathIDs      string
	PathNames    string
	CommonNames  string
	ExternalURL  string
	ThumbnailURL string
	RelatedIDs   string
}

// FromProperties builds a taxon from stored node properties. Unknown keys
// are ignored.
func FromProperties(props map[string]string) Taxon {
	return Taxon{
		Name:         props[KeyName],
		ExternalID:   props[KeyExternalID],
		Rank:         props[KeyRank],
		Path:         props[KeyPath],
		PathIDs:      props[KeyPathIDs],
		PathNames:    props[KeyPathNames],
		CommonNames:  props[KeyCommonNames],
		ExternalURL:  props[KeyExternalURL],
		ThumbnailURL: props[KeyThumbnailURL],
	}
}

// Properties converts the taxon to node properties, skipping empty fields.
func (t Taxon) Properties() map[string]string {
	res := make(map[string]string)
	add := func(k, v string) {
		if v != "" {
			res[k] = v
		}
	}
	add(KeyName, t.Name)
	add(KeyExternalID, t.ExternalID)
	add(KeyRank, t.Rank)
	add(KeyPath, t.Path)
	add(KeyPathIDs, t.PathIDs)
	add(KeyPathNames, t.PathNames)
	add(KeyCommonNames, t.CommonNames)
	add(KeyExternalURL, t.ExternalURL)
	add(KeyThumbnailURL, t.ThumbnailURL)
	return res
}

// Key is the identity of a canonical taxon: the external id when known,
// the exact name otherwise.
func (t Taxon) Key() string {
	if t.ExternalID != "" {
		return t.ExternalID
	}
	return t.Name
}

// UUID is a deterministic UUID v5 derived from the taxon key.
func (t Taxon) UUID() uuid.UUID {
	return gnuuid.New(t.Key())
}

// IsEnrichedFrom reports whether t adds or changes the external id or the
// path of the original record.
func (t Taxon) IsEnrichedFrom(orig Taxon) bool {
	if t.ExternalID != "" && t.ExternalID != orig.ExternalID {
		return true
	}
	return t.Path != "" && t.Path != orig.Path
}

// Merge returns t with blank fields taken from other.
func (t Taxon) Merge(other Taxon) Taxon {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	t.Name = pick(t.Name, other.Name)
	t.ExternalID = pick(t.ExternalID, other.ExternalID)
	t.Rank = pick(t.Rank, other.Rank)
	t.Path = pick(t.Path, other.Path)
	t.PathIDs = pick(t.PathIDs, other.PathIDs)
	t.PathNames = pick(t.PathNames, other.PathNames)
	t.CommonNames = pick(t.CommonNames, other.CommonNames)
	t.ExternalURL = pick(t.ExternalURL, other.ExternalURL)
	t.ThumbnailURL = pick(t.ThumbnailURL, other.ThumbnailURL)
	t.RelatedIDs = pick(t.RelatedIDs, other.RelatedIDs)
	return t
}

// JoinPath joins path elements with PathSeparator, skipping blanks.
func JoinPath(elements ...string) string {
	var res []string
	for _, v := range elements {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return strings.Join(res, PathSeparator)
}

// SplitPath is the reverse of JoinPath. Elements are trimmed.
func SplitPath(path string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	res := strings.Split(path, "|")
	for i := range res {
		res[i] = strings.TrimSpace(res[i])
	}
	return res
}
