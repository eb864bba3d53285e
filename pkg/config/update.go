package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Resolve.CacheOnly).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	addStr := func(s string, fn func(string) Option) {
		if s != "" {
			res = append(res, fn(s))
		}
	}
	addInt := func(i int, fn func(int) Option) {
		if i > 0 {
			res = append(res, fn(i))
		}
	}

	addStr(c.Store.Type, OptStoreType)
	addStr(c.Store.SQLitePath, OptStoreSQLitePath)
	pg := c.Store.Postgres
	addStr(pg.Host, OptPostgresHost)
	addInt(pg.Port, OptPostgresPort)
	addStr(pg.User, OptPostgresUser)
	addStr(pg.Password, OptPostgresPassword)
	addStr(pg.Database, OptPostgresDatabase)
	addStr(pg.SSLMode, OptPostgresSSLMode)
	neo := c.Store.Neo4j
	addStr(neo.URI, OptNeo4jURI)
	addStr(neo.User, OptNeo4jUser)
	addStr(neo.Password, OptNeo4jPassword)
	addStr(neo.Database, OptNeo4jDatabase)

	addStr(c.Cache.TaxonPath, OptCacheTaxonPath)
	addStr(c.Cache.MapPath, OptCacheMapPath)

	w := c.Web
	addInt(w.TimeoutSec, OptWebTimeoutSec)
	addInt(w.MaxConcurrent, OptWebMaxConcurrent)
	res = append(res, OptWebRetries(w.Retries))
	addStr(w.UserAgent, OptWebUserAgent)
	addStr(w.GNverifierURL, OptWebGNverifierURL)
	addStr(w.GBIFURL, OptWebGBIFURL)
	addStr(w.INaturalistURL, OptWebINaturalistURL)
	addStr(w.EOLURL, OptWebEOLURL)
	addStr(w.WikidataURL, OptWebWikidataURL)
	if len(w.DataSources) > 0 {
		res = append(res, OptWebDataSources(w.DataSources))
	}

	r := c.Resolve
	addInt(r.BatchSize, OptResolveBatchSize)
	if len(r.Enrichers) > 0 {
		res = append(res, OptResolveEnrichers(r.Enrichers))
	}
	if len(r.ExcludePrefixes) > 0 {
		res = append(res, OptResolveExcludePrefixes(r.ExcludePrefixes))
	}
	addStr(r.CorrectionsPath, OptResolveCorrectionsPath)
	addInt(r.ProgressEvery, OptResolveProgressEvery)
	res = append(res, OptResolveProgressBar(r.ProgressBar))
	addStr(r.MetricsPath, OptResolveMetricsPath)

	addStr(c.Log.Format, OptLogFormat)
	addStr(c.Log.Level, OptLogLevel)
	addStr(c.Log.Destination, OptLogDestination)

	addInt(c.JobsNumber, OptJobsNumber)
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidURL(name, s string) bool {
	u, err := url.Parse(s)
	res := err == nil && (u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""
	if !res {
		gn.Warn("<em>%s</em> is not a valid URL, ignoring '%s'", name, s)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Store.Type": {"memory": s, "sqlite": s, "postgres": s,
			"neo4j": s},
		"Postgres.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Resolve.Enrichers": {EnricherCache: s, EnricherGNverifier: s,
			EnricherGBIF: s, EnricherINaturalist: s, EnricherEOL: s,
			EnricherWikidata: s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	if _, ok := data[name][val]; ok {
		return true
	}

	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
