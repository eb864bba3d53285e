package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptStoreType sets the graph store backend.
// Valid values: "memory", "sqlite", "postgres", "neo4j".
func OptStoreType(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Store.Type", s) {
			c.Store.Type = s
		}
	}
}

// OptStoreSQLitePath sets the location of the SQLite store file.
func OptStoreSQLitePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("SQLite Path", s) {
			c.Store.SQLitePath = s
		}
	}
}

// OptPostgresHost sets the PostgreSQL server hostname or IP address.
func OptPostgresHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres Host", s) {
			c.Store.Postgres.Host = s
		}
	}
}

// OptPostgresPort sets the PostgreSQL server port number.
func OptPostgresPort(i int) Option {
	return func(c *Config) {
		if isValidInt("Postgres Port", i) {
			c.Store.Postgres.Port = i
		}
	}
}

// OptPostgresUser sets the PostgreSQL database username.
func OptPostgresUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres User", s) {
			c.Store.Postgres.User = s
		}
	}
}

// OptPostgresPassword sets the PostgreSQL database password.
func OptPostgresPassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres Password", s) {
			c.Store.Postgres.Password = s
		}
	}
}

// OptPostgresDatabase sets the PostgreSQL database name to connect to.
func OptPostgresDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres Database", s) {
			c.Store.Postgres.Database = s
		}
	}
}

// OptPostgresSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptPostgresSSLMode(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Postgres.SSLMode", s) {
			c.Store.Postgres.SSLMode = s
		}
	}
}

// OptNeo4jURI sets the bolt/neo4j URI of the graph server.
func OptNeo4jURI(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Neo4j URI", s) {
			c.Store.Neo4j.URI = s
		}
	}
}

func OptNeo4jUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Neo4j User", s) {
			c.Store.Neo4j.User = s
		}
	}
}

func OptNeo4jPassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Neo4j Password", s) {
			c.Store.Neo4j.Password = s
		}
	}
}

// OptNeo4jDatabase selects a non-default Neo4j database.
func OptNeo4jDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Neo4j Database", s) {
			c.Store.Neo4j.Database = s
		}
	}
}

// OptCacheTaxonPath sets the path to the taxon cache TSV file.
func OptCacheTaxonPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Cache Taxon Path", s) {
			c.Cache.TaxonPath = s
		}
	}
}

// OptCacheMapPath sets the path to the taxon map TSV file.
func OptCacheMapPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Cache Map Path", s) {
			c.Cache.MapPath = s
		}
	}
}

// OptWebTimeoutSec sets the per-request timeout in seconds.
func OptWebTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Web Timeout", i) {
			c.Web.TimeoutSec = i
		}
	}
}

// OptWebMaxConcurrent sets the limit of simultaneous outbound requests.
func OptWebMaxConcurrent(i int) Option {
	return func(c *Config) {
		if isValidInt("Web Max Concurrent", i) {
			c.Web.MaxConcurrent = i
		}
	}
}

// OptWebRetries sets how many times a transient failure is retried.
// Zero disables retries.
func OptWebRetries(i int) Option {
	return func(c *Config) {
		if i < 0 {
			isValidInt("Web Retries", i)
			return
		}
		c.Web.Retries = i
	}
}

func OptWebUserAgent(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Web User Agent", s) {
			c.Web.UserAgent = s
		}
	}
}

func OptWebGNverifierURL(s string) Option {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	return func(c *Config) {
		if isValidURL("GNverifier URL", s) {
			c.Web.GNverifierURL = s
		}
	}
}

func OptWebGBIFURL(s string) Option {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	return func(c *Config) {
		if isValidURL("GBIF URL", s) {
			c.Web.GBIFURL = s
		}
	}
}

func OptWebINaturalistURL(s string) Option {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	return func(c *Config) {
		if isValidURL("iNaturalist URL", s) {
			c.Web.INaturalistURL = s
		}
	}
}

func OptWebEOLURL(s string) Option {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	return func(c *Config) {
		if isValidURL("EOL URL", s) {
			c.Web.EOLURL = s
		}
	}
}

func OptWebWikidataURL(s string) Option {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	return func(c *Config) {
		if isValidURL("Wikidata URL", s) {
			c.Web.WikidataURL = s
		}
	}
}

// OptWebDataSources restricts GNverifier matches to given data sources.
func OptWebDataSources(ii []int) Option {
	return func(c *Config) {
		if len(ii) > 0 {
			c.Web.DataSources = ii
		}
	}
}

// OptResolveBatchSize sets the number of records committed per transaction.
func OptResolveBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Resolve.BatchSize = i
		}
	}
}

// OptResolveEnrichers sets the ordered list of enrichers. Unknown names
// reject the whole list.
func OptResolveEnrichers(ss []string) Option {
	var names []string
	for _, v := range ss {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			names = append(names, v)
		}
	}
	return func(c *Config) {
		if len(names) == 0 {
			return
		}
		for _, v := range names {
			if !isValidEnum("Resolve.Enrichers", v) {
				return
			}
		}
		c.Resolve.Enrichers = names
	}
}

// OptResolveExcludePrefixes sets external-id prefixes that are skipped.
func OptResolveExcludePrefixes(ss []string) Option {
	var res []string
	for _, v := range ss {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return func(c *Config) {
		if len(res) > 0 {
			c.Resolve.ExcludePrefixes = res
		}
	}
}

func OptResolveCorrectionsPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Corrections Path", s) {
			c.Resolve.CorrectionsPath = s
		}
	}
}

func OptResolveProgressEvery(i int) Option {
	return func(c *Config) {
		if isValidInt("Progress Every", i) {
			c.Resolve.ProgressEvery = i
		}
	}
}

func OptResolveProgressBar(b bool) Option {
	return func(c *Config) {
		c.Resolve.ProgressBar = b
	}
}

func OptResolveMetricsPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Metrics Path", s) {
			c.Resolve.MetricsPath = s
		}
	}
}

// OptResolveCacheOnly limits resolution to the offline cache.
// Runtime-only field - not in ToOptions().
func OptResolveCacheOnly(b bool) Option {
	return func(c *Config) {
		c.Resolve.CacheOnly = b
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent enrichment workers.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
