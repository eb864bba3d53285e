// Package config provides configuration management for GNtaxon.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Store: type, sqlite_path, postgres.*, neo4j.*
//   - Cache: taxon_path, map_path
//   - Web: timeout_sec, max_concurrent, retries, user_agent, service URLs
//   - Resolve: batch_size, enrichers, exclude_prefixes, corrections_path,
//     progress_every, progress_bar, metrics_path
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Resolve.CacheOnly (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNTAXON_ prefix with underscores for nesting:
//
//	GNTAXON_STORE_TYPE=postgres
//	GNTAXON_STORE_POSTGRES_HOST=localhost
//	GNTAXON_RESOLVE_BATCH_SIZE=100
//	GNTAXON_LOG_LEVEL=info
//	GNTAXON_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete GNtaxon configuration.
type Config struct {
	// Store selects and configures the graph storage backend.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Cache points to the offline bulk taxon cache files.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Web contains settings shared by all network enrichers.
	Web WebConfig `mapstructure:"web" yaml:"web"`

	// Resolve contains settings of the resolution run.
	Resolve ResolveConfig `mapstructure:"resolve" yaml:"resolve"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent enrichment workers.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// StoreConfig describes the graph store backend.
type StoreConfig struct {
	// Type is one of "memory", "sqlite", "postgres", "neo4j".
	Type string `mapstructure:"type" yaml:"type"`

	// SQLitePath is the location of the SQLite store file. Empty means
	// the default file in the cache directory.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// Postgres contains PostgreSQL connection settings.
	Postgres DatabaseConfig `mapstructure:"postgres" yaml:"postgres"`

	// Neo4j contains Neo4j connection settings.
	Neo4j Neo4jConfig `mapstructure:"neo4j" yaml:"neo4j"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// Neo4jConfig contains Neo4j connection parameters.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"      yaml:"uri"`
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	// Database is empty for the server default database.
	Database string `mapstructure:"database" yaml:"database"`
}

// CacheConfig locates the taxon cache and the taxon map files. Both files
// are tab-separated and may be gzip-compressed.
type CacheConfig struct {
	TaxonPath string `mapstructure:"taxon_path" yaml:"taxon_path"`
	MapPath   string `mapstructure:"map_path"   yaml:"map_path"`
}

// WebConfig contains settings for external taxonomy services.
type WebConfig struct {
	// TimeoutSec limits a single request, including reading the body.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxConcurrent is the process-wide limit of in-flight requests.
	MaxConcurrent int `mapstructure:"max_concurrent" yaml:"max_concurrent"`

	// Retries is the number of additional attempts after a transient failure.
	Retries int `mapstructure:"retries" yaml:"retries"`

	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	GNverifierURL  string `mapstructure:"gnverifier_url"  yaml:"gnverifier_url"`
	GBIFURL        string `mapstructure:"gbif_url"        yaml:"gbif_url"`
	INaturalistURL string `mapstructure:"inaturalist_url" yaml:"inaturalist_url"`
	EOLURL         string `mapstructure:"eol_url"         yaml:"eol_url"`
	WikidataURL    string `mapstructure:"wikidata_url"    yaml:"wikidata_url"`

	// DataSources restricts GNverifier to given data-source IDs.
	DataSources []int `mapstructure:"data_sources" yaml:"data_sources"`
}

// ResolveConfig contains settings of the resolution run.
type ResolveConfig struct {
	// BatchSize is the number of raw records committed per transaction.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// Enrichers is the ordered list of lookup sources to try.
	Enrichers []string `mapstructure:"enrichers" yaml:"enrichers"`

	// ExcludePrefixes lists external-id prefixes that are never resolved
	// automatically.
	ExcludePrefixes []string `mapstructure:"exclude_prefixes" yaml:"exclude_prefixes"`

	// CorrectionsPath is an optional YAML file with name corrections.
	CorrectionsPath string `mapstructure:"corrections_path" yaml:"corrections_path"`

	// ProgressEvery sets how often (in records) a progress line is logged.
	ProgressEvery int `mapstructure:"progress_every" yaml:"progress_every"`

	// ProgressBar shows a terminal progress bar during resolution.
	ProgressBar bool `mapstructure:"progress_bar" yaml:"progress_bar"`

	// MetricsPath is an optional Prometheus textfile written after a run.
	MetricsPath string `mapstructure:"metrics_path" yaml:"metrics_path"`

	// CacheOnly limits the chain to the offline bulk cache.
	// Runtime-only field.
	CacheOnly bool `mapstructure:"-" yaml:"-"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// Enricher names understood by Resolve.Enrichers.
const (
	EnricherCache       = "cache"
	EnricherGNverifier  = "gnverifier"
	EnricherGBIF        = "gbif"
	EnricherINaturalist = "inaturalist"
	EnricherEOL         = "eol"
	EnricherWikidata    = "wikidata"
)

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Store: StoreConfig{
			Type: "sqlite",
			Postgres: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "postgres",
				Database: "gntaxon",
				SSLMode:  "disable",
			},
			Neo4j: Neo4jConfig{
				URI:      "neo4j://localhost:7687",
				User:     "neo4j",
				Password: "neo4j",
			},
		},
		Web: WebConfig{
			TimeoutSec:     30,
			MaxConcurrent:  4,
			Retries:        2,
			UserAgent:      "gntaxon",
			GNverifierURL:  "https://verifier.globalnames.org",
			GBIFURL:        "https://api.gbif.org",
			INaturalistURL: "https://api.inaturalist.org",
			EOLURL:         "https://eol.org",
			WikidataURL:    "https://query.wikidata.org/sparql",
			DataSources:    []int{1, 3, 4, 9, 11, 12, 180},
		},
		Resolve: ResolveConfig{
			BatchSize: 100,
			Enrichers: []string{
				EnricherCache,
				EnricherGNverifier,
				EnricherGBIF,
				EnricherINaturalist,
				EnricherEOL,
				EnricherWikidata,
			},
			ProgressEvery: 1000,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
