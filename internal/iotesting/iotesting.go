// Package iotesting provides shared settings for integration tests that
// need running database servers.
package iotesting

import (
	"os"
	"strconv"
	"testing"

	"github.com/gnames/gntaxon/pkg/config"
)

// TestDatabaseName is used by PostgreSQL tests unless
// GNTAXON_TEST_PG_DATABASE says otherwise. Tests truncate its tables.
const TestDatabaseName = "gntaxon_test"

// PostgresConfig returns connection settings from GNTAXON_TEST_PG_*
// variables. The test is skipped when GNTAXON_TEST_PG_HOST is not set or
// when tests run with -short.
func PostgresConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	host := lookup(t, "GNTAXON_TEST_PG_HOST")

	cfg := config.New().Store.Postgres
	cfg.Host = host
	cfg.Database = TestDatabaseName
	if v := os.Getenv("GNTAXON_TEST_PG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			t.Fatalf("bad GNTAXON_TEST_PG_PORT %q: %v", v, err)
		}
		cfg.Port = port
	}
	setString(&cfg.User, "GNTAXON_TEST_PG_USER")
	setString(&cfg.Password, "GNTAXON_TEST_PG_PASSWORD")
	setString(&cfg.Database, "GNTAXON_TEST_PG_DATABASE")
	return cfg
}

// Neo4jConfig returns connection settings from GNTAXON_TEST_NEO4J_*
// variables. The test is skipped when GNTAXON_TEST_NEO4J_URI is not set or
// when tests run with -short. Everything in that database gets deleted.
func Neo4jConfig(t *testing.T) config.Neo4jConfig {
	t.Helper()
	uri := lookup(t, "GNTAXON_TEST_NEO4J_URI")

	cfg := config.New().Store.Neo4j
	cfg.URI = uri
	setString(&cfg.User, "GNTAXON_TEST_NEO4J_USER")
	setString(&cfg.Password, "GNTAXON_TEST_NEO4J_PASSWORD")
	setString(&cfg.Database, "GNTAXON_TEST_NEO4J_DATABASE")
	return cfg
}

func lookup(t *testing.T, key string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	v := os.Getenv(key)
	if v == "" {
		t.Skipf("%s is not set", key)
	}
	return v
}

func setString(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
