package iometrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/iometrics"
	"github.com/gnames/gntaxon/pkg/errcode"
	"github.com/gnames/gntaxon/pkg/gntaxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gntaxon.prom")
	st := gntaxon.Stats{
		Resolved:  12,
		NoMatch:   3,
		Errors:    1,
		Batches:   2,
		Conflicts: 4,
		Elapsed:   1500 * time.Millisecond,
	}
	calls := []iometrics.Calls{
		{Enricher: "cache", Count: 16},
		{Enricher: "gbif", Count: 4},
	}
	require.NoError(t, iometrics.Write(path, st, calls))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	txt := string(data)
	for _, v := range []string{
		`gntaxon_resolve_records{outcome="resolved"} 12`,
		`gntaxon_resolve_records{outcome="no_match"} 3`,
		`gntaxon_resolve_records{outcome="error"} 1`,
		`gntaxon_resolve_records{outcome="skipped"} 0`,
		"gntaxon_resolve_batches 2",
		"gntaxon_resolve_conflicts 4",
		"gntaxon_resolve_duration_seconds 1.5",
		`gntaxon_enricher_calls_total{enricher="cache"} 16`,
		`gntaxon_enricher_calls_total{enricher="gbif"} 4`,
	} {
		assert.Contains(t, txt, v)
	}

	// the file is replaced on the next run
	require.NoError(t, iometrics.Write(path, gntaxon.Stats{}, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "gntaxon_enricher_calls_total")
}

func TestWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "gntaxon.prom")
	err := iometrics.Write(path, gntaxon.Stats{}, nil)
	require.Error(t, err)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.MetricsWriteError, gnErr.Code)
}
