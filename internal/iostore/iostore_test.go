package iostore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/iostore"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "taxa.sqlite")

	tests := []struct {
		msg    string
		opts   []config.Option
		target string
	}{
		{"memory", []config.Option{config.OptStoreType("memory")}, "memory"},
		{"sqlite", []config.Option{
			config.OptStoreType("sqlite"),
			config.OptStoreSQLitePath(path),
		}, path},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			cfg := config.New()
			cfg.Update(tt.opts)
			s, err := iostore.Open(ctx, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.target, iostore.Target(cfg))
			assert.NoError(t, s.Close())
		})
	}
}

func TestOpenUnknown(t *testing.T) {
	cfg := config.New()
	cfg.Store.Type = "redis"
	_, err := iostore.Open(context.Background(), cfg)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.StoreUnknownTypeError, gnErr.Code)
}
