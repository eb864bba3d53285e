package ioweb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gnames/gntaxon/internal/ioweb"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webConfig(url string, retries int) config.WebConfig {
	cfg := config.New().Web
	cfg.TimeoutSec = 5
	cfg.Retries = retries
	cfg.GNverifierURL = url
	cfg.GBIFURL = url
	cfg.INaturalistURL = url
	cfg.EOLURL = url
	cfg.WikidataURL = url
	return cfg
}

func TestClientGet(t *testing.T) {
	tests := []struct {
		msg      string
		statuses []int
		retries  int
		body     string
		hits     int64
		noMatch  bool
		isErr    bool
	}{
		{"ok", []int{200}, 0, "hello", 1, false, false},
		{"not found", []int{404}, 2, "", 1, true, true},
		{"not acceptable", []int{406}, 2, "", 1, true, true},
		{"retry server error", []int{503, 200}, 1, "hello", 2, false, false},
		{"retry throttling", []int{429, 200}, 1, "hello", 2, false, false},
		{"no retries left", []int{500, 200}, 0, "", 1, false, true},
		{"bad request is permanent", []int{400, 200}, 2, "", 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			var hits atomic.Int64
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "gntaxon", r.Header.Get("User-Agent"))
					i := int(hits.Add(1)) - 1
					if i >= len(tt.statuses) {
						i = len(tt.statuses) - 1
					}
					w.WriteHeader(tt.statuses[i])
					if tt.statuses[i] == 200 {
						w.Write([]byte("hello"))
					}
				}))
			defer srv.Close()

			cl := ioweb.NewClient(webConfig(srv.URL, tt.retries))
			defer cl.CloseIdleConnections()
			body, err := cl.Get(context.Background(), srv.URL, "text/plain")
			assert.Equal(t, tt.hits, hits.Load())
			if tt.isErr {
				require.Error(t, err)
				assert.Equal(t, tt.noMatch, errors.Is(err, ioweb.ErrNoMatch))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestClientCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hello"))
		}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cl := ioweb.NewClient(webConfig(srv.URL, 3))
	_, err := cl.Get(ctx, srv.URL, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	cfg := webConfig("http://localhost", 0)
	cl := ioweb.NewClient(cfg)
	for _, v := range []string{
		config.EnricherGNverifier, config.EnricherGBIF,
		config.EnricherINaturalist, config.EnricherEOL, config.EnricherWikidata,
	} {
		e, err := ioweb.New(v, cfg, cl)
		require.NoError(t, err)
		assert.Equal(t, v, e.Name())
		e.Shutdown()
	}
	_, err := ioweb.New("cache", cfg, cl)
	assert.Error(t, err)
}
