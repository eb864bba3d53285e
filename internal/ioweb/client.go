// Package ioweb implements enrichers that query external taxonomy web
// services. All of them share one Client, so the request budget and the
// connection pool are process-wide.
package ioweb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gnames/gntaxon/pkg/config"
	"golang.org/x/sync/semaphore"
)

// ErrNoMatch is returned by Client.Get when the service answers 404 or
// 406, meaning it does not know the requested taxon.
var ErrNoMatch = errors.New("no match")

// maxBody limits the size of a single response.
const maxBody = 16 << 20

// Client is an HTTP client with a shared concurrency budget, per-request
// timeout and retries of transient failures.
type Client struct {
	http      *http.Client
	sem       *semaphore.Weighted
	userAgent string
	retries   int
	interval  time.Duration
}

// NewClient creates a client from web settings.
func NewClient(cfg config.WebConfig) *Client {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 1
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = maxConc

	return &Client{
		http: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: tr,
		},
		sem:       semaphore.NewWeighted(int64(maxConc)),
		userAgent: cfg.UserAgent,
		retries:   cfg.Retries,
		interval:  250 * time.Millisecond,
	}
}

// Get fetches the URL and returns the response body. Server errors,
// throttling and network failures are retried.
func (c *Client) Get(
	ctx context.Context,
	rawURL string,
	accept string,
) ([]byte, error) {
	var res []byte
	op := func() error {
		var err error
		res, err = c.get(ctx, rawURL, accept)
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.interval
	var b backoff.BackOff = backoff.WithMaxRetries(eb, uint64(c.retries))
	b = backoff.WithContext(b, ctx)

	notify := func(err error, d time.Duration) {
		slog.Debug("Retrying request", "url", rawURL, "in", d, "error", err)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) get(
	ctx context.Context,
	rawURL string,
	accept string,
) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, backoff.Permanent(err)
	}
	defer c.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusNotAcceptable:
		return nil, backoff.Permanent(ErrNoMatch)
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return nil, fmt.Errorf("%s: status %d", rawURL, resp.StatusCode)
	default:
		return nil, backoff.Permanent(
			fmt.Errorf("%s: status %d", rawURL, resp.StatusCode),
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
