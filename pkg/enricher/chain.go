package enricher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnames/gntaxon/pkg/taxon"
)

// Chain tries its members in priority order and stops at the first one
// that materially enriches the taxon.
type Chain struct {
	members []Enricher
	calls   []atomic.Int64
	once    sync.Once
}

// NewChain creates a chain, members go from the most to the least
// preferred.
func NewChain(members ...Enricher) *Chain {
	return &Chain{
		members: members,
		calls:   make([]atomic.Int64, len(members)),
	}
}

func (c *Chain) Name() string {
	return "chain"
}

// Enrich implements Enricher.
func (c *Chain) Enrich(
	ctx context.Context,
	t taxon.Taxon,
) (taxon.Taxon, error) {
	res, _, err := c.Match(ctx, t)
	return res, err
}

// Match works like Enrich and also returns the name of the member that
// produced the match, or an empty string when nothing matched.
//
// A member failing with a service error is logged and skipped. The chain
// fails only when every member failed.
func (c *Chain) Match(
	ctx context.Context,
	t taxon.Taxon,
) (taxon.Taxon, string, error) {
	var errs []error
	for i, m := range c.members {
		if err := ctx.Err(); err != nil {
			return t, "", err
		}
		c.calls[i].Add(1)
		res, err := m.Enrich(ctx, t)
		if err != nil {
			if !IsServiceError(err) {
				return t, "", err
			}
			slog.Warn("Enricher failed, trying next one",
				"enricher", m.Name(),
				"name", t.Name,
				"externalId", t.ExternalID,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		if res.IsEnrichedFrom(t) {
			return res, m.Name(), nil
		}
	}

	if len(c.members) > 0 && len(errs) == len(c.members) {
		return t, "", AllEnrichersFailedError(t.Name, errs)
	}
	return t, "", nil
}

// Calls returns how many times each member was asked, in member order.
func (c *Chain) Calls() []int64 {
	res := make([]int64, len(c.calls))
	for i := range c.calls {
		res[i] = c.calls[i].Load()
	}
	return res
}

// Members returns names of chain members in priority order.
func (c *Chain) Members() []string {
	res := make([]string, len(c.members))
	for i, m := range c.members {
		res[i] = m.Name()
	}
	return res
}

// Shutdown shuts down all members once.
func (c *Chain) Shutdown() {
	c.once.Do(func() {
		for _, m := range c.members {
			m.Shutdown()
		}
	})
}
