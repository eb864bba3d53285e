package ioweb

import (
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/enricher"
)

// New creates a web enricher by its configuration name. All enrichers
// created with the same client share its request budget.
func New(
	name string,
	cfg config.WebConfig,
	client *Client,
) (enricher.Enricher, error) {
	switch name {
	case config.EnricherGNverifier:
		return NewGNverifier(cfg, client), nil
	case config.EnricherGBIF:
		return NewGBIF(cfg, client), nil
	case config.EnricherINaturalist:
		return NewINaturalist(cfg, client), nil
	case config.EnricherEOL:
		return NewEOL(cfg, client), nil
	case config.EnricherWikidata:
		return NewWikidata(cfg, client), nil
	}
	return nil, EnricherUnknownError(name)
}
