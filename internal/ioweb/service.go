package ioweb

import (
	"context"
	"errors"
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gntaxon/pkg/enricher"
)

// service keeps what every web enricher needs.
type service struct {
	name   string
	base   string
	client *Client
	enc    gnfmt.GNjson
}

func newService(name, base string, client *Client) service {
	return service{
		name:   name,
		base:   strings.TrimRight(base, "/"),
		client: client,
		enc:    gnfmt.GNjson{},
	}
}

func (s service) Name() string {
	return s.name
}

// Shutdown releases idle connections of the shared client.
func (s service) Shutdown() {
	s.client.CloseIdleConnections()
}

// getJSON decodes the response into out. The returned bool is false when
// the service does not know the taxon. Other failures are service errors
// about the taxon called name.
func (s service) getJSON(
	ctx context.Context,
	name, rawURL string,
	out any,
) (bool, error) {
	body, ok, err := s.getBody(ctx, name, rawURL, "application/json")
	if !ok || err != nil {
		return ok, err
	}
	if err = s.enc.Decode(body, out); err != nil {
		return false, enricher.ServiceError(s.name, name, err)
	}
	return true, nil
}

func (s service) getBody(
	ctx context.Context,
	name, rawURL, accept string,
) ([]byte, bool, error) {
	body, err := s.client.Get(ctx, rawURL, accept)
	if errors.Is(err, ErrNoMatch) {
		return nil, false, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, enricher.ServiceError(s.name, name, err)
	}
	return body, true, nil
}
