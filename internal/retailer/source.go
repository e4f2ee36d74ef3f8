// Package retailer runs a text search against a retail site and reports the price of
// the top hit. Endpoints and selectors are hard-coded and break when the sites change.
package retailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dealscan/internal/config"
	"dealscan/internal/model"
	"dealscan/internal/upstream"
)

const searchTimeout = 15 * time.Second

var (
	ErrNoResult          = errors.New("retailer: no result")
	ErrMissingCredential = errors.New("retailer: missing credential")
)

// Source is one searchable retailer.
type Source interface {
	Name() string
	// Search returns the top hit for term. The record's Price is invalid when the hit
	// carried no usable price.
	Search(ctx context.Context, term string) (model.PriceRecord, error)
	// Ready reports whether the source has everything it needs to run.
	Ready() error
}

// FromConfig builds the configured sources, in configured order.
func FromConfig(cfg *config.Config) ([]Source, error) {
	client := upstream.NewClient(searchTimeout)

	sources := make([]Source, 0, len(cfg.Retailers))
	for _, name := range cfg.Retailers {
		switch name {
		case model.RetailerWoolworths:
			sources = append(sources, &Woolworths{client: client})
		case model.RetailerColes:
			sources = append(sources, &Coles{client: client})
		case model.RetailerChemistWarehouse:
			sources = append(sources, &ChemistWarehouse{client: client})
		case model.RetailerGoogleShopping:
			sources = append(sources, &GoogleShopping{client: client, apiKey: cfg.SearchAPIKey})
		default:
			return nil, fmt.Errorf("unknown retailer %q", name)
		}
	}
	return sources, nil
}

// Names lists the source names in order.
func Names(sources []Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.Name()
	}
	return out
}

func newSearchRequest(ctx context.Context, retailer, reqURL, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &upstream.FetchError{Collaborator: retailer, Op: "search", Err: err}
	}
	req.Header.Set("User-Agent", upstream.BrowserUserAgent)
	req.Header.Set("Accept", accept)
	return req, nil
}

func orDefault(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
