package retailer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"dealscan/internal/model"
	"dealscan/internal/upstream"
)

const colesBaseURL = "https://www.coles.com.au"

type Coles struct {
	BaseURL string
	client  *http.Client
}

func NewColes(baseURL string) *Coles {
	return &Coles{BaseURL: baseURL, client: upstream.NewClient(searchTimeout)}
}

func (c *Coles) Name() string { return model.RetailerColes }

func (c *Coles) Ready() error { return nil }

func (c *Coles) Search(ctx context.Context, term string) (model.PriceRecord, error) {
	base := orDefault(c.BaseURL, colesBaseURL)
	reqURL := fmt.Sprintf("%s/api/search/v1/search?q=%s&page=1&ps=1", base, url.QueryEscape(term))

	req, err := newSearchRequest(ctx, c.Name(), reqURL, "application/json")
	if err != nil {
		return model.PriceRecord{}, err
	}
	body, err := upstream.Do(c.client, c.Name(), "search", req)
	if err != nil {
		return model.PriceRecord{}, err
	}
	if !gjson.ValidBytes(body) {
		return model.PriceRecord{}, &upstream.FetchError{Collaborator: c.Name(), Op: "search", Err: fmt.Errorf("invalid json")}
	}

	hit := gjson.GetBytes(body, "results.0")
	if !hit.Exists() {
		return model.PriceRecord{}, ErrNoResult
	}

	return model.PriceRecord{
		Retailer: c.Name(),
		Price:    model.ParsePrice(hit.Get("pricing.now").String()),
		Currency: "AUD",
		URL:      fmt.Sprintf("%s/product/%s", colesBaseURL, hit.Get("id").String()),
	}, nil
}
