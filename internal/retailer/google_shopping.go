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

const serpAPIBaseURL = "https://serpapi.com"

// GoogleShopping queries Google Shopping through SerpApi. It needs an API key.
type GoogleShopping struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

func NewGoogleShopping(baseURL, apiKey string) *GoogleShopping {
	return &GoogleShopping{BaseURL: baseURL, apiKey: apiKey, client: upstream.NewClient(searchTimeout)}
}

func (g *GoogleShopping) Name() string { return model.RetailerGoogleShopping }

func (g *GoogleShopping) Ready() error {
	if g.apiKey == "" {
		return fmt.Errorf("%s needs SEARCH_API_KEY: %w", g.Name(), ErrMissingCredential)
	}
	return nil
}

func (g *GoogleShopping) Search(ctx context.Context, term string) (model.PriceRecord, error) {
	if err := g.Ready(); err != nil {
		return model.PriceRecord{}, err
	}

	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", term)
	params.Set("gl", "au")
	params.Set("hl", "en")
	params.Set("num", "1")
	params.Set("api_key", g.apiKey)
	reqURL := orDefault(g.BaseURL, serpAPIBaseURL) + "/search.json?" + params.Encode()

	req, err := newSearchRequest(ctx, g.Name(), reqURL, "application/json")
	if err != nil {
		return model.PriceRecord{}, err
	}
	body, err := upstream.Do(g.client, g.Name(), "search", req)
	if err != nil {
		return model.PriceRecord{}, err
	}
	if !gjson.ValidBytes(body) {
		return model.PriceRecord{}, &upstream.FetchError{Collaborator: g.Name(), Op: "search", Err: fmt.Errorf("invalid json")}
	}

	hit := gjson.GetBytes(body, "shopping_results.0")
	if !hit.Exists() {
		return model.PriceRecord{}, ErrNoResult
	}

	price := model.ParsePrice(hit.Get("extracted_price").String())
	if !price.Valid {
		price = model.ParsePrice(hit.Get("price").String())
	}
	link := hit.Get("link").String()
	if link == "" {
		link = hit.Get("product_link").String()
	}

	return model.PriceRecord{
		Retailer: g.Name(),
		Price:    price,
		Currency: "AUD",
		URL:      link,
	}, nil
}
