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

const woolworthsBaseURL = "https://www.woolworths.com.au"

type Woolworths struct {
	BaseURL string
	client  *http.Client
}

func NewWoolworths(baseURL string) *Woolworths {
	return &Woolworths{BaseURL: baseURL, client: upstream.NewClient(searchTimeout)}
}

func (w *Woolworths) Name() string { return model.RetailerWoolworths }

func (w *Woolworths) Ready() error { return nil }

func (w *Woolworths) Search(ctx context.Context, term string) (model.PriceRecord, error) {
	base := orDefault(w.BaseURL, woolworthsBaseURL)
	reqURL := fmt.Sprintf("%s/apis/ui/Search/products?searchTerm=%s&pageSize=1", base, url.QueryEscape(term))

	req, err := newSearchRequest(ctx, w.Name(), reqURL, "application/json")
	if err != nil {
		return model.PriceRecord{}, err
	}
	body, err := upstream.Do(w.client, w.Name(), "search", req)
	if err != nil {
		return model.PriceRecord{}, err
	}
	if !gjson.ValidBytes(body) {
		return model.PriceRecord{}, &upstream.FetchError{Collaborator: w.Name(), Op: "search", Err: fmt.Errorf("invalid json")}
	}

	hit := gjson.GetBytes(body, "Products.0")
	if !hit.Exists() {
		return model.PriceRecord{}, ErrNoResult
	}

	return model.PriceRecord{
		Retailer: w.Name(),
		Price:    model.ParsePrice(hit.Get("Price").String()),
		Currency: "AUD",
		URL:      fmt.Sprintf("%s/shop/productdetails/%s", woolworthsBaseURL, hit.Get("Stockcode").String()),
	}, nil
}
