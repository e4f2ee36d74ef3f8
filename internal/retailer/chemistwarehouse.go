package retailer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dealscan/internal/model"
	"dealscan/internal/upstream"
)

const chemistWarehouseBaseURL = "https://www.chemistwarehouse.com.au"

// ChemistWarehouse has no public JSON search, so the HTML result page is parsed.
type ChemistWarehouse struct {
	BaseURL string
	client  *http.Client
}

func NewChemistWarehouse(baseURL string) *ChemistWarehouse {
	return &ChemistWarehouse{BaseURL: baseURL, client: upstream.NewClient(searchTimeout)}
}

func (c *ChemistWarehouse) Name() string { return model.RetailerChemistWarehouse }

func (c *ChemistWarehouse) Ready() error { return nil }

func (c *ChemistWarehouse) Search(ctx context.Context, term string) (model.PriceRecord, error) {
	base := orDefault(c.BaseURL, chemistWarehouseBaseURL)
	reqURL := fmt.Sprintf("%s/search?searchtext=%s", base, url.QueryEscape(term))

	req, err := newSearchRequest(ctx, c.Name(), reqURL, "text/html")
	if err != nil {
		return model.PriceRecord{}, err
	}
	body, err := upstream.Do(c.client, c.Name(), "search", req)
	if err != nil {
		return model.PriceRecord{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.PriceRecord{}, &upstream.FetchError{Collaborator: c.Name(), Op: "parse", Err: err}
	}

	hit := doc.Find("a.product-container").First()
	if hit.Length() == 0 {
		return model.PriceRecord{}, ErrNoResult
	}

	href, _ := hit.Attr("href")
	if strings.HasPrefix(href, "/") {
		href = chemistWarehouseBaseURL + href
	}

	return model.PriceRecord{
		Retailer: c.Name(),
		Price:    model.ParsePrice(strings.TrimSpace(hit.Find(".product__price").First().Text())),
		Currency: "AUD",
		URL:      href,
	}, nil
}
