// Package metadata resolves barcodes to product details through UPCitemdb.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"dealscan/internal/model"
	"dealscan/internal/upstream"
)

const (
	DefaultBaseURL = "https://api.upcitemdb.com"
	defaultName    = "Unknown Product"
	lookupTimeout  = 10 * time.Second
	collaborator   = "upcitemdb"
)

var ErrNotFound = errors.New("metadata: no product for barcode")

var tagPattern = regexp.MustCompile(`<[^>]*>`)

type lookupResponse struct {
	Code  string       `json:"code"`
	Total int          `json:"total"`
	Items []lookupItem `json:"items"`
}

type lookupItem struct {
	EAN         string   `json:"ean"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Images      []string `json:"images"`
}

type Client struct {
	baseURL    string
	userKey    string
	httpClient *http.Client
}

// NewClient uses the free trial endpoint unless userKey is set.
func NewClient(baseURL, userKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userKey:    userKey,
		httpClient: upstream.NewClient(lookupTimeout),
	}
}

func (c *Client) Lookup(ctx context.Context, barcode string) (*model.Product, error) {
	path := "/prod/trial/lookup"
	if c.userKey != "" {
		path = "/prod/v1/lookup"
	}
	reqURL := fmt.Sprintf("%s%s?upc=%s", c.baseURL, path, url.QueryEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &upstream.FetchError{Collaborator: collaborator, Op: "lookup", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userKey != "" {
		req.Header.Set("user_key", c.userKey)
		req.Header.Set("key_type", "3scale")
	}

	body, err := upstream.Do(c.httpClient, collaborator, "lookup", req)
	if err != nil {
		return nil, err
	}

	var result lookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &upstream.FetchError{Collaborator: collaborator, Op: "lookup", Err: fmt.Errorf("decode: %w", err)}
	}
	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	item := result.Items[0]
	p := &model.Product{
		Barcode:     barcode,
		Name:        strings.TrimSpace(item.Title),
		Brand:       item.Brand,
		Description: stripHTML(item.Description),
	}
	if p.Name == "" {
		p.Name = defaultName
	}
	if len(item.Images) > 0 {
		p.Image = item.Images[0]
	}
	return p, nil
}

func stripHTML(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
