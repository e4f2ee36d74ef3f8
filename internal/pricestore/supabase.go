package pricestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"dealscan/internal/model"
	"dealscan/internal/upstream"
)

const collaborator = "pricestore"

// SupabaseStore talks to the products/prices tables through PostgREST.
type SupabaseStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSupabaseStore(baseURL, apiKey string, httpClient *http.Client) *SupabaseStore {
	if httpClient == nil {
		httpClient = upstream.NewClient(callTimeout)
	}
	return &SupabaseStore{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (s *SupabaseStore) ProductID(ctx context.Context, barcode string) (string, error) {
	params := url.Values{}
	params.Set("barcode", "eq."+barcode)
	params.Set("select", "id")

	var rows []struct {
		ID json.RawMessage `json:"id"`
	}
	if err := s.get(ctx, "products", params, "lookup product", &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rawID(rows[0].ID), nil
}

func (s *SupabaseStore) RecentPrices(ctx context.Context, barcode string) ([]model.PriceRecord, error) {
	productID, err := s.ProductID(ctx, barcode)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("product_id", "eq."+productID)
	params.Set("select", "*")
	params.Set("order", "created_at.desc")
	params.Set("limit", strconv.Itoa(HistoryLimit))

	var prices []model.PriceRecord
	if err := s.get(ctx, "prices", params, "list prices", &prices); err != nil {
		return nil, err
	}
	if prices == nil {
		prices = []model.PriceRecord{}
	}
	return prices, nil
}

func (s *SupabaseStore) SavePrice(ctx context.Context, productID string, rec model.PriceRecord) error {
	if !rec.Price.Valid {
		return ErrNoPrice
	}
	body := savePriceBody{
		ProductID: productID,
		Retailer:  rec.Retailer,
		Price:     json.Number(rec.Price.Decimal.String()),
		Currency:  rec.Currency,
		URL:       rec.URL,
	}
	_, err := s.post(ctx, "prices", nil, "save price", "return=minimal", body)
	return err
}

func (s *SupabaseStore) EnsureProduct(ctx context.Context, p model.Product) (string, error) {
	params := url.Values{}
	params.Set("on_conflict", "barcode")
	params.Set("select", "id")

	body := map[string]string{
		"barcode":   p.Barcode,
		"name":      p.Name,
		"brand":     p.Brand,
		"image_url": p.Image,
	}
	raw, err := s.post(ctx, "products", params, "upsert product", "resolution=merge-duplicates,return=representation", body)
	if err != nil {
		return "", err
	}

	var rows []struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return "", &upstream.FetchError{Collaborator: collaborator, Op: "upsert product", Err: fmt.Errorf("decode: %w", err)}
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rawID(rows[0].ID), nil
}

func (s *SupabaseStore) ListProducts(ctx context.Context) ([]model.StoredProduct, error) {
	params := url.Values{}
	params.Set("select", "id,barcode,name")
	params.Set("order", "created_at.asc")

	var rows []struct {
		ID      json.RawMessage `json:"id"`
		Barcode string          `json:"barcode"`
		Name    string          `json:"name"`
	}
	if err := s.get(ctx, "products", params, "list products", &rows); err != nil {
		return nil, err
	}

	out := make([]model.StoredProduct, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.StoredProduct{ID: rawID(r.ID), Barcode: r.Barcode, Name: r.Name})
	}
	return out, nil
}

func (s *SupabaseStore) get(ctx context.Context, table string, params url.Values, op string, dest any) error {
	reqURL := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, table, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &upstream.FetchError{Collaborator: collaborator, Op: op, Err: err}
	}
	s.setHeaders(req)

	body, err := upstream.Do(s.httpClient, collaborator, op, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &upstream.FetchError{Collaborator: collaborator, Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func (s *SupabaseStore) post(ctx context.Context, table string, params url.Values, op, prefer string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", table, err)
	}

	reqURL := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, &upstream.FetchError{Collaborator: collaborator, Op: op, Err: err}
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", prefer)

	return upstream.Do(s.httpClient, collaborator, op, req)
}

func (s *SupabaseStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
}

func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
