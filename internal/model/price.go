package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RetailerWoolworths       = "woolworths"
	RetailerColes            = "coles"
	RetailerChemistWarehouse = "chemistwarehouse"
	RetailerGoogleShopping   = "google_shopping"
)

// PriceRecord is one price observation, either scraped just now or read back from
// the price store. Price is invalid when the source had no usable number.
type PriceRecord struct {
	ID        string
	ProductID string
	Retailer  string
	Price     decimal.NullDecimal
	Currency  string
	URL       string
	CreatedAt time.Time
}

// HasPrice reports whether the record carries a usable, non-zero price.
func (p PriceRecord) HasPrice() bool {
	return p.Price.Valid && !p.Price.Decimal.IsZero()
}

type priceRecordJSON struct {
	ID        json.RawMessage `json:"id,omitempty"`
	ProductID json.RawMessage `json:"product_id,omitempty"`
	Retailer  string          `json:"retailer"`
	Price     json.RawMessage `json:"price"`
	Currency  string          `json:"currency"`
	URL       string          `json:"url"`
	CreatedAt string          `json:"created_at,omitempty"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
}

// UnmarshalJSON is lenient: a missing, null or malformed price leaves Price invalid
// instead of failing the whole row, and numeric ids are accepted as strings.
func (p *PriceRecord) UnmarshalJSON(data []byte) error {
	var aux priceRecordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*p = PriceRecord{
		ID:        rawScalar(aux.ID),
		ProductID: rawScalar(aux.ProductID),
		Retailer:  aux.Retailer,
		Price:     ParsePrice(rawScalar(aux.Price)),
		Currency:  aux.Currency,
		URL:       aux.URL,
	}

	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, aux.CreatedAt); err == nil {
			p.CreatedAt = t
			break
		}
	}
	return nil
}

func (p PriceRecord) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        string       `json:"id,omitempty"`
		ProductID string       `json:"product_id,omitempty"`
		Retailer  string       `json:"retailer"`
		Price     *json.Number `json:"price"`
		Currency  string       `json:"currency"`
		URL       string       `json:"url"`
		CreatedAt *time.Time   `json:"created_at,omitempty"`
	}{
		ID:        p.ID,
		ProductID: p.ProductID,
		Retailer:  p.Retailer,
		Currency:  p.Currency,
		URL:       p.URL,
	}
	if p.Price.Valid {
		n := json.Number(p.Price.Decimal.String())
		out.Price = &n
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = &p.CreatedAt
	}
	return json.Marshal(out)
}

// ParsePrice turns "12.50", "$1,299.00" or "12" into a decimal. Anything else is
// reported as an invalid NullDecimal.
func ParsePrice(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "null" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
