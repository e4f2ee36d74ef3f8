// Package pricestore reads and records price history keyed by barcode.
//
// Two backends share the Store contract: a PostgREST (Supabase) adapter and a direct
// Postgres adapter. When neither is configured the Disabled store turns reads into
// ErrDisabled and writes into no-ops.
package pricestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dealscan/internal/model"
)

// HistoryLimit bounds how many recent observations a read returns.
const HistoryLimit = 10

const callTimeout = 5 * time.Second

var (
	ErrNotFound = errors.New("pricestore: product not found")
	ErrDisabled = errors.New("pricestore: not configured")
	ErrNoPrice  = errors.New("pricestore: record has no price")
)

type Store interface {
	// ProductID resolves a barcode to the store's product id.
	ProductID(ctx context.Context, barcode string) (string, error)
	// RecentPrices returns up to HistoryLimit observations, newest first.
	RecentPrices(ctx context.Context, barcode string) ([]model.PriceRecord, error)
	SavePrice(ctx context.Context, productID string, rec model.PriceRecord) error
	// EnsureProduct upserts a product by barcode and returns its id.
	EnsureProduct(ctx context.Context, p model.Product) (string, error)
	ListProducts(ctx context.Context) ([]model.StoredProduct, error)
}

// Disabled is the store used when no backend credentials are configured.
type Disabled struct{}

func (Disabled) ProductID(context.Context, string) (string, error) { return "", ErrDisabled }

func (Disabled) RecentPrices(context.Context, string) ([]model.PriceRecord, error) {
	return nil, ErrDisabled
}

func (Disabled) SavePrice(context.Context, string, model.PriceRecord) error { return nil }

func (Disabled) EnsureProduct(context.Context, model.Product) (string, error) {
	return "", ErrDisabled
}

func (Disabled) ListProducts(context.Context) ([]model.StoredProduct, error) {
	return nil, ErrDisabled
}

type savePriceBody struct {
	ProductID string      `json:"product_id"`
	Retailer  string      `json:"retailer"`
	Price     json.Number `json:"price"`
	Currency  string      `json:"currency"`
	URL       string      `json:"url"`
}
