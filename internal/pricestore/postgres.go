package pricestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealscan/internal/model"
	"dealscan/internal/upstream"
)

// PostgresStore reads and writes the same schema as the Supabase project, directly.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ProductID(ctx context.Context, barcode string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var id string
	err := s.pool.QueryRow(ctx, `SELECT id::text FROM products WHERE barcode = $1`, barcode).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", dbError("lookup product", fmt.Errorf("barcode %s: %w", barcode, err))
	}
	return id, nil
}

func (s *PostgresStore) RecentPrices(ctx context.Context, barcode string) ([]model.PriceRecord, error) {
	productID, err := s.ProductID(ctx, barcode)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, product_id::text, retailer, COALESCE(price::text, ''),
		       COALESCE(currency, ''), COALESCE(url, ''), created_at
		FROM prices
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, productID, HistoryLimit)
	if err != nil {
		return nil, dbError("list prices", err)
	}
	defer rows.Close()

	prices := []model.PriceRecord{}
	for rows.Next() {
		var (
			rec   model.PriceRecord
			price string
		)
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Retailer, &price, &rec.Currency, &rec.URL, &rec.CreatedAt); err != nil {
			return nil, dbError("scan price", err)
		}
		rec.Price = model.ParsePrice(price)
		prices = append(prices, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list prices", err)
	}
	return prices, nil
}

func (s *PostgresStore) SavePrice(ctx context.Context, productID string, rec model.PriceRecord) error {
	if !rec.Price.Valid {
		return ErrNoPrice
	}
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO prices (product_id, retailer, price, currency, url)
		VALUES ($1, $2, $3::numeric, $4, $5)`,
		productID, rec.Retailer, rec.Price.Decimal.String(), rec.Currency, rec.URL)
	if err != nil {
		return dbError("save price", fmt.Errorf("product %s: %w", productID, err))
	}
	return nil
}

func (s *PostgresStore) EnsureProduct(ctx context.Context, p model.Product) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (barcode, name, brand, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (barcode) DO UPDATE
		SET name = EXCLUDED.name, brand = EXCLUDED.brand, image_url = EXCLUDED.image_url
		RETURNING id::text`, p.Barcode, p.Name, p.Brand, p.Image).Scan(&id)
	if err != nil {
		return "", dbError("upsert product", fmt.Errorf("barcode %s: %w", p.Barcode, err))
	}
	return id, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]model.StoredProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT id::text, barcode, COALESCE(name, '') FROM products ORDER BY created_at`)
	if err != nil {
		return nil, dbError("list products", err)
	}
	defer rows.Close()

	var out []model.StoredProduct
	for rows.Next() {
		var p model.StoredProduct
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Name); err != nil {
			return nil, dbError("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list products", err)
	}
	return out, nil
}

func dbError(op string, err error) error {
	return &upstream.FetchError{Collaborator: collaborator, Op: op, Err: err}
}
