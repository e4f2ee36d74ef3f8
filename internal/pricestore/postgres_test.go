package pricestore

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"dealscan/internal/db"
	"dealscan/internal/model"
)

// setupPostgres starts a throwaway Postgres, applies db/migrations and returns a store.
func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("dealscan"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.New(connStr)
	require.NoError(t, err)
	defer conn.Close()

	_, filename, _, _ := runtime.Caller(0)
	_, err = db.Migrate(conn, filepath.Join(filepath.Dir(filename), "..", "..", "db", "migrations"))
	require.NoError(t, err)

	pool, err := db.NewPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewPostgresStore(pool)
}

func TestPostgresStore(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	_, err := store.ProductID(ctx, "9300633603416")
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := store.EnsureProduct(ctx, model.Product{Barcode: "9300633603416", Name: "Milk 2L"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	again, err := store.EnsureProduct(ctx, model.Product{Barcode: "9300633603416", Name: "Full Cream Milk 2L"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	for _, p := range []string{"3.10", "2.90", "3.50"} {
		require.NoError(t, store.SavePrice(ctx, id, model.PriceRecord{
			Retailer: model.RetailerWoolworths,
			Price:    model.ParsePrice(p),
			Currency: "AUD",
			URL:      "https://www.woolworths.com.au/shop/productdetails/1",
		}))
		time.Sleep(10 * time.Millisecond)
	}
	assert.ErrorIs(t, store.SavePrice(ctx, id, model.PriceRecord{Retailer: "coles"}), ErrNoPrice)

	prices, err := store.RecentPrices(ctx, "9300633603416")
	require.NoError(t, err)
	require.Len(t, prices, 3)
	assert.Equal(t, "3.5", prices[0].Price.Decimal.String())
	assert.Equal(t, id, prices[0].ProductID)
	assert.True(t, prices[0].CreatedAt.After(prices[2].CreatedAt))

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.StoredProduct{{ID: id, Barcode: "9300633603416", Name: "Full Cream Milk 2L"}}, products)
}

func TestPostgresHistoryIsBounded(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	id, err := store.EnsureProduct(ctx, model.Product{Barcode: "42", Name: "Bread"})
	require.NoError(t, err)
	for i := 0; i < HistoryLimit+5; i++ {
		require.NoError(t, store.SavePrice(ctx, id, model.PriceRecord{
			Retailer: model.RetailerColes,
			Price:    model.ParsePrice("4.00"),
			Currency: "AUD",
		}))
	}

	prices, err := store.RecentPrices(ctx, "42")
	require.NoError(t, err)
	assert.Len(t, prices, HistoryLimit)
}
