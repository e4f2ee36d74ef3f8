package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealscan/internal/model"
	"dealscan/internal/retailer"
	"dealscan/internal/upstream"
)

func quote(price string) model.PriceRecord {
	return model.PriceRecord{Price: model.ParsePrice(price), Currency: "AUD", URL: "https://example/" + price}
}

func TestScrapeKeepsRetailerOrder(t *testing.T) {
	log, _ := nullLogger()
	sources := []retailer.Source{
		&fakeSource{name: "woolworths", quote: quote("4.50")},
		&fakeSource{name: "coles", quote: quote("4.20")},
		&fakeSource{name: "chemistwarehouse", quote: quote("4.90")},
	}
	svc := NewScrapeService(sources, &fakeStore{}, nil, nil, log)

	got, err := svc.Scrape(context.Background(), ScrapeRequest{Product: "Tim Tam"})
	require.NoError(t, err)
	assert.Equal(t, "Tim Tam", got.ProductName)
	assert.Equal(t, []string{"woolworths", "coles", "chemistwarehouse"}, got.RetailersChecked)
	require.Len(t, got.Prices, 3)
	for i, name := range got.RetailersChecked {
		assert.Equal(t, name, got.Prices[i].Retailer)
	}
}

func TestScrapeIsolatesRetailerFailures(t *testing.T) {
	log, hook := nullLogger()
	sources := []retailer.Source{
		&fakeSource{name: "woolworths", err: &upstream.FetchError{Collaborator: "woolworths", Op: "search", StatusCode: 403}},
		&fakeSource{name: "coles", quote: quote("3.10")},
		&fakeSource{name: "chemistwarehouse", err: retailer.ErrNoResult},
	}
	store := &fakeStore{}
	svc := NewScrapeService(sources, store, nil, nil, log)

	got, err := svc.Scrape(context.Background(), ScrapeRequest{Product: "milk", ProductID: "p-1"})
	require.NoError(t, err)
	require.Len(t, got.Prices, 1)
	assert.Equal(t, "coles", got.Prices[0].Retailer)
	assert.Len(t, got.RetailersChecked, 3)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "p-1", store.saved[0].ProductID)

	var warnings []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings = append(warnings, fmt.Sprint(e.Data["retailer"]))
		}
	}
	assert.Equal(t, []string{"woolworths"}, warnings)
}

func TestScrapeAllRetailersFail(t *testing.T) {
	log, _ := nullLogger()
	sources := []retailer.Source{
		&fakeSource{name: "woolworths", err: errors.New("boom")},
		&fakeSource{name: "coles", err: errors.New("boom")},
	}
	got, err := NewScrapeService(sources, &fakeStore{}, nil, nil, log).Scrape(context.Background(), ScrapeRequest{Product: "x"})
	require.NoError(t, err)

	b, _ := json.Marshal(got)
	assert.JSONEq(t, `{"product_name":"x","prices":[],"retailers_checked":["woolworths","coles"]}`, string(b))
}

func TestScrapePersistence(t *testing.T) {
	log, _ := nullLogger()
	sources := []retailer.Source{
		&fakeSource{name: "woolworths", quote: quote("")},
		&fakeSource{name: "coles", quote: quote("0")},
		&fakeSource{name: "chemistwarehouse", quote: quote("9.99")},
	}

	t.Run("hits without a price are not saved", func(t *testing.T) {
		store := &fakeStore{}
		got, err := NewScrapeService(sources, store, nil, nil, log).Scrape(context.Background(), ScrapeRequest{Product: "x", ProductID: "p"})
		require.NoError(t, err)
		assert.Len(t, got.Prices, 3)

		var saved []string
		for _, rec := range store.saved {
			saved = append(saved, rec.Retailer)
		}
		assert.ElementsMatch(t, []string{"coles", "chemistwarehouse"}, saved)
	})

	t.Run("nothing saved without product id", func(t *testing.T) {
		store := &fakeStore{}
		_, err := NewScrapeService(sources, store, nil, nil, log).Scrape(context.Background(), ScrapeRequest{Product: "x"})
		require.NoError(t, err)
		assert.Empty(t, store.saved)
	})

	t.Run("save failures do not fail the scrape", func(t *testing.T) {
		store := &fakeStore{saveErr: errors.New("db down")}
		got, err := NewScrapeService(sources, store, nil, nil, log).Scrape(context.Background(), ScrapeRequest{Product: "x", ProductID: "p"})
		require.NoError(t, err)
		assert.Len(t, got.Prices, 3)
	})
}

func TestScrapeMissingCredential(t *testing.T) {
	log, _ := nullLogger()
	sources := []retailer.Source{
		&fakeSource{name: "coles"},
		&fakeSource{name: "google_shopping", ready: retailer.ErrMissingCredential},
	}
	svc := NewScrapeService(sources, &fakeStore{}, nil, nil, log)

	_, err := svc.Scrape(context.Background(), ScrapeRequest{Product: "x"})
	assert.ErrorIs(t, err, retailer.ErrMissingCredential)
}

func TestScrapeRefinesAndPublishes(t *testing.T) {
	log, _ := nullLogger()
	terms := make(chan string, 2)
	sources := []retailer.Source{
		&fakeSource{name: "woolworths", quote: quote("1"), terms: terms},
		&fakeSource{name: "coles", quote: quote("2"), terms: terms},
	}
	pub := &fakePublisher{err: errors.New("kafka down")}

	svc := NewScrapeService(sources, &fakeStore{}, pub, fakeRefiner{out: "vegemite 380g"}, log)
	got, err := svc.Scrape(context.Background(), ScrapeRequest{Product: "VEGEMITE Spread Jar 380g"})
	require.NoError(t, err)
	assert.Equal(t, "VEGEMITE Spread Jar 380g", got.ProductName)
	assert.Len(t, got.Prices, 2)
	assert.Equal(t, "vegemite 380g", <-terms)
	assert.Equal(t, "vegemite 380g", <-terms)
	assert.ElementsMatch(t, []string{"woolworths:vegemite 380g", "coles:vegemite 380g"}, pub.events)

	t.Run("refiner failure falls back to the raw name", func(t *testing.T) {
		svc := NewScrapeService(sources, &fakeStore{}, nil, fakeRefiner{err: errors.New("quota")}, log)
		_, err := svc.Scrape(context.Background(), ScrapeRequest{Product: "milk"})
		require.NoError(t, err)
		assert.Equal(t, "milk", <-terms)
		assert.Equal(t, "milk", <-terms)
	})
}

type crashingSource struct{ name string }

func (c crashingSource) Name() string { return c.name }

func (c crashingSource) Ready() error { return nil }

func (c crashingSource) Search(context.Context, string) (model.PriceRecord, error) {
	var hits map[string]int
	hits["top"]++
	return model.PriceRecord{}, nil
}

func TestScrapeSurvivesPanickingRetailer(t *testing.T) {
	log, hook := nullLogger()
	sources := []retailer.Source{
		crashingSource{name: "woolworths"},
		&fakeSource{name: "coles", quote: quote("3.10")},
	}
	svc := NewScrapeService(sources, &fakeStore{}, nil, nil, log)

	got, err := svc.Scrape(context.Background(), ScrapeRequest{Product: "milk"})
	require.NoError(t, err)
	require.Len(t, got.Prices, 1)
	assert.Equal(t, "coles", got.Prices[0].Retailer)
	assert.Equal(t, []string{"woolworths", "coles"}, got.RetailersChecked)

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["retailer"] == "woolworths" {
			logged = true
		}
	}
	assert.True(t, logged)
}
