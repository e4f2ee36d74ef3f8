package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"dealscan/internal/history"
	"dealscan/internal/model"
	"dealscan/internal/pricestore"
)

func nullLogger() (*logrus.Entry, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log.WithField("component", "test"), hook
}

type fakeMetadata struct {
	product *model.Product
	err     error
}

func (f fakeMetadata) Lookup(_ context.Context, barcode string) (*model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.product
	p.Barcode = barcode
	return &p, nil
}

type fakeStore struct {
	mu       sync.Mutex
	prices   []model.PriceRecord
	readErr  error
	saveErr  error
	saved    []model.PriceRecord
	ensured  []model.Product
	ensureID string
}

func (f *fakeStore) ProductID(context.Context, string) (string, error) { return "", f.readErr }

func (f *fakeStore) RecentPrices(context.Context, string) ([]model.PriceRecord, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.prices, nil
}

func (f *fakeStore) SavePrice(_ context.Context, productID string, rec model.PriceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	rec.ProductID = productID
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeStore) EnsureProduct(_ context.Context, p model.Product) (string, error) {
	f.ensured = append(f.ensured, p)
	if f.ensureID == "" {
		return "", pricestore.ErrDisabled
	}
	return f.ensureID, nil
}

func (f *fakeStore) ListProducts(context.Context) ([]model.StoredProduct, error) { return nil, nil }

type fakeHistory struct {
	entries map[string][]history.Entry
	err     error
}

func (f *fakeHistory) Append(_ context.Context, id string, e history.Entry) error {
	if f.err != nil {
		return f.err
	}
	if f.entries == nil {
		f.entries = map[string][]history.Entry{}
	}
	f.entries[id] = append(f.entries[id], e)
	return nil
}

func (f *fakeHistory) List(_ context.Context, id string) ([]history.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[id], nil
}

type fakeSource struct {
	name  string
	quote model.PriceRecord
	err   error
	ready error
	terms chan string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Ready() error { return f.ready }

func (f *fakeSource) Search(_ context.Context, term string) (model.PriceRecord, error) {
	if f.terms != nil {
		f.terms <- term
	}
	if f.err != nil {
		return model.PriceRecord{}, f.err
	}
	q := f.quote
	q.Retailer = f.name
	return q, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakePublisher) PublishPriceObserved(_ context.Context, productID, term string, quote model.PriceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, quote.Retailer+":"+term)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakeRefiner struct {
	out string
	err error
}

func (f fakeRefiner) Refine(context.Context, string) (string, error) { return f.out, f.err }
