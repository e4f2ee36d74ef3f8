// Package refresh re-scrapes current prices for every product in the price store.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"dealscan/internal/model"
	"dealscan/internal/service"
)

type ProductLister interface {
	ListProducts(ctx context.Context) ([]model.StoredProduct, error)
}

type Scraper interface {
	Scrape(ctx context.Context, req service.ScrapeRequest) (service.ScrapeResult, error)
}

type Summary struct {
	Products int
	Quotes   int
	Failed   int
}

type Runner struct {
	Lister  ProductLister
	Scraper Scraper
	Workers int
	// Pause between jobs on the same worker, to go easy on the retailer sites.
	Pause time.Duration
	Log   *logrus.Entry
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	products, err := r.Lister.ListProducts(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list products: %w", err)
	}
	r.Log.WithField("products", len(products)).Info("refresh started")

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	var (
		quotes, failed atomic.Int64
		wg             sync.WaitGroup
	)
	jobs := make(chan model.StoredProduct, len(products))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if ctx.Err() != nil {
					failed.Add(1)
					continue
				}
				if r.Pause > 0 {
					time.Sleep(r.Pause)
				}
				n, err := r.process(ctx, p)
				if err != nil {
					failed.Add(1)
					continue
				}
				quotes.Add(int64(n))
			}
		}()
	}

	for _, p := range products {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	summary := Summary{Products: len(products), Quotes: int(quotes.Load()), Failed: int(failed.Load())}
	r.Log.WithFields(logrus.Fields{
		"products": summary.Products,
		"quotes":   summary.Quotes,
		"failed":   summary.Failed,
	}).Info("refresh finished")
	return summary, ctx.Err()
}

func (r *Runner) process(ctx context.Context, p model.StoredProduct) (int, error) {
	log := r.Log.WithFields(logrus.Fields{"product_id": p.ID, "barcode": p.Barcode})
	if p.Name == "" {
		log.Warn("product has no name, skipped")
		return 0, fmt.Errorf("product %s has no name", p.ID)
	}

	res, err := r.Scraper.Scrape(ctx, service.ScrapeRequest{Product: p.Name, ProductID: p.ID})
	if err != nil {
		log.WithError(err).Error("refresh failed")
		return 0, err
	}
	log.WithField("quotes", len(res.Prices)).Debug("product refreshed")
	return len(res.Prices), nil
}
