package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dealscan/internal/assistant"
	"dealscan/internal/events"
	"dealscan/internal/model"
	"dealscan/internal/observability"
	"dealscan/internal/pricestore"
	"dealscan/internal/retailer"
)

type ScrapeRequest struct {
	Product   string
	ProductID string
}

type ScrapeResult struct {
	ProductName      string              `json:"product_name"`
	Prices           []model.PriceRecord `json:"prices"`
	RetailersChecked []string            `json:"retailers_checked"`
}

type ScrapeService struct {
	sources   []retailer.Source
	store     pricestore.Store
	publisher events.Publisher
	refiner   assistant.Refiner
	log       *logrus.Entry
}

// NewScrapeService accepts a nil refiner (raw terms are searched) and a nil publisher.
func NewScrapeService(sources []retailer.Source, store pricestore.Store, pub events.Publisher, refiner assistant.Refiner, log *logrus.Entry) *ScrapeService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &ScrapeService{
		sources:   sources,
		store:     store,
		publisher: pub,
		refiner:   refiner,
		log:       log,
	}
}

// Ready fails when a configured retailer lacks its credential.
func (s *ScrapeService) Ready() error {
	for _, src := range s.sources {
		if err := src.Ready(); err != nil {
			return err
		}
	}
	return nil
}

// Scrape searches every configured retailer concurrently. Only a configuration
// problem is returned as an error; retailer failures just drop that retailer's quote.
func (s *ScrapeService) Scrape(ctx context.Context, req ScrapeRequest) (ScrapeResult, error) {
	if err := s.Ready(); err != nil {
		return ScrapeResult{}, fmt.Errorf("scrape: %w", err)
	}

	log := s.log.WithField("product", req.Product)
	term := s.searchTerm(ctx, log, req.Product)

	slots := make([]*model.PriceRecord, len(s.sources))
	var g errgroup.Group
	for i, src := range s.sources {
		i, src := i, src // per-iteration copies; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			rlog := log.WithField("retailer", src.Name())
			defer func() {
				if r := recover(); r != nil {
					collaboratorFailed(rlog, src.Name(), fmt.Errorf("panic: %v", r))
				}
			}()

			quote, err := src.Search(ctx, term)
			if err != nil {
				collaboratorFailed(rlog, src.Name(), err)
				return nil
			}
			slots[i] = &quote
			observability.PricesObservedTotal.WithLabelValues(src.Name()).Inc()

			s.persist(ctx, rlog, req.ProductID, quote)
			if err := s.publisher.PublishPriceObserved(ctx, req.ProductID, term, quote); err != nil {
				collaboratorFailed(rlog, "kafka", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	prices := make([]model.PriceRecord, 0, len(slots))
	for _, q := range slots {
		if q != nil {
			prices = append(prices, *q)
		}
	}

	return ScrapeResult{
		ProductName:      req.Product,
		Prices:           prices,
		RetailersChecked: retailer.Names(s.sources),
	}, nil
}

func (s *ScrapeService) searchTerm(ctx context.Context, log *logrus.Entry, product string) string {
	if s.refiner == nil {
		return product
	}
	refined, err := s.refiner.Refine(ctx, product)
	if err != nil {
		collaboratorFailed(log, "openai", err)
		return product
	}
	log.WithField("search_term", refined).Debug("search term refined")
	return refined
}

func (s *ScrapeService) persist(ctx context.Context, log *logrus.Entry, productID string, quote model.PriceRecord) {
	if productID == "" || !quote.Price.Valid {
		return
	}
	if err := s.store.SavePrice(ctx, productID, quote); err != nil {
		collaboratorFailed(log, "pricestore", err)
		return
	}
	observability.PricesSavedTotal.Inc()
}
