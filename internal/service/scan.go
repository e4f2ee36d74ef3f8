package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dealscan/internal/history"
	"dealscan/internal/model"
	"dealscan/internal/observability"
	"dealscan/internal/pricestore"
	"dealscan/internal/verdict"
)

type MetadataLookup interface {
	Lookup(ctx context.Context, barcode string) (*model.Product, error)
}

type ScanRequest struct {
	Barcode   string
	SessionID string
}

// ScanResult is the /scan payload. Product and Prices are null when absent.
type ScanResult struct {
	Barcode string              `json:"barcode"`
	Product *model.Product      `json:"product"`
	Prices  []model.PriceRecord `json:"prices"`
	Verdict model.Verdict       `json:"verdict"`
}

type ScanService struct {
	metadata MetadataLookup
	store    pricestore.Store
	history  history.Recorder
	register bool
	log      *logrus.Entry
	now      func() time.Time
}

func NewScanService(md MetadataLookup, store pricestore.Store, rec history.Recorder, register bool, log *logrus.Entry) *ScanService {
	if rec == nil {
		rec = history.Noop{}
	}
	return &ScanService{
		metadata: md,
		store:    store,
		history:  rec,
		register: register,
		log:      log,
		now:      time.Now,
	}
}

// Scan never fails: every collaborator error degrades to an absent field.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) ScanResult {
	log := s.log.WithField("barcode", req.Barcode)

	var (
		product *model.Product
		prices  []model.PriceRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.metadata.Lookup(gctx, req.Barcode)
		if err != nil {
			collaboratorFailed(log, "upcitemdb", err)
			return nil
		}
		product = p
		return nil
	})
	g.Go(func() error {
		ps, err := s.store.RecentPrices(gctx, req.Barcode)
		if err != nil {
			collaboratorFailed(log, "pricestore", err)
			return nil
		}
		prices = ps
		return nil
	})
	_ = g.Wait()

	result := ScanResult{Barcode: req.Barcode, Product: product, Prices: prices}
	if len(prices) > 0 {
		result.Verdict = verdict.Evaluate(prices)
	} else {
		result.Verdict = model.Verdict{Verdict: model.Unknown, Message: "Scan again to fetch prices"}
	}
	observability.VerdictsTotal.WithLabelValues(string(result.Verdict.Verdict)).Inc()

	if product != nil {
		s.attachProductID(ctx, log, product, prices)
	}
	if req.SessionID != "" {
		s.record(ctx, log, req, result)
	}
	return result
}

func (s *ScanService) attachProductID(ctx context.Context, log *logrus.Entry, product *model.Product, prices []model.PriceRecord) {
	if len(prices) > 0 && prices[0].ProductID != "" {
		product.ID = prices[0].ProductID
	}
	if !s.register || product.ID != "" {
		return
	}
	id, err := s.store.EnsureProduct(ctx, *product)
	if err != nil {
		collaboratorFailed(log, "pricestore", err)
		return
	}
	product.ID = id
}

func (s *ScanService) record(ctx context.Context, log *logrus.Entry, req ScanRequest, result ScanResult) {
	entry := history.Entry{
		Barcode:   req.Barcode,
		Verdict:   result.Verdict.Verdict,
		ScannedAt: s.now().UTC(),
	}
	if result.Product != nil {
		entry.ProductName = result.Product.Name
	}
	if err := s.history.Append(ctx, req.SessionID, entry); err != nil {
		collaboratorFailed(log, "redis", err)
	}
}

// History returns the scans recorded for a session, oldest first.
func (s *ScanService) History(ctx context.Context, sessionID string) []history.Entry {
	entries, err := s.history.List(ctx, sessionID)
	if err != nil {
		collaboratorFailed(s.log.WithField("session_id", sessionID), "redis", err)
		return []history.Entry{}
	}
	return entries
}
