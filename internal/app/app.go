// Package app wires config into the collaborators shared by the commands.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dealscan/internal/assistant"
	"dealscan/internal/config"
	"dealscan/internal/events"
	"dealscan/internal/logging"
	"dealscan/internal/pricestore"
	"dealscan/internal/retailer"
	"dealscan/internal/service"
)

type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Store  pricestore.Store
	Events events.Publisher
	Scrape *service.ScrapeService

	closers []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	a := &App{Config: cfg, Log: log}

	store, closeStore, err := pricestore.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open price store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)
	if _, disabled := store.(pricestore.Disabled); disabled {
		log.Warn("price store not configured, prices will not be read or saved")
	}

	sources, err := retailer.FromConfig(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Events = events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	a.closers = append(a.closers, func() {
		if err := a.Events.Close(); err != nil {
			log.WithError(err).Warn("close kafka producer")
		}
	})

	a.Scrape = service.NewScrapeService(
		sources,
		store,
		a.Events,
		assistant.New(cfg.OpenAIKey),
		logging.Component(log, "scrape"),
	)
	return a, nil
}

// Close releases everything New opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
