package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"dealscan/internal/app"
	"dealscan/internal/config"
	"dealscan/internal/logging"
	"dealscan/internal/refresh"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("startup failed")
	}
	defer a.Close()

	runner := &refresh.Runner{
		Lister:  a.Store,
		Scraper: a.Scrape,
		Workers: cfg.RefreshWorkers,
		Pause:   100 * time.Millisecond,
		Log:     logging.Component(a.Log, "refresh"),
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		a.Log.WithError(err).Error("refresh aborted")
		a.Close()
		os.Exit(1)
	}
	if summary.Failed > 0 {
		a.Log.WithField("failed", summary.Failed).Warn("some products were not refreshed")
	}
}
