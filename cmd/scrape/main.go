package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"dealscan/internal/app"
	"dealscan/internal/config"
	"dealscan/internal/service"
)

// go run ./cmd/scrape -product="Vegemite 380g"
// go run ./cmd/scrape -product="Tim Tam Original" -product-id=<uuid> -retailers=woolworths,coles
func main() {
	product := flag.String("product", "", "Product name to search for")
	productID := flag.String("product-id", "", "Store product id; when set, found prices are saved")
	retailers := flag.String("retailers", "", "Comma-separated retailers, overrides RETAILERS")
	flag.Parse()

	cfg := config.Load()
	if *retailers != "" {
		cfg.Retailers = config.SplitList(*retailers)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("startup failed")
	}
	defer a.Close()

	if *product == "" {
		a.Log.Error("missing -product")
		flag.Usage()
		os.Exit(2)
	}

	res, err := a.Scrape.Scrape(ctx, service.ScrapeRequest{Product: *product, ProductID: *productID})
	if err != nil {
		a.Log.WithError(err).Error("scrape failed")
		a.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		a.Log.WithError(err).Error("write result")
	}
}
