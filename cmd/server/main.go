package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"dealscan/internal/api"
	"dealscan/internal/app"
	"dealscan/internal/config"
	"dealscan/internal/history"
	"dealscan/internal/logging"
	"dealscan/internal/metadata"
	"dealscan/internal/observability"
	"dealscan/internal/service"
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
	log := a.Log

	recorder, closeHistory, err := history.Open(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}
	defer closeHistory()

	observability.Start(cfg.MetricsPort, logging.Component(log, "metrics"))

	scan := service.NewScanService(
		metadata.NewClient("", cfg.UPCItemDBKey),
		a.Store,
		recorder,
		cfg.RegisterProducts,
		logging.Component(log, "scan"),
	)
	handler := api.NewHandler(scan, a.Scrape, logging.Component(log, "api"))

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logging.Component(log, "ratelimit"))
	stopCleanup := limiter.StartCleanup(time.Minute)
	defer stopCleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRoutes(handler, limiter, logging.Component(log, "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreBackend, "retailers": cfg.Retailers}).Info("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server ListenAndServe")
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server Shutdown")
	}
	log.Info("graceful shutdown complete")
}
