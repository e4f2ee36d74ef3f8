package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"dealscan/internal/config"
	"dealscan/internal/db"
	"dealscan/internal/logging"
)

// go run ./cmd/migrate -dir=db/migrations
func main() {
	dir := flag.String("dir", "db/migrations", "Directory holding the SQL migrations")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect")
	}
	defer conn.Close()

	version, err := db.Migrate(conn, *dir)
	if err != nil {
		log.WithError(err).Fatal("migrate")
	}
	log.WithFields(logrus.Fields{"version": version, "dir": *dir}).Info("schema up to date")
}
