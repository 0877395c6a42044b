package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/cloud"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/config"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/database"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/logging"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/repository"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logger := logging.Setup(config.LogLevel(), config.LogFormat(), "incubator-archiver")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.DBDSN() == "" {
		log.Fatal().Msg("DB_DSN is required for archiving")
	}
	db, err := database.Connect(config.DBDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	store, err := cloud.NewS3Archive(ctx, config.AWSRegion(), config.S3Bucket())
	if err != nil {
		log.Fatal().Err(err).Msg("s3 client failed")
	}

	archiver := service.NewArchiver(repository.New(db), store, config.ArchivePageSize(), logger)
	results, err := archiver.Run(ctx)
	for _, r := range results {
		log.Info().
			Str("collection", r.Collection).
			Str("bucket", config.S3Bucket()).
			Str("key", r.Key).
			Int("count", r.Count).
			Str("url", r.URL).
			Msg("archived")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("archive failed")
	}
}
