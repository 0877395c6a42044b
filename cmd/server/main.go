package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/bridge"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/cache"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/cloud"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/config"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/http"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/logging"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/realtime"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/repository"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logger := logging.Setup(config.LogLevel(), config.LogFormat(), "incubator-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeDB := openRepos(ctx)
	defer closeDB()

	deps := service.Deps{Repos: repos, Logger: logger}
	if addr := config.RedisAddr(); addr != "" {
		rc, err := cache.NewRedis(ctx, addr)
		if err != nil {
			log.Warn().Err(err).Msg("latest-reading cache disabled")
		} else {
			defer rc.Close()
			deps.Latest = rc
		}
	}
	if config.UseCloudServices() {
		n, err := cloud.NewSNSNotifier(ctx, config.AWSRegion(), config.SNSTopicArn(), logger)
		if err != nil {
			log.Warn().Err(err).Msg("alert notifications disabled")
		} else {
			deps.Notifier = n
		}
	}

	hub := realtime.NewBroadcaster(config.BroadcastBuffer(), logger)
	deps.Publisher = hub
	svcs := service.New(deps)

	br := bridge.New(bridge.Options{
		Broker:               config.MQTTBroker(),
		ClientID:             config.MQTTClientID(),
		Username:             config.MQTTUsername(),
		Password:             config.MQTTPassword(),
		Topics:               bridge.TopicsFor(config.MQTTTopicPrefix()),
		QoS:                  config.MQTTQoS(),
		QueueSize:            config.IngestQueueSize(),
		MaxReconnectInterval: config.MQTTMaxReconnectInterval(),
	}, svcs.Ingest, logger)

	app := httpHandlers.NewApp(logger)
	httpHandlers.Register(app, svcs, httpHandlers.Options{
		MaxLimit:  config.APIMaxLimit(),
		Bridge:    br,
		Observers: hub,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", realtime.NewGateway(hub, logger))
	wsSrv := &http.Server{Addr: config.WSAddr(), Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 2)
	bridgeDone := make(chan struct{})
	go func() {
		defer close(bridgeDone)
		if err := br.Run(ctx); err != nil {
			errc <- fmt.Errorf("bridge: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", config.APIAddr()).Msg("api listening")
		if err := app.Listen(config.APIAddr()); err != nil {
			errc <- fmt.Errorf("api: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", config.WSAddr()).Msg("websocket gateway listening")
		if err := wsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("websocket: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-errc:
		log.Error().Err(err).Msg("server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api shutdown")
	}
	if err := wsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("websocket shutdown")
	}
	<-bridgeDone
	svcs.Ingest.Wait()
	log.Info().Msg("server stopped")
}

// openRepos returns the Postgres stores, or in-memory stores when no DSN is
// configured.
func openRepos(ctx context.Context) (*repository.Repos, func()) {
	dsn := config.DBDSN()
	if dsn == "" {
		log.Warn().Msg("DB_DSN empty, using in-memory stores")
		return repository.NewMemory(), func() {}
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if config.DBMigrate() {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("db migrate failed")
		}
	}
	return repository.New(db), func() { db.Close() }
}
