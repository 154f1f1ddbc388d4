package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/precolista/backend/config"
	httpDelivery "github.com/precolista/backend/internal/delivery/http"
	"github.com/precolista/backend/internal/domain"
	"github.com/precolista/backend/internal/infrastructure/pricecache"
	"github.com/precolista/backend/internal/infrastructure/sources"
	"github.com/precolista/backend/internal/scheduler"
	"github.com/precolista/backend/internal/usecase"
	"github.com/rs/zerolog"
)

func main() {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting precolista backend")

	var store domain.SnapshotStore
	if cfg.Cache.Path != "" {
		sqliteStore, err := pricecache.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Cache.Path).Msg("failed to open snapshot store")
		}
		store = sqliteStore
		logger.Info().Str("path", cfg.Cache.Path).Msg("snapshot store opened")
	} else {
		logger.Warn().Msg("no cache path configured, snapshots will not survive restarts")
	}

	cache := pricecache.New(store, logger)
	if err := cache.Init(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("cache warm-up failed, continuing with empty cache")
	}

	clients := sources.NewClients(sources.RetailerConfig{
		PrezunicBaseURL: cfg.Sources.PrezunicBaseURL,
		ZonaSulBaseURL:  cfg.Sources.ZonaSulBaseURL,
		ExtraBaseURL:    cfg.Sources.ExtraBaseURL,
		Instaleap: sources.InstaleapConfig{
			APIURL:         cfg.Sources.InstaleapAPIURL,
			ClientID:       cfg.Sources.InstaleapClient,
			StoreReference: cfg.Sources.InstaleapStore,
			ProductBaseURL: cfg.Sources.SMDeliveryURL,
			Timeout:        cfg.Sources.Timeout,
		},
		Timeout:  cfg.Sources.Timeout,
		PageSize: cfg.Sources.PageSize,
		MaxPages: cfg.Sources.MaxPages,
	}, logger)

	fallback := sources.NewReferenceFallback()

	listService := usecase.NewListService(cache, clients, fallback, logger)
	searchService := usecase.NewSearchService(clients, logger)
	refreshService := usecase.NewRefreshService(cache, clients, fallback, logger)

	if cfg.Refresh.Enabled {
		refreshScheduler, err := scheduler.New(cfg.Refresh.Cron, cfg.Refresh.Timezone, refreshService, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create refresh scheduler")
		}
		refreshScheduler.Start()
		defer refreshScheduler.Stop()
		logger.Info().Str("cron", cfg.Refresh.Cron).Str("timezone", cfg.Refresh.Timezone).Msg("refresh scheduler started")
	}

	handler := httpDelivery.NewHandler(listService, searchService, refreshService, cache, cfg.List.DefaultCEP)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
