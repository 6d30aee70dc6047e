package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/catalog"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/elevation"
	httpadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-risk-engine/internal/adapter/kafka"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/power"
	"github.com/couchcryptid/climate-risk-engine/internal/assess"
	"github.com/couchcryptid/climate-risk-engine/internal/cache"
	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// alwaysReady is the readiness check when no pipeline is running.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	hazards, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load hazard catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	logger.Info("hazard catalog loaded", "records", hazards.Len())

	caches := cache.NewManager(cache.Options{
		Enabled:         cfg.CacheEnabled,
		CleanupInterval: cfg.CacheCleanupInterval,
		Logger:          logger,
		Metrics:         metrics,
	})

	svc := assess.New(
		power.NewClient(cfg.PowerBaseURL, cfg.PowerTimeout, cfg.PowerRateLimit, logger),
		assess.Options{
			Terrain:            elevation.NewClient(cfg.ElevationBaseURL, cfg.PowerTimeout, logger),
			Catalog:            hazards,
			Cache:              caches,
			Logger:             logger,
			Metrics:            metrics,
			FetchTimeout:       cfg.PowerTimeout,
			LookbackDays:       cfg.LookbackDays,
			HistoryYears:       cfg.HistoryYears,
			RegionalNormalTemp: cfg.RegionalNormalTemp,
			LandslideRadiusKm:  cfg.LandslideSearchRadiusKm,
			WeatherTTL:         cfg.CacheWeatherTTL,
			EventsTTL:          cfg.CacheEventsTTL,
			AssessmentTTL:      cfg.CacheAssessmentTTL,
			HistoryTTL:         cfg.CacheHistoryTTL,
		},
	)
	caches.Open()
	defer caches.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ready  sharedobs.ReadinessChecker = alwaysReady{}
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		done   = make(chan struct{})
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(svc, logger), writer, logger, metrics, cfg.BatchSize)
		ready = p

		// Start request pipeline.
		go func() {
			defer close(done)
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		close(done)
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, ready, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
