package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"txdash/internal/backend"
	"txdash/internal/cli"
	apphttp "txdash/internal/http"
	"txdash/internal/log"
	"txdash/internal/observability"
	"txdash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg, os.Stdout)

	metrics := observability.NewMetrics()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger, metrics)
	res, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize dataset source",
			log.FieldError, err.Error(),
			log.FieldSource, cfg.DatasetSource)
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close dataset source", log.FieldError, err.Error())
		}
	}()

	queries := services.NewQueryService(res.Source, logger)
	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Logger:             logger,
		Metrics:            metrics,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSAllowedOrigins,
	}, queries)

	_, done := cli.GracefulShutdown(logger, 30*time.Second, srv.Shutdown)

	logger.Info("Starting txdash server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		log.FieldSource, res.Type.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
