// Package cli holds the start-up steps shared by cmd/txdash and cmd/txctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"txdash/internal/config"
	"txdash/internal/log"
)

// SetupLogger builds the application logger from cfg and installs it as the
// slog default. An unparsable level falls back to info.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig is LoadAndValidateConfig for binaries: it reports the error
// on stderr and exits.
func MustLoadConfig() *config.Config {
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. When the
// signal arrives, shutdown runs with a context bounded by timeout and the
// returned channel closes once it has finished.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, shutdown func(context.Context) error) (context.Context, <-chan struct{}) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		cancel()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if shutdown != nil {
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("Shutdown error", log.FieldError, err.Error())
				return
			}
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
