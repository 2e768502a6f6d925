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

	"github.com/go-notification-hub/internal/app"
	"github.com/go-notification-hub/internal/config"
	jwtinfra "github.com/go-notification-hub/internal/infrastructure/jwt"
	"github.com/go-notification-hub/internal/logging"
	transporthttp "github.com/go-notification-hub/internal/transport/http"
	appmiddleware "github.com/go-notification-hub/internal/transport/http/middleware"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	closeLog, err := logging.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	logger := logging.Get()
	if envErr != nil {
		logger.Info().Msg("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("store close")
		}
	}()

	// JWT provider is optional; without keys the API runs unauthenticated.
	var verifier appmiddleware.TokenVerifier
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		verifier = p
	} else {
		logger.Warn().Err(err).Msg("JWT provider not available, authentication disabled")
	}

	stopRetry, err := a.StartRetrySchedule(ctx, cfg.RetrySchedule)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid RETRY_SCHEDULE")
	}
	defer stopRetry()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, a, verifier),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DispatchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Str("store", cfg.StoreDriver).
			Strs("channels", channelNames(a)).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}

func channelNames(a *app.App) []string {
	chs := a.Senders.Channels()
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = string(c)
	}
	return out
}
