// Package main provides the entry point for the Enroll registration API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"

	"github.com/arborview/enroll/internal/admin"
	"github.com/arborview/enroll/internal/auth"
	"github.com/arborview/enroll/internal/config"
	"github.com/arborview/enroll/internal/metrics"
	"github.com/arborview/enroll/internal/storage"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(parseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reg := prometheus.NewRegistry()
	if err := metrics.Init(reg); err != nil {
		return err
	}

	handler := buildHandler(cfg, store, logLevel, logger)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.NewRouter(logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           metricsMux(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("enroll API starting", "version", version, "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("metrics listener starting", "addr", cfg.MetricsListenAddr)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", "error", err)
	}
	return nil
}

// buildHandler wires the auth core and the panel handler.
// The composition root owns the storage handle; services receive it by
// reference and never manage its lifetime.
func buildHandler(cfg *config.Config, store *storage.SQLiteStorage, logLevel *slog.LevelVar, logger *slog.Logger) *admin.Handler {
	accessTTL := time.Duration(cfg.AccessTokenTTLSecs) * time.Second
	refreshTTL := time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.SessionSecret, accessTTL, refreshTTL, cfg.RefreshTokenBytes)
	cookies := auth.NewCookies(cfg.CookieSecure, accessTTL, refreshTTL)
	sessions := auth.NewSessionIssuer(store, tokens, logger)
	authenticator := auth.NewRequestAuthenticator(cookies, tokens, sessions)
	access := auth.NewAdminAccessService(store, hasher, sessions, authenticator, logger)
	policy := auth.NewSuperAdminPolicy(store, logger)

	return admin.NewHandler(store, access, policy, hasher, cookies, logLevel, logger)
}

func metricsMux(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HandlerFor(reg))
	return mux
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
