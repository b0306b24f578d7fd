// Command server starts the career insights HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/careerpilot/insights/internal/adapter/ai"
	"github.com/careerpilot/insights/internal/adapter/ai/openai"
	"github.com/careerpilot/insights/internal/adapter/httpserver"
	"github.com/careerpilot/insights/internal/adapter/lock"
	"github.com/careerpilot/insights/internal/adapter/observability"
	"github.com/careerpilot/insights/internal/adapter/repo/postgres"
	"github.com/careerpilot/insights/internal/app"
	"github.com/careerpilot/insights/internal/config"
	"github.com/careerpilot/insights/internal/domain"
	"github.com/careerpilot/insights/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	analysisRepo := postgres.NewAnalysisRepo(pool)
	sessionRepo := postgres.NewSessionRepo(pool)

	// Session locking: Redis when configured, per-process mutexes otherwise.
	var locker domain.SessionLocker
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		locker = lock.NewRedis(rdb, cfg.SessionLockTTL)
		slog.Info("session locks backed by redis", slog.String("addr", cfg.RedisAddr))
	} else {
		locker = lock.NewLocal()
		slog.Info("session locks are process-local")
	}

	aiClient := openai.New(cfg)
	parser := ai.NewParser()

	analyzeSvc := usecase.NewAnalyzeService(aiClient, parser, analysisRepo, cfg.ModelTimeout, cfg.ModelMaxTokens)
	interviewSvc := usecase.NewInterviewService(analyzeSvc, sessionRepo, locker)

	srv := httpserver.NewServer(cfg, analyzeSvc, interviewSvc)
	srv.PingDB = pool.Ping
	if rdb != nil {
		srv.PingRedis = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
