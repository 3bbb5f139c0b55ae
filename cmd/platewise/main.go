// Platewise API server — authentication and session-management core.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/platewise/platewise/internal/auth"
	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/database"
	"github.com/platewise/platewise/internal/server"
	"github.com/platewise/platewise/internal/session"
	"github.com/platewise/platewise/internal/telemetry"
	"github.com/platewise/platewise/internal/users"
)

var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("PLATEWISE_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("failed to load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	hmacKey, err := cfg.HMACKey()
	if err != nil {
		logger.Fatal("invalid session key configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTraceProvider(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		logger.Fatal("failed to initialise tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	userStore, err := users.NewSQLStore(db)
	if err != nil {
		logger.Fatal("failed to open user store", zap.Error(err))
	}
	sessionStore, err := session.NewSQLStore(db)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}

	service, err := auth.NewService(userStore, userStore, sessionStore, hmacKey, logger)
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}

	sweeper := auth.NewSweeper(sessionStore, logger)
	sweeper.Start()
	defer sweeper.Stop()

	srv := server.New(cfg, service, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
