package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flipseven/flipseven-server/internal/config"
	"github.com/flipseven/flipseven-server/internal/room"
	"github.com/flipseven/flipseven-server/internal/server"
	"github.com/flipseven/flipseven-server/internal/session"
	"github.com/flipseven/flipseven-server/internal/store"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting flip seven server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if cfg.Auth.TokenSecret == "" {
		logger.Warn("auth token secret not configured; sessions will not survive restarts")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var roomStore store.Store
	if cfg.Database.URL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		roomStore = pgStore
		logger.Info("postgres room store initialized")
	} else {
		roomStore = store.NewMemoryStore(logger)
		logger.Info("in-memory room store initialized")
	}
	defer roomStore.Close()

	sessions := session.NewManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL, logger)
	logger.Info("session manager initialized",
		zap.Duration("token_ttl", cfg.Auth.TokenTTL),
	)

	ctrl := room.NewController(roomStore, logger)
	logger.Info("room controller initialized")

	wsServer := server.NewServer(sessions, ctrl, roomStore, logger)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- wsServer.ListenAndServe(ctx, cfg.Server.WebSocket.Address)
	}()

	logger.Info("flip seven server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			logger.Error("websocket server error", zap.Error(err))
		}
	}

	logger.Info("shutting down gracefully...")
	cancel()

	logger.Info("flip seven server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
