package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/siakng/monopoly-server-go/internal/config"
	"github.com/siakng/monopoly-server-go/internal/game"
	"github.com/siakng/monopoly-server-go/internal/game/rules"
	"github.com/siakng/monopoly-server-go/internal/game/watchers"
	"github.com/siakng/monopoly-server-go/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting monopoly server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	opts := cfg.GameOptions()
	engine := game.NewEngine(logger, opts)
	logger.Info("game engine initialized",
		zap.Int("starting_cash", opts.StartingCash),
		zap.Int("pass_start_bonus", opts.PassStartBonus),
		zap.Int64("seed", opts.Seed),
	)

	archive, err := game.NewReplayArchive(cfg.Replay.Dir, logger)
	if err != nil {
		logger.Fatal("failed to open replay archive", zap.Error(err))
	}

	// Stats of removed games are dropped by the watcher on GAME_REMOVED.
	stats := watchers.NewStatsWatcher()
	stats.Attach(engine.Events())
	engine.Events().SubscribeTyped(rules.EventGameOver, func(evt rules.Event) {
		logger.Info("game summary",
			zap.String("game_id", evt.GameID),
			zap.String("winner", evt.TargetID),
			zap.Any("players", stats.Game(evt.GameID)),
		)
		stats.Forget(evt.GameID)

		if _, err := archive.Save(engine.Recorder(), evt.GameID); err != nil {
			logger.Error("failed to close out replay",
				zap.String("game_id", evt.GameID),
				zap.Error(err),
			)
		}
	})

	hub := server.NewHub(engine, cfg.Server.WebSocket, logger)
	go hub.Run(ctx)

	grpcServer := server.NewGRPCServer(cfg.Server.GRPC, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	// Start gRPC server
	go func() {
		logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	// Start WebSocket server
	wsDone := make(chan struct{})
	go func() {
		defer close(wsDone)
		if wsErr := server.StartWebSocketServer(ctx, cfg.Server.WebSocket, hub, logger); wsErr != nil {
			logger.Error("WebSocket server error", zap.Error(wsErr))
		}
	}()

	grpcServer.SetServing(true)

	logger.Info("monopoly server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)

	// Wait for termination signal
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-wsDone:
		logger.Warn("websocket server exited")
	}

	logger.Info("shutting down gracefully...")
	grpcServer.SetServing(false)
	cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(cfg.Server.ShutdownTimeout):
		logger.Warn("graceful stop timed out", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		grpcServer.Stop()
	}

	logger.Info("active games at shutdown", zap.Strings("games", engine.Games()))
	logger.Info("monopoly server stopped")
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
