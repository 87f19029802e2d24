package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ddd/discovery-tracker/api"
	"github.com/ddd/discovery-tracker/changelog"
	"github.com/ddd/discovery-tracker/config"
	"github.com/ddd/discovery-tracker/fetcher"
	"github.com/ddd/discovery-tracker/poller"
	"github.com/ddd/discovery-tracker/snapshot"
	"github.com/ddd/discovery-tracker/webhook"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the tracker configuration file")
	addr := flag.String("addr", "", "Listen address for the API server (overrides listen_addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting discovery document tracker",
		zap.String("addr", cfg.ListenAddr),
		zap.Int("services", len(cfg.Services)))

	snapshots, err := snapshot.NewStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	changes, err := changelog.NewStore(cfg.LogPath)
	if err != nil {
		logger.Fatal("failed to open change log", zap.Error(err))
	}

	var notifier poller.Notifier
	if cfg.EnableDiscordWebhooks {
		notifier = webhook.NewDiscordNotifier(cfg.DiscordWebhookConfig, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(snapshots, changes, logger).Handler(),
	}
	go func() {
		logger.Info("API server listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server failed", zap.Error(err))
			stop()
		}
	}()

	p := poller.New(
		fetcher.New(cfg.Services, logger),
		snapshots,
		changes,
		notifier,
		time.Duration(cfg.CheckInterval)*time.Second,
		logger,
	)
	p.Run(ctx)

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed", zap.Error(err))
	}
}

// buildLogger builds a JSON zap logger teed to stderr and a size-rotated
// log file.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, fileSink, level),
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level),
	)
	return zap.New(core), nil
}
