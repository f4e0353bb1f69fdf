// replay ingests a historical capture file into the database using the same
// pipeline as the live gatherer. The source in the config file is ignored;
// the file given on the command line wins.
//
// Usage:
//
//	go run ./cmd/replay --config configs/gatherer.local.yaml --file /data/01302019.NASDAQ_ITCH50.gz
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/itch-data/internal/config"
	"github.com/rickgao/itch-data/internal/database"
	"github.com/rickgao/itch-data/internal/feed"
	"github.com/rickgao/itch-data/internal/itch"
	"github.com/rickgao/itch-data/internal/router"
	"github.com/rickgao/itch-data/internal/stocks"
	"github.com/rickgao/itch-data/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/gatherer.local.yaml", "path to config file")
	filePath := flag.String("file", "", "capture file to replay")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *filePath == "" {
		logger.Error("--file is required")
		os.Exit(1)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.Timescale.Host == "" {
		logger.Error("database.timescale.host is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	db, err := database.Connect(ctx, cfg.Database.Timescale)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	src, err := feed.Open(*filePath)
	if err != nil {
		logger.Error("failed to open capture", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	decoder := itch.NewDecoder(src)
	registry := stocks.NewRegistry(logger)

	msgRouter := router.NewRouter(router.RouterConfig{
		OrderBufferSize: cfg.Router.OrderBufferSize,
		TradeBufferSize: cfg.Router.TradeBufferSize,
		EventBufferSize: cfg.Router.EventBufferSize,
	}, decoder, registry, logger)

	writerCfg := writer.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
		SessionID:     uuid.New(),
	}
	logger.Info("replay session",
		"session_id", writerCfg.SessionID,
		"file", *filePath,
	)

	buffers := msgRouter.Buffers()
	orderWriter := writer.NewOrderWriter(writerCfg, buffers.Orders, registry, db, logger)
	tradeWriter := writer.NewTradeWriter(writerCfg, buffers.Trades, registry, db, logger)
	eventWriter := writer.NewEventWriter(writerCfg, buffers.Events, db, logger)

	start := time.Now()

	if err := orderWriter.Start(ctx); err != nil {
		logger.Error("failed to start order writer", "error", err)
		os.Exit(1)
	}
	if err := tradeWriter.Start(ctx); err != nil {
		logger.Error("failed to start trade writer", "error", err)
		os.Exit(1)
	}
	if err := eventWriter.Start(ctx); err != nil {
		logger.Error("failed to start event writer", "error", err)
		os.Exit(1)
	}
	if err := msgRouter.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		logger.Info("replay interrupted")
	case <-msgRouter.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer shutdownCancel()

	msgRouter.Stop(shutdownCtx)
	orderWriter.Stop(shutdownCtx)
	tradeWriter.Stop(shutdownCtx)
	eventWriter.Stop(shutdownCtx)

	if err := msgRouter.Err(); err != nil {
		logger.Error("replay ended with decode error",
			"error", err,
			"decoded", decoder.Decoded(),
			"offset", decoder.Offset(),
		)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	logger.Info("replay complete",
		"decoded", decoder.Decoded(),
		"bytes", decoder.Offset(),
		"elapsed", elapsed,
		"msgs_per_sec", int64(float64(decoder.Decoded())/elapsed.Seconds()),
	)
}
