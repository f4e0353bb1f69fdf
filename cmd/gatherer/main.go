package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/itch-data/internal/config"
	"github.com/rickgao/itch-data/internal/database"
	"github.com/rickgao/itch-data/internal/feed"
	"github.com/rickgao/itch-data/internal/itch"
	"github.com/rickgao/itch-data/internal/router"
	"github.com/rickgao/itch-data/internal/stocks"
	"github.com/rickgao/itch-data/internal/version"
	"github.com/rickgao/itch-data/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/gatherer.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting gatherer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"source_mode", cfg.Source.Mode,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Timescale.Host,
		"port", cfg.Database.Timescale.Port,
		"database", cfg.Database.Timescale.Name,
	)

	db, err := database.Connect(ctx, cfg.Database.Timescale)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connected")

	// Open the raw byte source
	src, closeSrc, err := openSource(ctx, cfg.Source, logger)
	if err != nil {
		logger.Error("failed to open feed source", "error", err)
		os.Exit(1)
	}
	defer closeSrc()

	// Decode pipeline
	decoder := itch.NewDecoder(src)
	registry := stocks.NewRegistry(logger)

	routerCfg := router.RouterConfig{
		OrderBufferSize: cfg.Router.OrderBufferSize,
		TradeBufferSize: cfg.Router.TradeBufferSize,
		EventBufferSize: cfg.Router.EventBufferSize,
	}
	msgRouter := router.NewRouter(routerCfg, decoder, registry, logger)

	// Writers share one ingest session ID
	writerCfg := writer.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
		SessionID:     uuid.New(),
	}
	logger.Info("ingest session", "session_id", writerCfg.SessionID)

	buffers := msgRouter.Buffers()
	orderWriter := writer.NewOrderWriter(writerCfg, buffers.Orders, registry, db, logger)
	tradeWriter := writer.NewTradeWriter(writerCfg, buffers.Trades, registry, db, logger)
	eventWriter := writer.NewEventWriter(writerCfg, buffers.Events, db, logger)

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, db, msgRouter, registry, decoder),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Start everything back to front so consumers are ready first
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

	logger.Info("gatherer running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)

	// Wait for shutdown or end of stream
	select {
	case <-ctx.Done():
	case <-msgRouter.Done():
		if err := msgRouter.Err(); err != nil {
			logger.Error("stream ended with error", "error", err, "decoded", decoder.Decoded())
		} else {
			logger.Info("stream ended", "decoded", decoder.Decoded())
		}
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	msgRouter.Stop(shutdownCtx)
	orderWriter.Stop(shutdownCtx)
	tradeWriter.Stop(shutdownCtx)
	eventWriter.Stop(shutdownCtx)
	healthServer.Shutdown(shutdownCtx)

	logger.Info("gatherer stopped",
		"decoded", decoder.Decoded(),
		"routed", msgRouter.Stats().MessagesRouted,
	)
}

// openSource opens the configured byte source: a capture file or a live
// relay connection.
func openSource(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (io.Reader, func(), error) {
	switch cfg.Mode {
	case "file":
		rc, err := feed.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("reading capture file", "path", cfg.Path)
		return rc, func() { rc.Close() }, nil

	case "ws":
		client := feed.NewClient(feed.ClientConfig{
			URL:              cfg.URL,
			HandshakeTimeout: cfg.HandshakeTimeout,
			PingTimeout:      cfg.PingTimeout,
			WriteTimeout:     cfg.WriteTimeout,
		}, logger)
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("connected to relay", "url", cfg.URL)
		return client.Reader(), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown source mode %q", cfg.Mode)
	}
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(path string, db *pgxpool.Pool, msgRouter router.Router, registry stocks.Registry, decoder *itch.Decoder) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["timescaledb"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["timescaledb"] = "connected"
		}

		// Decode pipeline
		stats := msgRouter.Stats()
		health.Components["pipeline"] = map[string]interface{}{
			"decoded": decoder.Decoded(),
			"routed":  stats.MessagesRouted,
			"dropped": stats.Dropped,
		}
		if err := msgRouter.Err(); err != nil {
			health.Status = "degraded"
			health.Components["stream_error"] = err.Error()
		}

		// Stock directory
		health.Components["stock_registry"] = map[string]interface{}{
			"instruments": registry.Len(),
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/stocks", func(w http.ResponseWriter, r *http.Request) {
		entries := registry.Entries()

		// Limit to first 100 for debugging
		limit := 100
		showing := entries
		if len(showing) > limit {
			showing = showing[:limit]
		}

		type stockInfo struct {
			Locate uint16 `json:"locate"`
			Symbol string `json:"symbol"`
			State  string `json:"state"`
			RegSho string `json:"reg_sho"`
		}
		out := make([]stockInfo, 0, len(showing))
		for _, e := range showing {
			out = append(out, stockInfo{
				Locate: e.Locate,
				Symbol: e.Directory.Stock.String(),
				State:  e.State.String(),
				RegSho: e.RegSho.String(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":   len(entries),
			"showing": len(out),
			"stocks":  out,
		})
	})

	return mux
}
