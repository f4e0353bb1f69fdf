// streamtest decodes a capture file or relay stream and prints message
// counts to the console. No database required.
//
// Usage:
//
//	go run ./cmd/streamtest --file /data/01302019.NASDAQ_ITCH50.gz
//	go run ./cmd/streamtest --url wss://relay.internal/itch/v5 --verbose
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rickgao/itch-data/internal/feed"
	"github.com/rickgao/itch-data/internal/itch"
)

func main() {
	filePath := flag.String("file", "", "capture file to decode")
	url := flag.String("url", "", "relay URL to stream from")
	verbose := flag.Bool("verbose", false, "print every decoded message")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if (*filePath == "") == (*url == "") {
		logger.Error("exactly one of --file or --url is required")
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

	var src io.Reader
	if *filePath != "" {
		rc, err := feed.Open(*filePath)
		if err != nil {
			logger.Error("failed to open capture", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		src = rc
	} else {
		client := feed.NewClient(feed.ClientConfig{
			URL:              *url,
			HandshakeTimeout: 10 * time.Second,
			PingTimeout:      60 * time.Second,
			WriteTimeout:     5 * time.Second,
		}, logger)
		if err := client.Connect(ctx); err != nil {
			logger.Error("failed to connect to relay", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		src = client.Reader()
	}

	decoder := itch.NewDecoder(src)
	counts := make(map[byte]int64)
	start := time.Now()

	// Periodic throughput report
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				elapsed := time.Since(start).Seconds()
				logger.Info("progress",
					"decoded", decoder.Decoded(),
					"bytes", decoder.Offset(),
					"msgs_per_sec", int64(float64(decoder.Decoded())/elapsed),
				)
			}
		}
	}()

	for ctx.Err() == nil {
		msg, err := decoder.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error("decode failed", "error", err, "offset", decoder.Offset())
			}
			break
		}

		counts[msg.Tag]++
		if *verbose {
			fmt.Printf("[%c] locate=%d ts=%d %+v\n", msg.Tag, msg.StockLocate, msg.Timestamp, msg.Body)
		}
	}

	elapsed := time.Since(start)
	logger.Info("stream finished",
		"decoded", decoder.Decoded(),
		"bytes", decoder.Offset(),
		"elapsed", elapsed,
		"msgs_per_sec", int64(float64(decoder.Decoded())/elapsed.Seconds()),
	)

	// Per-tag breakdown, largest first
	type tagCount struct {
		tag byte
		n   int64
	}
	out := make([]tagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, tagCount{tag, n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].n > out[j].n })
	for _, tc := range out {
		fmt.Printf("  %c  %12d\n", tc.tag, tc.n)
	}
}
