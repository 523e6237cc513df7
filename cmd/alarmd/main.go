// Command alarmd is the concurrent alarm scheduler.
// It reads "<delay-seconds> <message>" lines from stdin, tracks every alarm
// in its own goroutine, and reports each expiration on stdout.
//
// Usage:
//
//	alarmd [--config path/to/config.yaml] < requests.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tickd/alarmd/internal/alarm"
	"github.com/tickd/alarmd/internal/clock"
	"github.com/tickd/alarmd/internal/config"
	"github.com/tickd/alarmd/internal/dispatch"
	"github.com/tickd/alarmd/internal/journal"
	"github.com/tickd/alarmd/internal/metrics"
	"github.com/tickd/alarmd/internal/producer"
	"github.com/tickd/alarmd/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "alarmd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// ── 1. Load configuration ────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// ── 2. Set up structured logger ──────────────────────────────────────────
	// Operational logs go to stderr; stdout carries the alarm event stream.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	slog.Info("alarmd starting",
		"tick_interval", cfg.Tick(),
		"max_message_len", cfg.Alarms.MaxMessageLen,
		"journal_enabled", cfg.Journal.Enabled,
	)

	// ── 3. Wire reporters (stdout stream + optional journal) ─────────────────
	reporters := report.Multi{report.NewStream(os.Stdout)}

	var jnl *journal.Journal
	if cfg.Journal.Enabled {
		jnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if closeErr := jnl.Close(); closeErr != nil {
				slog.Warn("journal close error", "err", closeErr)
			}
		}()
		reporters = append(reporters, jnl)
	}

	// ── 4. Build the pipeline: producer → queue → dispatcher → workers ──────
	clk := clock.Real()
	reg := &metrics.Registry{}
	queue := alarm.NewQueue()

	prod := producer.New(queue, clk, reporters, reg, producer.Options{
		Prompt:        cfg.Prompt,
		PromptW:       os.Stdout,
		MaxMessageLen: cfg.Alarms.MaxMessageLen,
		MaxRate:       cfg.Producers.MaxRate,
		Burst:         cfg.Producers.Burst,
	})

	disp := dispatch.New(queue, clk, reporters, reg, cfg.Tick(), prod.Done())

	ctx := context.Background()

	// The dispatcher loops in the background until the producer signals
	// completion and the queue has drained.
	dispDone := make(chan struct{})
	go func() {
		defer close(dispDone)
		disp.Run(ctx)
	}()

	// The producer owns the foreground: it returns at end of input.
	if err := prod.Run(ctx, os.Stdin); err != nil {
		return err
	}

	<-dispDone

	// Workers are deliberately not joined: alarms still in flight at this
	// point are abandoned when the process exits. The active-worker gauge in
	// the summary below says how many.
	var summary strings.Builder
	if _, err := reg.WriteTo(&summary); err == nil {
		fmt.Fprint(os.Stderr, summary.String())
	}

	slog.Info("alarmd stopped",
		"accepted", reg.Accepted.Load(),
		"dispatched", reg.Dispatched.Load(),
		"expired", reg.Expired.Load(),
		"abandoned_workers", reg.ActiveWorkers.Load(),
	)
	return nil
}

// logLevel maps the config string to a slog level. Validate has already
// rejected anything else.
func logLevel(s string) slog.Level {
	switch s {
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
