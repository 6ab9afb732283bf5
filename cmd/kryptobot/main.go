package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/yodabytz/Kryptobot/internal/config"
	"github.com/yodabytz/Kryptobot/internal/dashboard"
	"github.com/yodabytz/Kryptobot/internal/notifier"
	"github.com/yodabytz/Kryptobot/internal/platform"
	"github.com/yodabytz/Kryptobot/internal/state"
	"github.com/yodabytz/Kryptobot/internal/trader"
)

const logFileName = "kryptobot.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Secrets come from the environment; .env is a convenience for dev setups.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.ReadFromFile(cfgPath)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal, so structured logs go to a file.
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log := slog.New(slog.NewTextHandler(logFile, nil))

	p, err := platform.Create(log, *cfg)
	if err != nil {
		return err
	}

	var notify notifier.Notifier = notifier.Noop{}
	if cfg.Notify.SMTPHost != "" {
		notify = notifier.NewEmail(log, cfg.Notify)
	}

	ops := state.New()
	bot := trader.New(log, cfg, p, notify, ops)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return bot.Run(ctx)
	})

	dash, err := dashboard.New(ops)
	if err != nil {
		ops.RequestShutdown()
		_ = g.Wait()
		return err
	}
	dash.Run()

	// The worker drains its current operation before the process exits.
	ops.RequestShutdown()
	return g.Wait()
}
