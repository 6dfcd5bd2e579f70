package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayush035/syn-Polygon/config"
	"github.com/ayush035/syn-Polygon/internal/adapters/notify"
	"github.com/ayush035/syn-Polygon/internal/adapters/onchain"
	"github.com/ayush035/syn-Polygon/internal/adapters/storage"
	"github.com/ayush035/syn-Polygon/internal/application/settler"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	user := flag.String("user", "", "user address (overrides config)")
	once := flag.Bool("once", false, "run one settlement cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full bet table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *user != "" {
		cfg.Settler.UserAddress = *user
	}
	setupLogger(cfg.Log)

	if cfg.Settler.UserAddress == "" {
		slog.Error("no user address configured (set -user, SYN_USER_ADDRESS or settler.user_address)")
		os.Exit(1)
	}
	if cfg.Ledger.ContractAddress == "" {
		slog.Error("no contract address configured (set PREDICTION_MARKET_ADDRESS or ledger.contract_address)")
		os.Exit(1)
	}

	slog.Info("syn settler starting",
		"config", *configPath,
		"user", cfg.Settler.UserAddress,
		"contract", cfg.Ledger.ContractAddress,
		"interval", cfg.RefreshInterval(),
		"once", *once,
	)

	gateway, err := onchain.NewGateway(cfg.Ledger.RPCURL, cfg.Ledger.ContractAddress)
	if err != nil {
		slog.Error("failed to connect to ledger", "err", err, "rpc", cfg.Ledger.RPCURL)
		os.Exit(1)
	}

	var store *storage.SQLiteStorage
	if cfg.Storage.DSN != "" && !*once {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	notifier := notify.NewConsole(*table)

	setCfg := settler.DefaultConfig()
	setCfg.RefreshInterval = cfg.RefreshInterval()
	setCfg.UserAddress = cfg.Settler.UserAddress
	setCfg.FetchWorkers = cfg.Settler.FetchWorkers
	setCfg.Once = *once

	var s *settler.Settler
	if store != nil {
		s = settler.New(setCfg, gateway, store, notifier)
	} else {
		s = settler.New(setCfg, gateway, nil, notifier)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		slog.Error("settler exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("syn settler stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
