package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"mq-dashboard/internal/config"
	"mq-dashboard/internal/domain"
	"mq-dashboard/internal/metrics"
	"mq-dashboard/internal/repository"
	"mq-dashboard/internal/router"
	"mq-dashboard/internal/util"
)

// Build variables - set by ldflags during build.
var version = "dev"

func LoggerInitialize(cfg config.Config) (*util.Logger, error) {

	var webLogger util.Logger

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	if err := webLogger.Init(cfg.LogDir, "webService.log", level, false); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		return nil, err
	}

	webLogger.Info("Service started", zap.String("version", version))

	currentTime := time.Now().Format(time.RFC3339)

	fmt.Fprintf(os.Stderr, "\n%s: MQ dashboard API started on %s\n", currentTime, cfg.ListenAddr)

	return &webLogger, nil
}

func main() {
	configPath := flag.String("config", "", "path to config file (default $HOME/.config/mqdash/config.yml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	logger, err := LoggerInitialize(cfg)
	if err != nil {
		fmt.Println("Error while initializing the logger..", err)
		os.Exit(1)
	}
	defer logger.DeInit()

	opts := router.Options{
		UpstreamURL: cfg.UpstreamURL,
		Started:     time.Now(),
	}

	if cfg.RecordDB != "" {
		var store domain.SampleStore = repository.NewSQLiteStore(cfg.RecordDB)
		if err := store.Init(); err != nil {
			logger.Error("Failed to initialize sample store", zap.String("path", cfg.RecordDB), zap.Error(err))
			fmt.Fprintln(os.Stderr, "Failed to initialize sample store:", err)
			return
		}
		defer store.Close()
		opts.Store = store
	}

	if cfg.MetricsEnabled {
		opts.Metrics = metrics.NewManager()
	}

	if err := router.Run(context.Background(), cfg.ListenAddr, opts, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Server error:", err)
	}
}
