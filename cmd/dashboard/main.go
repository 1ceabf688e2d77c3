package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mq-dashboard/internal/config"
	"mq-dashboard/internal/dashboard"
	"mq-dashboard/internal/repository"
	"mq-dashboard/internal/tui"
	"mq-dashboard/internal/util"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (default $HOME/.config/mqdash/config.yml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The terminal belongs to the UI, so diagnostics only go to the log file.
	level, _ := cfg.Level()
	var logger util.Logger
	if err := logger.Init(cfg.LogDir, "dashboard.log", level, false); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.DeInit()
	logger.Info("Dashboard started", zap.String("version", version), zap.String("proxy", cfg.ProxyURL))

	overlap, _ := cfg.OverlapPolicy()
	state := dashboard.NewState(cfg.RetentionPolicy())
	results := make(chan dashboard.Result, 16)

	opts := []dashboard.Option{
		dashboard.WithTimeout(cfg.FetchTimeout),
		dashboard.WithOverlap(overlap),
		dashboard.WithLogger(&logger),
		dashboard.WithResultHandler(tui.Notifier(results)),
	}

	if cfg.RecordDB != "" {
		store := repository.NewSQLiteStore(cfg.RecordDB)
		if err := store.Init(); err != nil {
			return fmt.Errorf("initializing sample store: %w", err)
		}
		defer store.Close()
		opts = append(opts, dashboard.WithRecorder(store))
	}

	poller := dashboard.NewPoller(dashboard.NewHTTPFetcher(cfg.ProxyURL, &http.Client{}), state, cfg.PollInterval, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(tui.NewModel(state, results, "Messaging Performance Dashboard"), tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(gctx)
	})

	g.Go(func() error {
		// Once the view is gone nothing may keep polling.
		defer cancel()
		defer poller.Stop()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("running dashboard view: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})

	err = g.Wait()
	logger.Info("Dashboard stopped")
	return err
}
