package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mq-dashboard/internal/config"
	"mq-dashboard/internal/router"
	"mq-dashboard/internal/simulate"
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

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	var logger util.Logger
	if err := logger.Init(cfg.LogDir, "simulator.log", level, false); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.DeInit()

	r := mux.NewRouter()
	r.Handle("/api/metrics", simulate.NewHandler(simulate.NewGenerator(time.Now().UnixNano()), &logger)).Methods("GET")

	server := router.NewServer(cfg.SimulateAddr, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("Simulator listening", zap.String("addr", server.Addr))
	fmt.Fprintf(os.Stderr, "Simulated metrics on http://localhost%s/api/metrics\n", server.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Simulator stopped with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Simulator error:", err)
	}
}
