package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/server"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/util"
)

var (
	port    = flag.Int("port", 0, "listening port (overrides config.toml)")
	devMode = flag.Bool("dev", false, "development mode")
	dataDir = flag.String("dataDir", "", "data directory (overrides config.toml)")
)

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if *devMode {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("configuration rejected", "error", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatalw("server init failed", "error", err)
	}
	defer srv.Close()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		if err := srv.Run(addr); err != nil {
			log.Fatalw("server stopped", "error", err)
		}
	}()

	if !cfg.Server.DevMode {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			log.Infow("open the panel manually", "url", url)
		}
	} else {
		log.Infow("development mode", "url", url)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")
}
