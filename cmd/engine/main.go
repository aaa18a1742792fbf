package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ergoscope/analytics-engine/internal/api"
	"github.com/ergoscope/analytics-engine/internal/config"
	"github.com/ergoscope/analytics-engine/internal/eips"
	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/tools"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.Println("Starting Ergo Analytics Engine...")

	// Optional .env for local development: cp .env.example .env && edit.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("FATAL: %v", err)
		return 1
	}

	client := ergo.NewClient(
		ergo.UpstreamConfig{BaseURL: cfg.ExplorerURL},
		ergo.UpstreamConfig{BaseURL: cfg.NodeURL, APIKey: cfg.NodeAPIKey},
	)
	log.Printf("Upstreams: explorer=%s node=%s", cfg.ExplorerURL, cfg.NodeURL)

	mirror := eips.NewMirror(cfg.EIPRepoURL, cfg.EIPLocalDir, cfg.EIPRefreshInterval())
	if err := mirror.Start(); err != nil {
		// The mirror retries on schedule; EIP tools answer once a load
		// succeeds, everything else works immediately.
		log.Printf("Warning: initial EIP mirror load failed: %v", err)
	}
	defer mirror.Stop()

	service := tools.NewService(cfg, client, mirror)
	router := api.SetupRouter(service)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Engine running on %s", cfg.Addr())
		serverErr <- server.ListenAndServe()
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			return 1
		}
		return 0
	case sig := <-interrupt:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		if sig == os.Interrupt {
			return 130
		}
		return 0
	}
}
