package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"olx-car-scraper/api"
	"olx-car-scraper/config"
	"olx-car-scraper/storage"
	"olx-car-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.StoreBackend == "api" {
		logger.Error("The API server cannot use the api store backend; set STORE_BACKEND=postgres or memory")
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone %q: %v", cfg.Timezone, err)
		os.Exit(1)
	}

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open %s store: %v", cfg.StoreBackend, err)
		os.Exit(1)
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           api.NewRouter(api.NewHandler(store, loc, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown: %v", err)
		}
	}()

	logger.Info("Cars API listening on %s (store: %s)", cfg.APIAddr, cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
