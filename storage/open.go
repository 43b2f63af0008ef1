package storage

import (
	"context"
	"fmt"
	"time"

	"olx-car-scraper/config"
	"olx-car-scraper/utils"
)

// Open returns the store selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config, logger *utils.Logger) (AdStore, error) {
	switch cfg.StoreBackend {
	case "postgres", "":
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
		return NewPostgresStore(ctx, cfg.DSN(), retry)
	case "api":
		return NewAPIStore(cfg.APIBaseURL, 30*time.Second), nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("storage: unknown backend %q", cfg.StoreBackend)
}
