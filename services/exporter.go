package services

import (
	"context"
	"fmt"

	"olx-car-scraper/storage"
	"olx-car-scraper/utils"
)

// Exporter writes the stored ads of a cohort to the training CSV.
type Exporter struct {
	store  storage.AdStore
	path   string
	logger *utils.Logger
}

// NewExporter creates an Exporter that overwrites path on each run.
func NewExporter(store storage.AdStore, path string, logger *utils.Logger) *Exporter {
	return &Exporter{store: store, path: path, logger: logger}
}

// Export writes every ad matching f and returns the row count. When the
// store cannot be queried the previous file is left as it was and the
// error is returned for the caller to log; it does not stop the batch.
func (e *Exporter) Export(ctx context.Context, f storage.Filter) (int, error) {
	ads, err := e.store.Filter(ctx, f)
	if err != nil {
		e.logger.Warn("[export] Skipping export, storage unavailable: %v", err)
		return 0, fmt.Errorf("export: query: %w", err)
	}

	w, err := storage.NewCSVWriter(e.path)
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	if err := w.WriteAds(ads); err != nil {
		w.Abort()
		return 0, fmt.Errorf("export: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	e.logger.Info("[export] Wrote %d ads matching %s to %s", len(ads), f.Query().Encode(), e.path)
	return len(ads), nil
}
