package services

import (
	"context"
	"errors"
	"fmt"

	"olx-car-scraper/models"
	"olx-car-scraper/storage"
	"olx-car-scraper/utils"
)

// Gate decides whether a canonical ad is new and inserts it. Stored ads are
// never updated.
type Gate struct {
	store  storage.AdStore
	logger *utils.Logger
}

// NewGate creates a Gate writing to store.
func NewGate(store storage.AdStore, logger *utils.Logger) *Gate {
	return &Gate{store: store, logger: logger}
}

// ShouldPersist looks the ad up by car_ad_id, or by (year, description,
// created_at) when the ad has no id. The fallback key merges distinct ads
// that share all three values; the later one is dropped.
func (g *Gate) ShouldPersist(ctx context.Context, ad *models.CanonicalAd) (bool, error) {
	if ad.CarAdID != "" {
		exists, err := g.store.ExistsByAdID(ctx, ad.CarAdID)
		if err != nil {
			return false, fmt.Errorf("gate: lookup %s: %w", ad.CarAdID, err)
		}
		return !exists, nil
	}

	exists, err := g.store.ExistsByComposite(ctx, ad.Year, ad.Description, ad.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("gate: lookup %q: %w", ad.Description, err)
	}
	return !exists, nil
}

// Persist inserts one ad. A car_ad_id that appeared since ShouldPersist
// surfaces as storage.ErrDuplicate.
func (g *Gate) Persist(ctx context.Context, ad *models.CanonicalAd) (int64, error) {
	if missing := ad.MissingRequired(); missing != "" {
		return 0, fmt.Errorf("%w: missing %s", ErrRejected, missing)
	}
	id, err := g.store.Insert(ctx, ad)
	if err != nil {
		return 0, fmt.Errorf("gate: insert: %w", err)
	}
	return id, nil
}

// Save runs every ad through the gate in order. A failure on one ad is
// logged and counted; the rest of the batch still goes through.
func (g *Gate) Save(ctx context.Context, ads []*models.CanonicalAd) models.SaveReport {
	var report models.SaveReport

	for i, ad := range ads {
		if err := ctx.Err(); err != nil {
			g.logger.Warn("[gate] Stopping: %v", err)
			report.Failed += len(ads) - i
			break
		}

		key := ad.CarAdID
		if key == "" {
			key = ad.Description
		}

		if missing := ad.MissingRequired(); missing != "" {
			g.logger.Warn("[gate] Not saving %s: missing %s", key, missing)
			report.Invalid++
			continue
		}

		ok, err := g.ShouldPersist(ctx, ad)
		if err != nil {
			g.logger.Error("[gate] %v", err)
			report.Failed++
			continue
		}
		if !ok {
			g.logger.Info("[gate] Car already exists: %s", key)
			report.Duplicates++
			continue
		}

		if _, err := g.Persist(ctx, ad); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				g.logger.Info("[gate] Car already exists: %s", key)
				report.Duplicates++
				continue
			}
			g.logger.Error("[gate] Failed to save %s: %v", key, err)
			report.Failed++
			continue
		}
		g.logger.Info("[gate] Saved: %s", key)
		report.Saved++
	}

	g.logger.With(map[string]any{
		"saved":      report.Saved,
		"duplicates": report.Duplicates,
		"invalid":    report.Invalid,
		"failed":     report.Failed,
	}).Info("[gate] Batch done")
	return report
}
