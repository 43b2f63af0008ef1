package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"olx-car-scraper/config"
	"olx-car-scraper/models"
	"olx-car-scraper/scraper/olx"
	"olx-car-scraper/services"
	"olx-car-scraper/storage"
	"olx-car-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== OLX car ads pipeline starting ===")
	logger.Info("Config: site %s | layout %s | store %s | rate %dms | phone reveal %v | test mode %v",
		cfg.SiteBaseURL, cfg.LayoutSchema, cfg.StoreBackend, cfg.RateLimitMs, cfg.UsePhoneReveal, cfg.TestMode)

	cohorts, err := config.LoadCohorts(cfg.CohortsPath)
	if err != nil || len(cohorts) == 0 {
		logger.Warn("No cohorts loaded from %s (%v), using default", cfg.CohortsPath, err)
		cohorts = config.DefaultCohorts
	}

	region, err := services.RegionFromConfig(cfg)
	if err != nil {
		logger.Error("Invalid region settings: %v", err)
		os.Exit(1)
	}
	schema, err := olx.SchemaFor(cfg.LayoutSchema)
	if err != nil {
		logger.Error("Invalid layout: %v", err)
		os.Exit(1)
	}

	var phones olx.PhoneRevealer
	if cfg.UsePhoneReveal {
		phones = olx.NewChromePhoneRevealer(cfg.ChromeBin, cfg.UserAgent, cfg.PhoneRevealTimeout, logger)
	}

	fetcher := olx.NewFetcher(cfg.UserAgent, 30*time.Second,
		utils.NewThrottle(time.Duration(cfg.RateLimitMs)*time.Millisecond))
	scraper := olx.New(cfg.SiteBaseURL, fetcher, schema,
		olx.CoarseFilter{MinPrice: cfg.MinPriceSource, MaxPrice: cfg.MaxPriceSource}, phones, logger)
	normalizer := services.NewNormalizer(region, logger)

	if cfg.TestMode {
		if err := runTestMode(ctx, cfg, cohorts, scraper, normalizer, logger); err != nil {
			logger.Error("Test run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open %s store: %v", cfg.StoreBackend, err)
		if cfg.StoreBackend == "postgres" {
			logger.Error("Make sure Docker is running: docker compose up -d")
		}
		os.Exit(1)
	}
	defer store.Close()

	gate := services.NewGate(store, logger)

	var (
		total         models.SaveReport
		fetchFailures int
		processed     []*models.CanonicalAd
	)
	for _, cohort := range cohorts {
		if ctx.Err() != nil {
			break
		}
		logger.Info("Processing %s %s", cohort.Brand, cohort.Model)

		ads, err := scraper.Scrape(ctx, cohort)
		if err != nil {
			var fe *olx.FetchError
			if errors.As(err, &fe) {
				logger.Error("Search page unavailable for %s: %v", cohort.SearchPhrase(), fe)
			} else {
				logger.Error("Scrape failed for %s: %v", cohort.SearchPhrase(), err)
			}
			fetchFailures++
			continue
		}

		canonical := normalizer.NormalizeAll(ads, cohort)
		report := gate.Save(ctx, canonical)
		processed = append(processed, canonical...)

		total.Saved += report.Saved
		total.Duplicates += report.Duplicates
		total.Invalid += report.Invalid
		total.Failed += report.Failed
	}

	exportCohort := models.Cohort{Brand: cfg.ExportBrand, Model: cfg.ExportModel, Color: cfg.ExportColor}
	exporter := services.NewExporter(store, cfg.ExportPath, logger)
	if _, err := exporter.Export(ctx, storage.CohortFilter(exportCohort)); err != nil {
		logger.Warn("Export skipped: %v", err)
	}

	stored, err := store.Filter(ctx, storage.Filter{})
	if err != nil {
		logger.Error("Failed to fetch ads for the summary: %v", err)
		stored = processed
	}
	facetSvc := services.NewFacetService(region.Location, logger)
	facetSvc.Print(facetSvc.Generate(stored))

	fmt.Printf("  Done. Saved %d | duplicates %d | invalid %d | failed %d | export → %s\n\n",
		total.Saved, total.Duplicates, total.Invalid, total.Failed, cfg.ExportPath)

	if fetchFailures > 0 || total.Failed > 0 || ctx.Err() != nil {
		_ = store.Close()
		os.Exit(1)
	}
}

// runTestMode scrapes and normalizes every cohort but writes the results to
// JSON files instead of storing them.
func runTestMode(ctx context.Context, cfg *config.Config, cohorts []models.Cohort,
	scraper *olx.Scraper, normalizer *services.Normalizer, logger *utils.Logger) error {
	for _, cohort := range cohorts {
		ads, err := scraper.Scrape(ctx, cohort)
		if err != nil {
			return err
		}
		canonical := normalizer.NormalizeAll(ads, cohort)

		name := strings.ToLower(strings.ReplaceAll(cohort.Brand+"_"+cohort.Model, " ", "_"))
		if err := writeJSON(filepath.Join(cfg.TestOutputDir, name+"_raw.json"), ads); err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(cfg.TestOutputDir, name+"_processed.json"), canonical); err != nil {
			return err
		}
		logger.Info("[test] %s: %d raw, %d processed ads written to %s",
			cohort.SearchPhrase(), len(ads), len(canonical), cfg.TestOutputDir)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}
