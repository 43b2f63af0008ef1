package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"olx-car-scraper/models"
)

// CSVHeader is the column order of exported files, one column per
// CanonicalAd attribute.
var CSVHeader = []string{
	"car_id", "brand", "model", "year", "price", "description", "created_at",
	"mileage", "location", "reference_url", "car_ad_id", "gear_type", "color",
	"fuel_type", "condition", "body_type", "owner_count", "owner_type",
	"owner_name", "owner_member_since", "owner_last_seen", "owner_profile_url",
	"owner_tel_number", "additional_options", "description_detail",
}

// CSVWriter writes canonical ads to a CSV file. Rows go to a temporary file
// next to the target, which replaces the target on Close, so readers never
// see a half-written export. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

const exportFileMode os.FileMode = 0644

// NewCSVWriter prepares an export to path and writes the header row.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("csv: create temp file for %q: %w", path, err)
	}
	// CreateTemp uses 0600; the export is read by other users' jobs.
	if err := f.Chmod(exportFileMode); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("csv: chmod %q: %w", f.Name(), err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

// WriteAds appends one row per ad.
func (c *CSVWriter) WriteAds(ads []*models.CanonicalAd) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ad := range ads {
		if err := c.writer.Write(adRow(ad)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
		c.rows++
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Rows is the number of data rows written so far.
func (c *CSVWriter) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Close flushes the rows and moves the file into place, replacing any
// previous export.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		_ = os.Remove(c.file.Name())
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := c.file.Close(); err != nil {
		_ = os.Remove(c.file.Name())
		return fmt.Errorf("csv: close: %w", err)
	}
	if err := os.Rename(c.file.Name(), c.path); err != nil {
		_ = os.Remove(c.file.Name())
		return fmt.Errorf("csv: replace %q: %w", c.path, err)
	}
	return nil
}

// Abort discards the partial export and leaves any previous file untouched.
func (c *CSVWriter) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.file.Close()
	_ = os.Remove(c.file.Name())
}

func adRow(ad *models.CanonicalAd) []string {
	price := ""
	if ad.Price != nil {
		price = strconv.FormatFloat(*ad.Price, 'f', 2, 64)
	}
	mileage := ""
	if ad.Mileage != nil {
		mileage = strconv.Itoa(*ad.Mileage)
	}
	createdAt := ""
	if !ad.CreatedAt.IsZero() {
		createdAt = ad.CreatedAt.Format(time.RFC3339)
	}

	return []string{
		strconv.FormatInt(ad.ID, 10),
		ad.Brand,
		ad.Model,
		strconv.Itoa(ad.Year),
		price,
		ad.Description,
		createdAt,
		mileage,
		ad.Location,
		ad.ReferenceURL,
		ad.CarAdID,
		string(ad.GearType),
		string(ad.Color),
		string(ad.FuelType),
		string(ad.Condition),
		ad.BodyType,
		ad.OwnerCount,
		ad.OwnerType,
		ad.OwnerName,
		ad.OwnerMemberSince,
		ad.OwnerLastSeen,
		ad.OwnerProfileURL,
		ad.OwnerPhone,
		ad.AdditionalOptions,
		ad.DescriptionDetail,
	}
}
