package storage

import (
	"context"
	"errors"
	"time"

	"olx-car-scraper/models"
)

var (
	// ErrNotFound is returned when no ad has the requested id.
	ErrNotFound = errors.New("storage: ad not found")
	// ErrDuplicate is returned by Insert when the car_ad_id already exists.
	ErrDuplicate = errors.New("storage: duplicate car_ad_id")
)

// AdStore is the interface any storage backend must satisfy.
type AdStore interface {
	ExistsByAdID(ctx context.Context, carAdID string) (bool, error)
	ExistsByComposite(ctx context.Context, year int, description string, createdAt time.Time) (bool, error)
	Insert(ctx context.Context, ad *models.CanonicalAd) (int64, error)
	Filter(ctx context.Context, f Filter) ([]*models.CanonicalAd, error)
	Get(ctx context.Context, id int64) (*models.CanonicalAd, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}
