package storage

import (
	"context"
	"sync"
	"time"

	"olx-car-scraper/models"
)

// MemoryStore keeps ads in process memory. It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	ads    []*models.CanonicalAd
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) ExistsByAdID(_ context.Context, carAdID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ad := range m.ads {
		if ad.CarAdID != "" && ad.CarAdID == carAdID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ExistsByComposite(_ context.Context, year int, description string, createdAt time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ad := range m.ads {
		if ad.Year == year && ad.Description == description && ad.CreatedAt.Equal(createdAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Insert(_ context.Context, ad *models.CanonicalAd) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ad.CarAdID != "" {
		for _, existing := range m.ads {
			if existing.CarAdID == ad.CarAdID {
				return 0, ErrDuplicate
			}
		}
	}
	stored := *ad
	stored.ID = m.nextID
	m.nextID++
	m.ads = append(m.ads, &stored)
	return stored.ID, nil
}

func (m *MemoryStore) Filter(_ context.Context, f Filter) ([]*models.CanonicalAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.CanonicalAd
	for _, ad := range m.ads {
		if f.Match(ad) {
			cp := *ad
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*models.CanonicalAd, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ad := range m.ads {
		if ad.ID == id {
			cp := *ad
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ad := range m.ads {
		if ad.ID == id {
			m.ads = append(m.ads[:i], m.ads[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) Close() error { return nil }
