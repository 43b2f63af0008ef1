package services

import (
	"net/url"
	"testing"
	"time"

	"olx-car-scraper/models"
	"olx-car-scraper/storage"
)

func sampleAds() []*models.CanonicalAd {
	a := canonical("ID1", "a")
	a.Year = 2012
	a.Price = ptr(8000.0)
	a.Mileage = ptr(245000)
	a.Color = models.ColorWhite

	b := canonical("ID2", "b")
	b.Year = 2014
	b.Price = ptr(9999.99)
	b.Mileage = ptr(0)
	b.CreatedAt = time.Date(2024, 11, 30, 23, 0, 0, 0, time.UTC)

	c := canonical("ID3", "c")
	c.Year = 2024
	c.Color = models.ColorWhite
	c.CreatedAt = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	return []*models.CanonicalAd{a, b, c}
}

func TestFacetCounts(t *testing.T) {
	svc := NewFacetService(time.UTC, newTestLogger())
	r := svc.Generate(sampleAds())

	if r.Total != 3 {
		t.Errorf("Total: got %d, want 3", r.Total)
	}

	tests := []struct {
		field string
		value string
		want  int
	}{
		{"model", "Lacetti", 3},
		{"color", "white", 2},
		{"color", storage.NullToken, 1},
		{"year", "2010-2014", 2},
		{"year", "2020-2024", 1},
		{"price", "8000-9999.99", 2},
		{"price", storage.NullToken, 1},
		{"mileage", "200000-249999", 1},
		{"mileage", "0-49999", 1},
		{"mileage", storage.NullToken, 1},
		{"created_at", "2024-11-01-2024-11-30", 2},
		{"created_at", "2025-01-01-2025-01-31", 1},
	}

	for _, tt := range tests {
		if got := r.Fields[tt.field][tt.value]; got != tt.want {
			t.Errorf("%s[%q]: got %d, want %d", tt.field, tt.value, got, tt.want)
		}
	}
}

func TestFacetBucketsAreValidFilters(t *testing.T) {
	ads := sampleAds()
	r := NewFacetService(time.UTC, newTestLogger()).Generate(ads)

	for _, field := range []string{"year", "price", "mileage", "created_at", "color"} {
		for value, count := range r.Fields[field] {
			f, err := storage.NewFilter(map[string]string{field: value})
			if err != nil {
				t.Errorf("%s=%q is not a valid filter: %v", field, value, err)
				continue
			}
			matched := 0
			for _, ad := range ads {
				if f.Match(ad) {
					matched++
				}
			}
			if matched != count {
				t.Errorf("%s=%q: filter matches %d ads, facet says %d", field, value, matched, count)
			}
		}
	}
}

func TestFacetEmpty(t *testing.T) {
	r := NewFacetService(time.UTC, newTestLogger()).Generate(nil)
	if r.Total != 0 || len(r.Fields["brand"]) != 0 {
		t.Errorf("empty summary: %+v", r)
	}
}

func TestFacetMonthsFollowRegionTimezone(t *testing.T) {
	loc := tashkent(t)

	// Local midnight on 1 November is still 31 October in UTC.
	a := canonical("ID1", "a")
	a.CreatedAt = time.Date(2024, 11, 1, 0, 0, 0, 0, loc)
	b := canonical("ID2", "b")
	b.CreatedAt = time.Date(2024, 10, 31, 23, 0, 0, 0, loc)
	ads := []*models.CanonicalAd{a, b}

	r := NewFacetService(loc, newTestLogger()).Generate(ads)
	if got := r.Fields["created_at"]["2024-11-01-2024-11-30"]; got != 1 {
		t.Errorf("November bucket: got %d, want 1", got)
	}
	if got := r.Fields["created_at"]["2024-10-01-2024-10-31"]; got != 1 {
		t.Errorf("October bucket: got %d, want 1", got)
	}

	for value, count := range r.Fields["created_at"] {
		f, err := storage.ParseFilterIn(url.Values{"created_at": {value}}, loc)
		if err != nil {
			t.Fatalf("created_at=%q: %v", value, err)
		}
		matched := 0
		for _, ad := range ads {
			if f.Match(ad) {
				matched++
			}
		}
		if matched != count {
			t.Errorf("created_at=%q: filter matches %d ads, facet says %d", value, matched, count)
		}
	}
}
