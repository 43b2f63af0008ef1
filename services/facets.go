package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"olx-car-scraper/models"
	"olx-car-scraper/storage"
	"olx-car-scraper/utils"
)

const (
	yearBucket    = 5
	priceBucket   = 2000.0
	mileageBucket = 50000
)

// facetFields is the order fields are printed in.
var facetFields = []string{
	"brand", "model", "year", "price", "mileage", "created_at", "color",
	"gear_type", "fuel_type", "condition", "body_type", "owner_type", "location",
}

type FacetService struct {
	loc    *time.Location
	logger *utils.Logger
}

// NewFacetService buckets created_at by calendar month in loc (UTC when nil).
func NewFacetService(loc *time.Location, logger *utils.Logger) *FacetService {
	if loc == nil {
		loc = time.UTC
	}
	return &FacetService{loc: loc, logger: logger}
}

// Generate counts ads per value of each field. Range buckets are labelled
// with the same "min-max" tokens the filter accepts, so every key can be
// sent back as a filter value.
func (s *FacetService) Generate(ads []*models.CanonicalAd) *models.FacetSummary {
	summary := &models.FacetSummary{
		Total:  len(ads),
		Fields: make(map[string]map[string]int, len(facetFields)),
	}
	for _, field := range facetFields {
		summary.Fields[field] = make(map[string]int)
	}

	for _, ad := range ads {
		add := func(field, value string) {
			if value == "" {
				value = storage.NullToken
			}
			summary.Fields[field][value]++
		}

		add("brand", ad.Brand)
		add("model", ad.Model)
		add("color", string(ad.Color))
		add("gear_type", string(ad.GearType))
		add("fuel_type", string(ad.FuelType))
		add("condition", string(ad.Condition))
		add("body_type", ad.BodyType)
		add("owner_type", ad.OwnerType)
		add("location", ad.Location)

		add("year", yearRange(ad.Year))
		add("price", priceRange(ad.Price))
		add("mileage", mileageRange(ad.Mileage))
		add("created_at", monthRange(ad.CreatedAt, s.loc))
	}

	return summary
}

func yearRange(year int) string {
	if year == 0 {
		return ""
	}
	lo := year - year%yearBucket
	return fmt.Sprintf("%d-%d", lo, lo+yearBucket-1)
}

func priceRange(price *float64) string {
	if price == nil {
		return ""
	}
	lo := math.Floor(*price/priceBucket) * priceBucket
	return strconv.FormatFloat(lo, 'f', 0, 64) + "-" + strconv.FormatFloat(lo+priceBucket-0.01, 'f', 2, 64)
}

func mileageRange(mileage *int) string {
	if mileage == nil {
		return ""
	}
	lo := *mileage - *mileage%mileageBucket
	return fmt.Sprintf("%d-%d", lo, lo+mileageBucket-1)
}

// monthRange buckets by calendar month in loc. Filters parsed with
// storage.ParseFilterIn in the same loc match the bucket exactly.
func monthRange(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(loc)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02") + "-" + last.Format("2006-01-02")
}

func (s *FacetService) Print(r *models.FacetSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🚗 OLX CAR ADS SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("  Total ads : \033[1m%d\033[0m\n\n", r.Total)
	if r.Total == 0 {
		fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	for _, field := range facetFields {
		counts := r.Fields[field]
		if len(counts) == 0 {
			continue
		}

		fmt.Printf("\033[1;33m  %s\033[0m\n", field)
		fmt.Printf("  %s\n", thin)

		type valueCount struct {
			value string
			count int
		}
		var values []valueCount
		for v, c := range counts {
			values = append(values, valueCount{v, c})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].count != values[j].count {
				return values[i].count > values[j].count
			}
			return values[i].value < values[j].value
		})
		if len(values) > 10 {
			values = values[:10]
		}
		for _, vc := range values {
			bar := strings.Repeat("█", min(vc.count, 30))
			fmt.Printf("  %-30s %s (%d)\n", truncate(vc.value, 28), bar, vc.count)
		}
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
