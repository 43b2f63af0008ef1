package services

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"olx-car-scraper/config"
	"olx-car-scraper/models"
	"olx-car-scraper/utils"
)

// ErrRejected wraps every reason an ad is kept out of the batch.
var ErrRejected = errors.New("normalizer: ad rejected")

const (
	todayToken   = "Сегодня"
	fieldSep     = " - "
	distanceUnit = "км"
	currencyUnit = "сум"

	minModelYear = 1950
)

// Month names as the site prints them in dates ("23 ноября 2024 г.") and,
// less often, in the nominative. Index 0 is January.
var russianMonths = [12][2]string{
	{"января", "январь"},
	{"февраля", "февраль"},
	{"марта", "март"},
	{"апреля", "апрель"},
	{"мая", "май"},
	{"июня", "июнь"},
	{"июля", "июль"},
	{"августа", "август"},
	{"сентября", "сентябрь"},
	{"октября", "октябрь"},
	{"ноября", "ноябрь"},
	{"декабря", "декабрь"},
}

func parseMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	for i, forms := range russianMonths {
		if name == forms[0] || name == forms[1] {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

var dateRegexp = regexp.MustCompile(`^(\d{1,2}) (\p{L}+) (\d{4})(?: г\.?)?$`)

// Region holds the locale-dependent settings of one marketplace.
type Region struct {
	Location      *time.Location
	ExchangeRate  float64 // source currency units per USD
	ReferenceHour int     // time of day given to "today" dates
	NewYearMin    int
	NewYearMax    int
}

// RegionFromConfig builds the region of the configured marketplace.
func RegionFromConfig(cfg *config.Config) (Region, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Region{}, fmt.Errorf("normalizer: timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.ExchangeRate <= 0 {
		return Region{}, fmt.Errorf("normalizer: exchange rate must be positive, got %v", cfg.ExchangeRate)
	}
	return Region{
		Location:      loc,
		ExchangeRate:  cfg.ExchangeRate,
		ReferenceHour: cfg.ReferenceHour,
		NewYearMin:    cfg.NewYearMin,
		NewYearMax:    cfg.NewYearMax,
	}, nil
}

// Normalizer turns scraped ads into canonical records.
type Normalizer struct {
	region Region
	now    func() time.Time
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer for region using the wall clock.
func NewNormalizer(region Region, logger *utils.Logger) *Normalizer {
	return &Normalizer{region: region, now: time.Now, logger: logger}
}

// NormalizeAll normalizes a cohort's ads in order and drops the rejected
// ones, logging why.
func (n *Normalizer) NormalizeAll(ads []models.ScrapedAd, cohort models.Cohort) []*models.CanonicalAd {
	out := make([]*models.CanonicalAd, 0, len(ads))
	for _, ad := range ads {
		canonical, err := n.Normalize(ad.Raw, ad.Detail, cohort.Brand, cohort.Model)
		if err != nil {
			n.logger.Info("[normalizer] %v: %s", err, ad.Raw.DetailURL)
			continue
		}
		out = append(out, canonical)
	}
	n.logger.Info("[normalizer] Normalized %d → %d ads (rejected %d)",
		len(ads), len(out), len(ads)-len(out))
	return out
}

// Normalize builds the canonical record of one ad. detail may be nil when
// the ad was not enriched. Sub-fields that fail to parse become null; the
// ad itself is rejected only on a model mismatch or a missing year,
// description or created_at.
func (n *Normalizer) Normalize(raw models.RawAdFields, detail *models.DetailAttributes, brand, model string) (*models.CanonicalAd, error) {
	if detail != nil && detail.ModelMismatch {
		return nil, fmt.Errorf("%w: model mismatch (page shows %q)", ErrRejected, detail.Model)
	}

	location, dateText := splitLocationDate(raw.LocationDateText)
	year, mileage := n.yearMileage(raw)

	ad := &models.CanonicalAd{
		Brand:        brand,
		Model:        model,
		Price:        n.priceUSD(raw.PriceText),
		Description:  utils.CleanText(raw.Name),
		Mileage:      mileage,
		Location:     location,
		ReferenceURL: raw.DetailURL,
		CarAdID:      AdIDFromURL(raw.DetailURL),
	}
	if year != nil {
		ad.Year = *year
	}
	if created, ok := n.parseDate(dateText); ok {
		ad.CreatedAt = created
	}

	if detail != nil {
		ad.GearType = detail.GearType
		ad.Color = detail.Color
		ad.FuelType = detail.FuelType
		ad.Condition = detail.Condition
		ad.BodyType = detail.BodyType
		ad.OwnerCount = detail.OwnerCount
		ad.OwnerType = detail.OwnerType
		ad.OwnerName = detail.OwnerName
		ad.OwnerMemberSince = detail.OwnerMemberSince
		ad.OwnerLastSeen = detail.OwnerLastSeen
		ad.OwnerProfileURL = detail.OwnerProfileURL
		ad.OwnerPhone = detail.OwnerPhone
		ad.AdditionalOptions = detail.AdditionalOptions
		ad.DescriptionDetail = detail.DescriptionDetail
	}

	if missing := ad.MissingRequired(); missing != "" {
		return nil, fmt.Errorf("%w: missing %s", ErrRejected, missing)
	}
	return ad, nil
}

// priceUSD converts "130 000 000 сум" to USD, rounded to cents.
func (n *Normalizer) priceUSD(text string) *float64 {
	amount, err := utils.ParseAmount(text, currencyUnit)
	if err != nil {
		return nil
	}
	usd := math.Round(float64(amount)/n.region.ExchangeRate*100) / 100
	return &usd
}

// splitLocationDate splits "Ташкент, Юнусабадский район - 23 ноября 2024 г."
// on the first separator. Without one the whole text is the location.
func splitLocationDate(text string) (location, date string) {
	text = utils.CleanText(text)
	if loc, date, ok := strings.Cut(text, fieldSep); ok {
		return strings.TrimSpace(loc), strings.TrimSpace(date)
	}
	return text, ""
}

func (n *Normalizer) parseDate(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}

	loc := n.region.Location
	if strings.Contains(text, todayToken) {
		now := n.now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), n.region.ReferenceHour, 0, 0, 0, loc), true
	}

	m := dateRegexp.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := parseMonth(m[2])
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		// 31 ноября rolls over into December
		return time.Time{}, false
	}
	return t, true
}

func (n *Normalizer) yearMileage(raw models.RawAdFields) (year, mileage *int) {
	if raw.YearMileageText == "" {
		return n.parseYear(raw.YearText), parseMileage(raw.MileageText)
	}

	text := utils.CleanText(raw.YearMileageText)
	if y, m, ok := strings.Cut(text, fieldSep); ok {
		return n.parseYear(y), parseMileage(m)
	}

	// A bare recent year means a new car with nothing on the odometer.
	if y := n.parseYear(text); y != nil && *y >= n.region.NewYearMin && *y <= n.region.NewYearMax {
		zero := 0
		return y, &zero
	}
	return nil, nil
}

// parseYear accepts model years from minModelYear up to one past the
// newest year the region treats as new.
func (n *Normalizer) parseYear(text string) *int {
	text = strings.TrimSpace(text)
	if !utils.IsDigits(text) {
		return nil
	}
	y, err := strconv.Atoi(text)
	if err != nil || y < minModelYear || y > n.region.NewYearMax+1 {
		return nil
	}
	return &y
}

func parseMileage(text string) *int {
	km, err := utils.ParseAmount(text, distanceUnit)
	if err != nil || km > math.MaxInt32 {
		return nil
	}
	m := int(km)
	return &m
}

// AdIDFromURL returns the marketplace id at the end of an ad URL:
// ".../lacetti-2012-ID3aBc1.html?reason=..." → "ID3aBc1".
func AdIDFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.TrimSuffix(strings.TrimRight(path, "/"), ".html")

	i := strings.LastIndex(path, "-")
	if i < 0 {
		return ""
	}
	id := path[i+1:]
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
