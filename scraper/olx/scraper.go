package olx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"olx-car-scraper/models"
	"olx-car-scraper/utils"
)

const searchPath = "/transport/legkovye-avtomobili/q-%s/?currency=UZS"

// Scraper runs the fetch → extract → filter → enrich steps for one cohort.
// Ads are handled one at a time, in search-page order.
type Scraper struct {
	baseURL   string
	fetcher   PageFetcher
	extractor *Extractor
	filter    CoarseFilter
	enricher  *Enricher
	phones    PhoneRevealer
	logger    *utils.Logger
	seen      *utils.URLSet
}

// New wires a Scraper. phones may be nil to skip the phone reveal step.
func New(baseURL string, fetcher PageFetcher, schema ExtractionSchema, filter CoarseFilter,
	phones PhoneRevealer, logger *utils.Logger) *Scraper {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Scraper{
		baseURL:   baseURL,
		fetcher:   fetcher,
		extractor: NewExtractor(schema, baseURL),
		filter:    filter,
		enricher:  NewEnricher(fetcher, CurrentDetailSchema, baseURL),
		phones:    phones,
		logger:    logger,
		seen:      utils.NewURLSet(),
	}
}

// SearchURL builds the first results page for a search phrase.
func SearchURL(baseURL, phrase string) string {
	query := strings.Join(strings.Fields(phrase), "-")
	return strings.TrimRight(baseURL, "/") + fmt.Sprintf(searchPath, url.PathEscape(query))
}

// Scrape collects the ads of one cohort that survive the coarse filter. A
// failure to load the search page is returned as a *FetchError; failures on
// individual detail pages only leave that ad's attributes empty.
func (s *Scraper) Scrape(ctx context.Context, cohort models.Cohort) ([]models.ScrapedAd, error) {
	searchURL := SearchURL(s.baseURL, cohort.SearchPhrase())
	s.logger.Info("[olx] Scraping first page: %s", searchURL)

	doc, err := s.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	cards := s.extractor.ExtractAll(doc)
	ads := make([]models.ScrapedAd, 0, len(cards))

	for _, raw := range cards {
		if !s.filter.Accepts(raw) {
			s.logger.Debug("[olx] Filtered out: %q (%s)", raw.Name, raw.PriceText)
			continue
		}
		if raw.DetailURL != "" && s.seen.Contains(raw.DetailURL) {
			s.logger.Debug("[olx] Skipping duplicate: %s", raw.DetailURL)
			continue
		}

		ad := models.ScrapedAd{Raw: raw}
		if raw.DetailURL != "" {
			ad.Detail = s.enrich(ctx, raw.DetailURL, cohort.Model)
			// A mismatched ad may still belong to a later cohort.
			if ad.Detail == nil || !ad.Detail.ModelMismatch {
				s.seen.Add(raw.DetailURL)
			}
		}
		ads = append(ads, ad)
	}

	s.logger.Info("[olx] Total ads found: %d; after filtering: %d (%d detail pages this run)",
		len(cards), len(ads), s.seen.Size())
	return ads, nil
}

func (s *Scraper) enrich(ctx context.Context, detailURL, model string) *models.DetailAttributes {
	attrs, err := s.enricher.Enrich(ctx, detailURL, model)
	switch {
	case errors.Is(err, ErrModelMismatch):
		s.logger.Info("[olx] Skipping ad due to model mismatch: expected %q, found %q", model, attrs.Model)
		return &attrs
	case err != nil:
		s.logger.Warn("[olx] Failed to fetch detail info from %s: %v", detailURL, err)
		return nil
	}

	if s.phones != nil {
		phone, err := s.phones.RevealPhone(ctx, detailURL)
		if err != nil {
			s.logger.Warn("[olx] Phone reveal failed for %s: %v", detailURL, err)
		} else {
			attrs.OwnerPhone = phone
		}
	}
	return &attrs
}
