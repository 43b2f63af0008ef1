package olx

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"olx-car-scraper/models"
	"olx-car-scraper/utils"
)

// Extractor pulls raw text fields out of search-result cards.
type Extractor struct {
	schema  ExtractionSchema
	baseURL string
}

// NewExtractor binds a schema to the site base URL used to absolutize links.
func NewExtractor(schema ExtractionSchema, baseURL string) *Extractor {
	return &Extractor{schema: schema, baseURL: strings.TrimRight(baseURL, "/")}
}

// ExtractAll returns the raw fields of every card on the page, in page order.
func (e *Extractor) ExtractAll(doc *goquery.Document) []models.RawAdFields {
	var out []models.RawAdFields
	doc.Find(e.schema.Card).Each(func(_ int, card *goquery.Selection) {
		out = append(out, e.Extract(card))
	})
	return out
}

// Extract reads one card. Selectors that match nothing leave their field
// empty.
func (e *Extractor) Extract(card *goquery.Selection) models.RawAdFields {
	s := e.schema
	raw := models.RawAdFields{
		Name:             firstText(card, s.Title),
		PriceText:        firstText(card, s.Price),
		LocationDateText: firstText(card, s.LocationDate),
		YearMileageText:  firstText(card, s.YearMileage),
		YearText:         firstText(card, s.Year),
		MileageText:      firstText(card, s.Mileage),
	}

	if s.Link != "" {
		if href, ok := card.Find(s.Link).First().Attr("href"); ok {
			raw.DetailURL = absoluteURL(e.baseURL, strings.TrimSpace(href))
		}
	}
	return raw
}

func firstText(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return utils.CleanText(sel.Find(selector).First().Text())
}

func absoluteURL(base, href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return base + href
	}
	return base + "/" + href
}
