package olx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"olx-car-scraper/models"
	"olx-car-scraper/utils"
)

// ErrModelMismatch means the detail page belongs to a different model than
// the one being scraped. The caller must drop the ad.
var ErrModelMismatch = errors.New("olx: detail page model mismatch")

// Enricher reads categorical attributes and owner data from ad detail pages.
type Enricher struct {
	fetcher PageFetcher
	schema  DetailSchema
	baseURL string
}

// NewEnricher creates an Enricher that fetches pages through f.
func NewEnricher(f PageFetcher, schema DetailSchema, baseURL string) *Enricher {
	return &Enricher{fetcher: f, schema: schema, baseURL: strings.TrimRight(baseURL, "/")}
}

// Enrich fetches url and extracts its attributes. When the page's model does
// not contain the first token of expectedModel it returns ErrModelMismatch
// with ModelMismatch set and no other attribute filled in.
func (e *Enricher) Enrich(ctx context.Context, url, expectedModel string) (models.DetailAttributes, error) {
	doc, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return models.DetailAttributes{}, fmt.Errorf("olx: enrich %s: %w", url, err)
	}
	return e.parse(doc, expectedModel)
}

func (e *Enricher) parse(doc *goquery.Document, expectedModel string) (models.DetailAttributes, error) {
	params := e.params(doc)

	var attrs models.DetailAttributes
	if detailModel, ok := params[labelModel]; ok {
		attrs.Model = detailModel
		if !modelMatches(detailModel, expectedModel) {
			return models.DetailAttributes{Model: detailModel, ModelMismatch: true}, ErrModelMismatch
		}
	}

	for label, value := range params {
		switch label {
		case labelGear:
			attrs.GearType = mapGearType(value)
		case labelColor:
			attrs.Color = mapColor(value)
		case labelFuel:
			attrs.FuelType = mapFuelType(value)
		case labelCondition:
			attrs.Condition = mapCondition(value)
		case labelExtras:
			attrs.AdditionalOptions = value
		case labelBodyType:
			attrs.BodyType = value
		case labelOwnerCount:
			attrs.OwnerCount = value
		}
	}

	doc.Find(e.schema.Params).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := utils.CleanText(p.Text())
		for _, badge := range ownerTypeBadges {
			if strings.Contains(text, badge) {
				attrs.OwnerType = text
				return false
			}
		}
		return true
	})

	if desc := doc.Find(e.schema.Description).First(); desc.Length() > 0 {
		attrs.DescriptionDetail = joinedText(desc)
	}
	attrs.OwnerName = utils.CleanText(doc.Find(e.schema.OwnerName).First().Text())
	attrs.OwnerMemberSince = utils.CleanText(doc.Find(e.schema.MemberSince).First().Text())
	attrs.OwnerLastSeen = utils.CleanText(doc.Find(e.schema.LastSeen).First().Text())

	if href, ok := doc.Find(e.schema.ProfileLink).First().Attr("href"); ok &&
		strings.Contains(href, e.schema.ProfilePathTag) {
		attrs.OwnerProfileURL = absoluteURL(e.baseURL, href)
	}

	return attrs, nil
}

// params collects "Label: value" pairs from the parameter list. Entries
// without a colon are skipped here; the first occurrence of a label wins.
func (e *Enricher) params(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find(e.schema.Params).Each(func(_ int, p *goquery.Selection) {
		label, value, ok := strings.Cut(utils.CleanText(p.Text()), ":")
		if !ok {
			return
		}
		label = strings.TrimSpace(label)
		if _, seen := out[label]; seen {
			return
		}
		out[label] = strings.TrimSpace(value)
	})
	return out
}

// modelMatches compares the first word of the expected model against the
// model shown on the detail page, ignoring case.
func modelMatches(detailModel, expected string) bool {
	fields := strings.Fields(strings.ToLower(expected))
	if len(fields) == 0 {
		return true
	}
	return strings.Contains(strings.ToLower(detailModel), fields[0])
}

// joinedText returns the text nodes under sel joined by single spaces, so
// that <br>-separated paragraphs do not run together.
func joinedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := utils.CleanText(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
