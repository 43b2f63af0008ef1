package olx

import "fmt"

// ExtractionSchema holds every selector tied to one version of the search
// results markup. A markup change means a new schema value, not new code.
type ExtractionSchema struct {
	Name         string
	Card         string
	Title        string
	Price        string
	LocationDate string
	// YearMileage matches the combined "2012 - 245 000 км" element. Layouts
	// that render year and mileage separately leave it empty and set Year
	// and Mileage instead.
	YearMileage string
	Year        string
	Mileage     string
	Link        string
}

// DetailSchema holds the selectors of the ad detail page.
type DetailSchema struct {
	Params         string
	Description    string
	OwnerName      string
	MemberSince    string
	LastSeen       string
	ProfileLink    string
	ProfilePathTag string
}

var (
	// CurrentSchema matches the search page served since the card redesign.
	CurrentSchema = ExtractionSchema{
		Name:         "current",
		Card:         `div[data-cy="l-card"]`,
		Title:        `h4.css-1g61gc2, [data-cy="ad-card-title"] h4`,
		Price:        `p[data-testid="ad-price"]`,
		LocationDate: `p[data-testid="location-date"]`,
		YearMileage:  `div.css-1kfqt7f span.css-6as4g5`,
		Link:         `a.css-1tqlkj0, a[href*="/obyavlenie/"]`,
	}

	// LegacySchema matches the class-only markup of the older card layout.
	LegacySchema = ExtractionSchema{
		Name:         "legacy",
		Card:         `div[data-cy="l-card"]`,
		Title:        `h4.css-1s3qyje`,
		Price:        `p.css-13afqrm`,
		LocationDate: `p.css-1mwdrlh`,
		YearMileage:  `span.css-1cd0guq`,
		Link:         `a.css-qo0cxu`,
	}

	CurrentDetailSchema = DetailSchema{
		Params:         `div[data-testid="ad-parameters-container"] p`,
		Description:    `div[data-cy="ad_description"] div, div.css-19duwlz`,
		OwnerName:      `h4[data-testid="user-profile-user-name"]`,
		MemberSince:    `p[data-testid="member-since"]`,
		LastSeen:       `p[data-testid="lastSeenBox"]`,
		ProfileLink:    `a[data-testid="user-profile-link"]`,
		ProfilePathTag: "/list/user/",
	}
)

// SchemaFor returns the search-page schema registered under name.
func SchemaFor(name string) (ExtractionSchema, error) {
	switch name {
	case CurrentSchema.Name, "":
		return CurrentSchema, nil
	case LegacySchema.Name:
		return LegacySchema, nil
	}
	return ExtractionSchema{}, fmt.Errorf("olx: unknown layout schema %q", name)
}
