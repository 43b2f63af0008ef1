package models

import "time"

// RawAdFields holds the unprocessed text pulled from one search-result card.
// An empty string means the sub-field was not present on the card.
type RawAdFields struct {
	Name             string `json:"name,omitempty"`
	PriceText        string `json:"price,omitempty"`
	LocationDateText string `json:"location_date,omitempty"`
	// YearMileageText is the combined "2012 - 245 000 км" field of the
	// card. Layouts that render the two separately fill YearText and
	// MileageText instead.
	YearMileageText string `json:"mileage,omitempty"`
	YearText        string `json:"year_text,omitempty"`
	MileageText     string `json:"mileage_text,omitempty"`
	DetailURL       string `json:"reference_url,omitempty"`
}

// HasYearOrMileage reports whether any year/mileage text was found.
func (r RawAdFields) HasYearOrMileage() bool {
	return r.YearMileageText != "" || r.YearText != "" || r.MileageText != ""
}

// Canonical categorical codes.
type (
	GearType  string
	Color     string
	FuelType  string
	Condition string
)

const (
	GearManual    GearType = "MT"
	GearAutomatic GearType = "AT"
	GearRobot     GearType = "DSG"
	GearCVT       GearType = "CVT"

	ColorWhite  Color = "white"
	ColorBlack  Color = "black"
	ColorSilver Color = "silver"
	ColorGrey   Color = "grey"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"

	FuelGasoline FuelType = "Gasoline"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelGas      FuelType = "Gas"
	FuelHybrid   FuelType = "Hybrid"

	ConditionIdeal       Condition = "ideal"
	ConditionDamaged     Condition = "damaged"
	ConditionNeedsRepair Condition = "needs_repair"
	ConditionUsed        Condition = "used"
)

// DetailAttributes is what the detail page adds to a card. Empty values are
// unknown.
type DetailAttributes struct {
	Model             string    `json:"model,omitempty"`
	GearType          GearType  `json:"gear_type,omitempty"`
	Color             Color     `json:"color,omitempty"`
	FuelType          FuelType  `json:"fuel_type,omitempty"`
	Condition         Condition `json:"condition,omitempty"`
	BodyType          string    `json:"body_type,omitempty"`
	OwnerCount        string    `json:"owner_count,omitempty"`
	OwnerType         string    `json:"owner_type,omitempty"`
	OwnerName         string    `json:"owner_name,omitempty"`
	OwnerMemberSince  string    `json:"owner_member_since,omitempty"`
	OwnerLastSeen     string    `json:"owner_last_seen,omitempty"`
	OwnerProfileURL   string    `json:"owner_profile_url,omitempty"`
	OwnerPhone        string    `json:"owner_tel_number,omitempty"`
	DescriptionDetail string    `json:"description_detail,omitempty"`
	AdditionalOptions string    `json:"additional_options,omitempty"`

	// ModelMismatch is set when the detail page names a different model
	// than the cohort being scraped. Such ads must not reach storage.
	ModelMismatch bool `json:"model_mismatch,omitempty"`
}

// ScrapedAd pairs a card with whatever its detail page added. Detail is nil
// when the ad was not enriched.
type ScrapedAd struct {
	Raw    RawAdFields       `json:"raw"`
	Detail *DetailAttributes `json:"detail,omitempty"`
}

// CanonicalAd is the normalized record persisted in the cars table.
// Empty strings are stored as NULL.
type CanonicalAd struct {
	ID                int64     `json:"car_id,omitempty"`
	Brand             string    `json:"brand"`
	Model             string    `json:"model"`
	Year              int       `json:"year"`
	Price             *float64  `json:"price"`
	Description       string    `json:"description"`
	CreatedAt         time.Time `json:"created_at"`
	Mileage           *int      `json:"mileage"`
	Location          string    `json:"location,omitempty"`
	ReferenceURL      string    `json:"reference_url,omitempty"`
	CarAdID           string    `json:"car_ad_id,omitempty"`
	GearType          GearType  `json:"gear_type,omitempty"`
	Color             Color     `json:"color,omitempty"`
	FuelType          FuelType  `json:"fuel_type,omitempty"`
	Condition         Condition `json:"condition,omitempty"`
	BodyType          string    `json:"body_type,omitempty"`
	OwnerCount        string    `json:"owner_count,omitempty"`
	OwnerType         string    `json:"owner_type,omitempty"`
	OwnerName         string    `json:"owner_name,omitempty"`
	OwnerMemberSince  string    `json:"owner_member_since,omitempty"`
	OwnerLastSeen     string    `json:"owner_last_seen,omitempty"`
	OwnerProfileURL   string    `json:"owner_profile_url,omitempty"`
	OwnerPhone        string    `json:"owner_tel_number,omitempty"`
	AdditionalOptions string    `json:"additional_options,omitempty"`
	DescriptionDetail string    `json:"description_detail,omitempty"`
}

// MissingRequired returns the name of the first required field that is
// absent, or "" when the ad may be persisted.
func (a *CanonicalAd) MissingRequired() string {
	switch {
	case a.Year == 0:
		return "year"
	case a.Description == "":
		return "description"
	case a.CreatedAt.IsZero():
		return "created_at"
	}
	return ""
}

// Cohort is one brand/model selection, optionally narrowed by color.
type Cohort struct {
	Brand string `yaml:"brand" json:"brand"`
	Model string `yaml:"model" json:"model"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// SearchPhrase is the query typed into the marketplace search box.
func (c Cohort) SearchPhrase() string {
	return c.Model + " " + c.Brand
}
