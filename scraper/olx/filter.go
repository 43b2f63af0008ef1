package olx

import (
	"olx-car-scraper/models"
	"olx-car-scraper/utils"
)

// CurrencyToken is the unit suffix on source-currency price strings.
const CurrencyToken = "сум"

// CoarseFilter drops cards outside the price band before any detail page is
// fetched. Bounds are inclusive and expressed in source currency.
type CoarseFilter struct {
	MinPrice int64
	MaxPrice int64
}

// Accepts reports whether the card is worth enriching.
func (f CoarseFilter) Accepts(raw models.RawAdFields) bool {
	price, err := utils.ParseAmount(raw.PriceText, CurrencyToken)
	if err != nil {
		return false
	}
	if price < f.MinPrice || price > f.MaxPrice {
		return false
	}
	return raw.HasYearOrMileage()
}
