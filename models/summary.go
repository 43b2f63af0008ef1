package models

// FacetSummary is the value→count breakdown of a set of ads, per field.
// Categorical fields count raw values ("None" for nulls); year, price,
// mileage and created_at are grouped into synthetic range buckets.
type FacetSummary struct {
	Total  int                       `json:"total"`
	Fields map[string]map[string]int `json:"fields"`
}

// SaveReport counts what the dedup gate did with a batch.
type SaveReport struct {
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Failed     int `json:"failed"`
}
