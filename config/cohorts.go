package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"olx-car-scraper/models"
)

// DefaultCohorts is used when the cohort file is missing or empty.
var DefaultCohorts = []models.Cohort{{Brand: "Chevrolet", Model: "Lacetti"}}

type cohortFile struct {
	Cohorts []models.Cohort `yaml:"cohorts"`
}

// LoadCohorts reads the brand/model list the pipeline scrapes. Entries with
// an empty brand or model are dropped.
func LoadCohorts(path string) ([]models.Cohort, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cohorts: read %q: %w", path, err)
	}

	var f cohortFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("cohorts: parse %q: %w", path, err)
	}

	out := make([]models.Cohort, 0, len(f.Cohorts))
	for _, c := range f.Cohorts {
		c.Brand = strings.TrimSpace(c.Brand)
		c.Model = strings.TrimSpace(c.Model)
		if c.Brand == "" || c.Model == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
