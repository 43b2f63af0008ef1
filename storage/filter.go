package storage

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"olx-car-scraper/models"
)

// NullToken selects rows where the field is NULL.
const NullToken = "None"

const dateLayout = "2006-01-02"

// Op is the comparison a Condition applies.
type Op int

const (
	OpEqual Op = iota
	OpIsNull
	OpRange
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindFloat
	kindTime
)

// filterable lists the columns a Filter may reference.
var filterable = map[string]fieldKind{
	"brand":       kindText,
	"model":       kindText,
	"description": kindText,
	"location":    kindText,
	"car_ad_id":   kindText,
	"gear_type":   kindText,
	"color":       kindText,
	"fuel_type":   kindText,
	"condition":   kindText,
	"body_type":   kindText,
	"owner_type":  kindText,
	"year":        kindInt,
	"mileage":     kindInt,
	"price":       kindFloat,
	"created_at":  kindTime,
}

var (
	numberRange = regexp.MustCompile(`^(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)$`)
	dateRange   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(\d{4}-\d{2}-\d{2})$`)
)

// Condition is one parsed field constraint.
type Condition struct {
	Field string
	Op    Op
	Raw   string

	text     string
	num      float64
	min, max float64
	at       time.Time
	from, to time.Time
}

// Filter is a conjunction of conditions, ordered by field name.
type Filter struct {
	Conditions []Condition
}

// ParseFilter builds a Filter from query parameters. Unknown keys and empty
// values are ignored. "None" matches NULL; "min-max" on year, price, mileage
// and created_at (dates as YYYY-MM-DD) is an inclusive range. Date ranges
// are whole UTC days; see ParseFilterIn.
func ParseFilter(values url.Values) (Filter, error) {
	return ParseFilterIn(values, time.UTC)
}

// ParseFilterIn is ParseFilter with date ranges covering whole days in loc.
func ParseFilterIn(values url.Values, loc *time.Location) (Filter, error) {
	if loc == nil {
		loc = time.UTC
	}
	var f Filter
	for field, kind := range filterable {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			continue
		}
		c, err := parseCondition(field, kind, raw, loc)
		if err != nil {
			return Filter{}, err
		}
		f.Conditions = append(f.Conditions, c)
	}
	sort.Slice(f.Conditions, func(i, j int) bool {
		return f.Conditions[i].Field < f.Conditions[j].Field
	})
	return f, nil
}

// NewFilter is ParseFilter over a plain map.
func NewFilter(pairs map[string]string) (Filter, error) {
	values := url.Values{}
	for k, v := range pairs {
		values.Set(k, v)
	}
	return ParseFilter(values)
}

// CohortFilter selects the ads of one brand/model, narrowed by color when set.
func CohortFilter(c models.Cohort) Filter {
	pairs := map[string]string{"brand": c.Brand, "model": c.Model}
	if c.Color != "" {
		pairs["color"] = c.Color
	}
	// Text-only conditions cannot fail to parse.
	f, _ := NewFilter(pairs)
	return f
}

func parseCondition(field string, kind fieldKind, raw string, loc *time.Location) (Condition, error) {
	c := Condition{Field: field, Raw: raw}
	if raw == NullToken {
		c.Op = OpIsNull
		return c, nil
	}

	switch kind {
	case kindText:
		c.Op = OpEqual
		c.text = raw

	case kindInt, kindFloat:
		if m := numberRange.FindStringSubmatch(raw); m != nil {
			c.Op = OpRange
			c.min, _ = strconv.ParseFloat(m[1], 64)
			c.max, _ = strconv.ParseFloat(m[2], 64)
			if c.min > c.max {
				return Condition{}, fmt.Errorf("storage: filter %s: empty range %q", field, raw)
			}
			return c, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Condition{}, fmt.Errorf("storage: filter %s: %q is not a number or range", field, raw)
		}
		c.Op = OpEqual
		c.num = n

	case kindTime:
		if m := dateRange.FindStringSubmatch(raw); m != nil {
			from, err1 := time.ParseInLocation(dateLayout, m[1], loc)
			to, err2 := time.ParseInLocation(dateLayout, m[2], loc)
			if err1 != nil || err2 != nil || to.Before(from) {
				return Condition{}, fmt.Errorf("storage: filter %s: bad date range %q", field, raw)
			}
			c.Op = OpRange
			c.from = from
			c.to = to.AddDate(0, 0, 1)
			return c, nil
		}
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Condition{}, fmt.Errorf("storage: filter %s: %q is not RFC3339 or a date range", field, raw)
		}
		c.Op = OpEqual
		c.at = at
	}
	return c, nil
}

// Query renders the filter back to query parameters.
func (f Filter) Query() url.Values {
	values := url.Values{}
	for _, c := range f.Conditions {
		values.Set(c.Field, c.Raw)
	}
	return values
}

// Where renders the filter as a SQL boolean expression using $n placeholders
// starting at $1. An empty filter renders as "TRUE".
func (f Filter) Where() (string, []any) {
	if len(f.Conditions) == 0 {
		return "TRUE", nil
	}

	clauses := make([]string, 0, len(f.Conditions))
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range f.Conditions {
		kind := filterable[c.Field]
		switch c.Op {
		case OpIsNull:
			clauses = append(clauses, c.Field+" IS NULL")
		case OpRange:
			if kind == kindTime {
				clauses = append(clauses, fmt.Sprintf("(%s >= %s AND %s < %s)",
					c.Field, next(c.from), c.Field, next(c.to)))
			} else {
				clauses = append(clauses, fmt.Sprintf("%s BETWEEN %s AND %s",
					c.Field, next(c.min), next(c.max)))
			}
		case OpEqual:
			var v any
			switch kind {
			case kindText:
				v = c.text
			case kindInt:
				v = int64(c.num)
			case kindFloat:
				v = c.num
			case kindTime:
				v = c.at
			}
			clauses = append(clauses, fmt.Sprintf("%s = %s", c.Field, next(v)))
		}
	}
	return strings.Join(clauses, " AND "), args
}

// Match evaluates the filter against one ad in memory.
func (f Filter) Match(ad *models.CanonicalAd) bool {
	for _, c := range f.Conditions {
		if !c.match(ad) {
			return false
		}
	}
	return true
}

func (c Condition) match(ad *models.CanonicalAd) bool {
	switch filterable[c.Field] {
	case kindText:
		v := textField(ad, c.Field)
		if c.Op == OpIsNull {
			return v == ""
		}
		return v == c.text

	case kindInt, kindFloat:
		v, ok := numberField(ad, c.Field)
		switch c.Op {
		case OpIsNull:
			return !ok
		case OpRange:
			return ok && v >= c.min && v <= c.max
		}
		return ok && v == c.num

	case kindTime:
		if ad.CreatedAt.IsZero() {
			return c.Op == OpIsNull
		}
		switch c.Op {
		case OpRange:
			return !ad.CreatedAt.Before(c.from) && ad.CreatedAt.Before(c.to)
		case OpEqual:
			return ad.CreatedAt.Equal(c.at)
		}
	}
	return false
}

func textField(ad *models.CanonicalAd, field string) string {
	switch field {
	case "brand":
		return ad.Brand
	case "model":
		return ad.Model
	case "description":
		return ad.Description
	case "location":
		return ad.Location
	case "car_ad_id":
		return ad.CarAdID
	case "gear_type":
		return string(ad.GearType)
	case "color":
		return string(ad.Color)
	case "fuel_type":
		return string(ad.FuelType)
	case "condition":
		return string(ad.Condition)
	case "body_type":
		return ad.BodyType
	case "owner_type":
		return ad.OwnerType
	}
	return ""
}

func numberField(ad *models.CanonicalAd, field string) (float64, bool) {
	switch field {
	case "year":
		return float64(ad.Year), ad.Year != 0
	case "mileage":
		if ad.Mileage == nil {
			return 0, false
		}
		return float64(*ad.Mileage), true
	case "price":
		if ad.Price == nil {
			return 0, false
		}
		return *ad.Price, true
	}
	return 0, false
}
