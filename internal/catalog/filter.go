package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is the page size used when a request does not specify one.
var DefaultPageSize = 24

// MaxPageSize caps the requested page size.
var MaxPageSize = 100

// SortKey selects a listing order.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortYearDesc  SortKey = "year_desc"
	SortYearAsc   SortKey = "year_asc"
	SortMileage   SortKey = "mileage_asc"
)

var validSorts = map[SortKey]bool{
	SortNewest: true, SortPriceAsc: true, SortPriceDesc: true,
	SortYearDesc: true, SortYearAsc: true, SortMileage: true,
}

// ParseSortKey returns the sort key for s, defaulting to SortNewest.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if validSorts[k] {
		return k
	}
	return SortNewest
}

// Page carries ordering and skip/limit for a find-many call.
type Page struct {
	Offset int
	Limit  int
	Sort   SortKey
}

// FilterSpec is a request-scoped set of browse filters.
// It is rebuilt from request parameters on every call and never persisted.
type FilterSpec struct {
	Category  string   `json:"category,omitempty"`
	Brands    []string `json:"brands,omitempty"`
	Models    []string `json:"models,omitempty"`
	YearFrom  *int     `json:"yearFrom,omitempty"`
	YearTo    *int     `json:"yearTo,omitempty"`
	PriceFrom *float64 `json:"priceFrom,omitempty"`
	PriceTo   *float64 `json:"priceTo,omitempty"`
	Query     string   `json:"q,omitempty"`

	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
	Sort   SortKey `json:"sort"`
}

// Page returns the ordering and skip/limit portion of the filter.
func (f FilterSpec) Page() Page {
	return Page{Offset: f.Offset, Limit: f.Limit, Sort: f.Sort}
}

// PageNumber returns the 1-based page number for the current offset.
func (f FilterSpec) PageNumber() int {
	if f.Limit <= 0 {
		return 1
	}
	return f.Offset/f.Limit + 1
}

// ParseFilterSpec builds a FilterSpec from the path-level category slug and
// query parameters. It never fails: malformed numbers become open bounds and
// unknown parameters are ignored.
//
// Recognised parameters: brands, models (comma-joined), yearFrom, yearTo,
// priceFrom, priceTo, q, page, offset, limit, sort.
func ParseFilterSpec(slug string, q url.Values) FilterSpec {
	f := FilterSpec{
		Category:  strings.TrimSpace(slug),
		Brands:    splitList(q.Get("brands")),
		Models:    splitList(q.Get("models")),
		YearFrom:  parseIntBound(q.Get("yearFrom")),
		YearTo:    parseIntBound(q.Get("yearTo")),
		PriceFrom: parseFloatBound(q.Get("priceFrom")),
		PriceTo:   parseFloatBound(q.Get("priceTo")),
		Query:     strings.TrimSpace(q.Get("q")),
		Sort:      ParseSortKey(q.Get("sort")),
	}

	f.Limit = positiveInt(q.Get("limit"), DefaultPageSize)
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}

	if off, err := strconv.Atoi(q.Get("offset")); err == nil && off >= 0 {
		f.Offset = off
	} else {
		f.Offset = (positiveInt(q.Get("page"), 1) - 1) * f.Limit
	}

	return f
}

// splitList splits a comma-joined list, trimming and de-duplicating entries.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func parseFloatBound(s string) *float64 {
	v, ok := parseNumericString(s)
	if !ok {
		return nil
	}
	return &v
}

func parseIntBound(s string) *int {
	v, ok := parseNumericString(s)
	if !ok || v > 1e9 || v < -1e9 {
		return nil
	}
	i := int(v)
	return &i
}

func positiveInt(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 1 {
		return def
	}
	return i
}
