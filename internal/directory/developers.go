// Package directory filters the in-memory developer and company collections.
//
// Collections are fetched whole and filtered here; nothing is pushed to the database.
package directory

import (
	"net/url"
	"sort"
	"strings"

	"talent-marketplace/internal/domain"
)

// Experience bands. A missing years_experience counts as 0.
const (
	Band0to2  = "0-2"
	Band3to5  = "3-5"
	Band6to10 = "6-10"
	Band10up  = "10+"
)

// Bands lists the experience options in display order.
var Bands = []string{Band0to2, Band3to5, Band6to10, Band10up}

// DeveloperListing is anything that can be shown in the developer directory.
type DeveloperListing interface {
	Listing() domain.PublicDeveloperProfile
}

// emailed is implemented by full records; the public view has no email.
type emailed interface {
	ContactEmail() string
}

// DeveloperFilter is the filter state of the developer directory.
// The zero value matches everything.
type DeveloperFilter struct {
	Search     string `form:"q"`
	Skill      string `form:"skill"`
	Experience string `form:"experience"`
	Location   string `form:"location"`
	// SearchSkills makes Search also match skills (table view) instead of bio.
	SearchSkills bool `form:"-"`
	// SearchEmail makes Search also match the contact email of full records (talent dashboard).
	SearchEmail bool `form:"-"`
}

func (f DeveloperFilter) Active() bool {
	return strings.TrimSpace(f.Search) != "" || f.Skill != "" || f.Experience != "" || strings.TrimSpace(f.Location) != ""
}

// Clear returns the neutral filter.
func (f DeveloperFilter) Clear() DeveloperFilter {
	return DeveloperFilter{SearchSkills: f.SearchSkills, SearchEmail: f.SearchEmail}
}

// Query encodes the filter as URL query parameters.
func (f DeveloperFilter) Query() url.Values {
	v := url.Values{}
	setIf(v, "q", f.Search)
	setIf(v, "skill", f.Skill)
	setIf(v, "experience", f.Experience)
	setIf(v, "location", f.Location)
	return v
}

// InBand reports whether years falls in band. Unknown bands match nothing.
func InBand(years *int, band string) bool {
	e := 0
	if years != nil {
		e = *years
	}
	switch band {
	case Band0to2, "junior":
		return e >= 0 && e <= 2
	case Band3to5, "mid":
		return e >= 3 && e <= 5
	case Band6to10:
		return e >= 6 && e <= 10
	case Band10up:
		return e > 10
	case "senior":
		return e >= 6
	}
	return false
}

// Match reports whether one developer passes every active filter.
func (f DeveloperFilter) Match(d DeveloperListing) bool {
	p := d.Listing()

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		fields := []string{p.FullName}
		if f.SearchSkills {
			fields = append(fields, p.Skills...)
		} else if p.Bio != nil {
			fields = append(fields, *p.Bio)
		}
		if e, ok := d.(emailed); ok && f.SearchEmail {
			fields = append(fields, e.ContactEmail())
		}
		if !anyContains(fields, q) {
			return false
		}
	}

	if s := strings.ToLower(f.Skill); s != "" && !anyContains(p.Skills, s) {
		return false
	}

	if f.Experience != "" && !InBand(p.YearsExperience, f.Experience) {
		return false
	}

	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" {
		if p.Location == nil || !strings.Contains(strings.ToLower(*p.Location), loc) {
			return false
		}
	}
	return true
}

// FilterDevelopers returns the matching developers in their original order.
func FilterDevelopers[T DeveloperListing](all []T, f DeveloperFilter) []T {
	out := make([]T, 0, len(all))
	for _, d := range all {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// Skills returns every distinct skill of the collection, sorted.
func Skills[T DeveloperListing](all []T) []string {
	var values []string
	for _, d := range all {
		values = append(values, d.Listing().Skills...)
	}
	return distinct(values)
}

// Locations returns every distinct developer location, sorted.
func Locations[T DeveloperListing](all []T) []string {
	var values []string
	for _, d := range all {
		if loc := d.Listing().Location; loc != nil {
			values = append(values, *loc)
		}
	}
	return distinct(values)
}

func anyContains(values []string, lowerNeedle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lowerNeedle) {
			return true
		}
	}
	return false
}

// distinct trims, drops empties, de-duplicates exactly and sorts.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func setIf(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}
