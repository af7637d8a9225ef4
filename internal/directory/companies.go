package directory

import (
	"net/url"
	"strings"

	"talent-marketplace/internal/domain"
)

// CompanyFilter is the filter state of the company directory.
type CompanyFilter struct {
	Search   string `form:"q"`
	Sector   string `form:"sector"`
	Size     string `form:"size"`
	Location string `form:"location"`
	// NameAndSectorOnly narrows Search to name and sector (table view).
	NameAndSectorOnly bool `form:"-"`
}

func (f CompanyFilter) Active() bool {
	return strings.TrimSpace(f.Search) != "" || f.Sector != "" || f.Size != "" || strings.TrimSpace(f.Location) != ""
}

func (f CompanyFilter) Clear() CompanyFilter {
	return CompanyFilter{NameAndSectorOnly: f.NameAndSectorOnly}
}

func (f CompanyFilter) Query() url.Values {
	v := url.Values{}
	setIf(v, "q", f.Search)
	setIf(v, "sector", f.Sector)
	setIf(v, "size", f.Size)
	setIf(v, "location", f.Location)
	return v
}

func (f CompanyFilter) Match(c domain.CompanyProfile) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		fields := []string{c.CompanyName, c.Sector}
		if !f.NameAndSectorOnly {
			fields = append(fields, c.Description)
		}
		if !anyContains(fields, q) {
			return false
		}
	}
	if s := strings.ToLower(f.Sector); s != "" && !strings.Contains(strings.ToLower(c.Sector), s) {
		return false
	}
	if s := strings.ToLower(f.Size); s != "" {
		if c.CompanySize == nil || !strings.Contains(strings.ToLower(*c.CompanySize), s) {
			return false
		}
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" {
		if c.Location == nil || !strings.Contains(strings.ToLower(*c.Location), loc) {
			return false
		}
	}
	return true
}

func FilterCompanies(all []domain.CompanyProfile, f CompanyFilter) []domain.CompanyProfile {
	out := make([]domain.CompanyProfile, 0, len(all))
	for _, c := range all {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

func Sectors(all []domain.CompanyProfile) []string {
	values := make([]string, 0, len(all))
	for _, c := range all {
		values = append(values, c.Sector)
	}
	return distinct(values)
}

func Sizes(all []domain.CompanyProfile) []string {
	var values []string
	for _, c := range all {
		if c.CompanySize != nil {
			values = append(values, *c.CompanySize)
		}
	}
	return distinct(values)
}

func CompanyLocations(all []domain.CompanyProfile) []string {
	var values []string
	for _, c := range all {
		if c.Location != nil {
			values = append(values, *c.Location)
		}
	}
	return distinct(values)
}
