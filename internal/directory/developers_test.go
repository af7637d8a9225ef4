package directory

import (
	"strconv"
	"testing"

	"talent-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
)

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }

func dev(name string, years *int, skills ...string) domain.DeveloperProfile {
	return domain.DeveloperProfile{
		PublicDeveloperProfile: domain.PublicDeveloperProfile{
			ID:              name,
			FullName:        name,
			Skills:          skills,
			YearsExperience: years,
		},
		Email: name + "@example.com",
	}
}

func TestInBand_Boundaries(t *testing.T) {
	tests := []struct {
		years *int
		band  string
		want  bool
	}{
		{nil, Band0to2, true},
		{intp(0), Band0to2, true},
		{intp(2), Band0to2, true},
		{intp(2), Band3to5, false},
		{intp(3), Band3to5, true},
		{intp(5), Band3to5, true},
		{intp(5), Band6to10, false},
		{intp(6), Band6to10, true},
		{intp(6), Band3to5, false},
		{intp(10), Band6to10, true},
		{intp(10), Band10up, false},
		{intp(11), Band10up, true},
		{intp(11), Band6to10, false},
		{intp(4), "bogus", false},
	}
	for _, tt := range tests {
		years := "nil"
		if tt.years != nil {
			years = strconv.Itoa(*tt.years)
		}
		t.Run(tt.band+"/"+years, func(t *testing.T) {
			assert.Equal(t, tt.want, InBand(tt.years, tt.band))
		})
	}
}

func TestInBand_EachValueInExactlyOneBand(t *testing.T) {
	for years := 0; years <= 15; years++ {
		n := 0
		for _, b := range Bands {
			if InBand(intp(years), b) {
				n++
			}
		}
		assert.Equal(t, 1, n, "years=%d", years)
	}
}

func TestFilterDevelopers_CombinesWithAnd(t *testing.T) {
	all := []domain.DeveloperProfile{
		dev("Ana", intp(2), "Go", "PostgreSQL"),
		dev("Bruno", intp(7), "Go", "React"),
		dev("Carla", nil, "Python"),
	}
	all[1].Location = strp("Madrid, Spain")
	all[0].Bio = strp("Backend engineer who loves databases")

	got := FilterDevelopers(all, DeveloperFilter{Skill: "go"})
	assert.Equal(t, []string{"Ana", "Bruno"}, names(got))

	got = FilterDevelopers(all, DeveloperFilter{Skill: "go", Experience: Band6to10})
	assert.Equal(t, []string{"Bruno"}, names(got))

	got = FilterDevelopers(all, DeveloperFilter{Experience: Band0to2})
	assert.Equal(t, []string{"Ana", "Carla"}, names(got))

	got = FilterDevelopers(all, DeveloperFilter{Location: "madrid"})
	assert.Equal(t, []string{"Bruno"}, names(got))

	got = FilterDevelopers(all, DeveloperFilter{Search: "DATABASES"})
	assert.Equal(t, []string{"Ana"}, names(got))

	got = FilterDevelopers(all, DeveloperFilter{Skill: "sql", Location: "madrid"})
	assert.Empty(t, got)
}

func TestFilterDevelopers_SearchVariants(t *testing.T) {
	all := []domain.DeveloperProfile{dev("ana", nil, "Kubernetes")}

	// only the talent dashboard searches email
	assert.Empty(t, FilterDevelopers(all, DeveloperFilter{Search: "ana@example"}))
	assert.Len(t, FilterDevelopers(all, DeveloperFilter{Search: "ana@example", SearchEmail: true}), 1)

	// the public view carries no email
	public := []domain.PublicDeveloperProfile{all[0].PublicDeveloperProfile}
	assert.Empty(t, FilterDevelopers(public, DeveloperFilter{Search: "ana@example", SearchEmail: true}))

	// table view searches skills instead of bio
	assert.Empty(t, FilterDevelopers(all, DeveloperFilter{Search: "kube"}))
	assert.Len(t, FilterDevelopers(all, DeveloperFilter{Search: "kube", SearchSkills: true}), 1)
}

func TestClearFilters_YieldsFullCollection(t *testing.T) {
	all := []domain.DeveloperProfile{
		dev("Ana", intp(1), "Go"),
		dev("Bruno", intp(12), "Rust"),
		dev("Carla", nil),
	}
	f := DeveloperFilter{Search: "zzz", Skill: "cobol", Experience: Band3to5, Location: "Mars"}
	assert.Empty(t, FilterDevelopers(all, f))

	cleared := f.Clear()
	assert.False(t, cleared.Active())
	assert.Equal(t, DeveloperFilter{}, cleared)
	assert.Equal(t, all, FilterDevelopers(all, cleared))
}

func TestDistinctLists(t *testing.T) {
	all := []domain.DeveloperProfile{
		dev("Ana", nil, "Go", "SQL"),
		dev("Bruno", nil, "SQL", "Docker", " "),
	}
	all[0].Location = strp("Lisbon")
	all[1].Location = strp("Lisbon")

	assert.Equal(t, []string{"Docker", "Go", "SQL"}, Skills(all))
	assert.Equal(t, []string{"Lisbon"}, Locations(all))
}

func TestDeveloperFilter_Query(t *testing.T) {
	f := DeveloperFilter{Search: " go ", Experience: Band10up}
	assert.Equal(t, "experience=10%2B&q=go", f.Query().Encode())
}

func names(devs []domain.DeveloperProfile) []string {
	out := make([]string, 0, len(devs))
	for _, d := range devs {
		out = append(out, d.FullName)
	}
	return out
}

