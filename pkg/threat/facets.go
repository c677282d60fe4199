package threat

import (
	"sort"
	"strings"

	"github.com/biter777/countries"
)

// CountryFacet is one selectable country with its point count.
type CountryFacet struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FacetSet lists the values available for filtering a collection.
type FacetSet struct {
	Countries []CountryFacet `json:"countries"`
	Cities    []string       `json:"cities"`
	Levels    map[Level]int  `json:"levels"`
}

// CountryDisplayName resolves a country code or name to a short display name,
// falling back to the raw value when it is not a known country.
func CountryDisplayName(value string) string {
	name := countries.ByName(value).String()
	if name == "Unknown" || name == "" {
		return value
	}
	if idx := strings.Index(name, " ("); idx != -1 {
		name = name[:idx]
	}
	return name
}

// Facets collects the distinct countries and cities of points, sorted, together
// with per-level point counts. Empty values are skipped.
func Facets(points []Point) FacetSet {
	countryCounts := make(map[string]int)
	citySet := make(map[string]struct{})
	fs := FacetSet{Levels: make(map[Level]int)}
	for _, p := range points {
		if p.Country != "" {
			countryCounts[p.Country]++
		}
		if p.City != "" {
			citySet[p.City] = struct{}{}
		}
		fs.Levels[p.Level]++
	}

	fs.Countries = make([]CountryFacet, 0, len(countryCounts))
	for v, n := range countryCounts {
		fs.Countries = append(fs.Countries, CountryFacet{Value: v, Name: CountryDisplayName(v), Count: n})
	}
	sort.Slice(fs.Countries, func(i, j int) bool { return fs.Countries[i].Value < fs.Countries[j].Value })

	fs.Cities = make([]string, 0, len(citySet))
	for c := range citySet {
		fs.Cities = append(fs.Cities, c)
	}
	sort.Strings(fs.Cities)
	return fs
}
