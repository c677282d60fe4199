package threat

import (
	"slices"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// FilterCriteria selects points. Nil or empty fields place no constraint on
// their dimension; all present constraints must hold.
type FilterCriteria struct {
	Levels    []Level    `json:"levels,omitempty"`
	Countries []string   `json:"countries,omitempty"`
	Cities    []string   `json:"cities,omitempty"`
	Search    string     `json:"search,omitempty"`
	TimeRange *TimeRange `json:"time_range,omitempty"`
	MinCount  *int       `json:"min_count,omitempty"`
	// AnyTerms keeps points whose searchable text contains at least one term.
	AnyTerms []string `json:"any_terms,omitempty"`
}

// ActiveCount returns the number of constrained dimensions.
func (c FilterCriteria) ActiveCount() int {
	n := 0
	if len(c.Levels) > 0 {
		n++
	}
	if len(c.Countries) > 0 {
		n++
	}
	if len(c.Cities) > 0 {
		n++
	}
	if c.Search != "" {
		n++
	}
	if c.TimeRange != nil {
		n++
	}
	if c.MinCount != nil {
		n++
	}
	if len(c.AnyTerms) > 0 {
		n++
	}
	return n
}

// ToggleLevel returns a copy of c with level added to or removed from Levels.
// Removing the last level clears the constraint.
func ToggleLevel(c FilterCriteria, level Level) FilterCriteria {
	next := make([]Level, 0, len(c.Levels)+1)
	found := false
	for _, l := range c.Levels {
		if l == level {
			found = true
			continue
		}
		next = append(next, l)
	}
	if !found {
		next = append(next, level)
	}
	if len(next) == 0 {
		next = nil
	}
	c.Levels = next
	return c
}

type matcher struct {
	c     FilterCriteria
	query string
	terms *ahocorasick.Matcher
}

func newMatcher(c FilterCriteria) *matcher {
	m := &matcher{c: c, query: strings.ToLower(c.Search)}
	var terms []string
	for _, t := range c.AnyTerms {
		if t != "" {
			terms = append(terms, strings.ToLower(t))
		}
	}
	if len(terms) > 0 {
		m.terms = ahocorasick.NewStringMatcher(terms)
	}
	return m
}

func (m *matcher) keep(p Point) bool {
	c := m.c
	if len(c.Levels) > 0 && !slices.Contains(c.Levels, p.Level) {
		return false
	}
	// Points without a country or city are not excluded by those allow-sets.
	if len(c.Countries) > 0 && p.Country != "" && !slices.Contains(c.Countries, p.Country) {
		return false
	}
	if len(c.Cities) > 0 && p.City != "" && !slices.Contains(c.Cities, p.City) {
		return false
	}
	if c.MinCount != nil && p.Count < *c.MinCount {
		return false
	}
	if m.query != "" || m.terms != nil {
		text := p.searchText()
		if m.query != "" && !strings.Contains(text, m.query) {
			return false
		}
		if m.terms != nil && len(m.terms.Match([]byte(text))) == 0 {
			return false
		}
	}
	if c.TimeRange != nil && p.Timestamp != nil && !c.TimeRange.Contains(*p.Timestamp) {
		return false
	}
	return true
}

// FilterPoints returns the points matching c in their original order. The
// input is never modified and the result is always a new slice.
func FilterPoints(points []Point, c FilterCriteria) []Point {
	m := newMatcher(c)
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if m.keep(p) {
			out = append(out, p)
		}
	}
	return out
}
