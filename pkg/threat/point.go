package threat

import (
	"strings"
	"time"
)

// Point is a single geolocated threat event. Empty City, Country and Label
// values are treated as absent.
type Point struct {
	ID        string         `json:"id"`
	Lat       float64        `json:"lat"`
	Lng       float64        `json:"lng"`
	City      string         `json:"city,omitempty"`
	Country   string         `json:"country,omitempty"`
	Label     string         `json:"label,omitempty"`
	Level     Level          `json:"level"`
	Count     int            `json:"count"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// HasTimestamp reports whether the point takes part in time-windowed queries.
func (p Point) HasTimestamp() bool {
	return p.Timestamp != nil
}

// searchText is the lower-cased text matched by free-text search.
func (p Point) searchText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.City, p.Country, p.Label, p.ID} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Cluster is a group of points merged by proximity to a seed point.
type Cluster struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Points     []Point `json:"points"`
	TotalCount int     `json:"total_count"`
	MaxLevel   Level   `json:"max_level"`
}

// TimeRange is an inclusive time window. Start <= End is expected but not enforced.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within [Start, End].
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func IntPtr(n int) *int {
	return &n
}
