package threat

import (
	"fmt"
	"math/rand"
	"time"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// samplePoints is a small world-wide data set with mixed levels and optional fields.
func samplePoints() []Point {
	return []Point{
		{ID: "t1", Lat: 55.7558, Lng: 37.6173, City: "Moscow", Country: "Russia", Level: LevelCritical, Count: 250, Timestamp: ts("2026-02-07T08:30:00Z")},
		{ID: "t2", Lat: 39.9042, Lng: 116.4074, City: "Beijing", Country: "China", Level: LevelHigh, Count: 180, Timestamp: ts("2026-02-07T09:15:00Z")},
		{ID: "t3", Lat: 25.2048, Lng: 55.2708, City: "Dubai", Country: "UAE", Level: LevelMedium, Count: 95, Timestamp: ts("2026-02-07T07:45:00Z")},
		{ID: "t4", Lat: 51.5074, Lng: -0.1278, City: "London", Country: "UK", Level: LevelHigh, Count: 140, Timestamp: ts("2026-02-07T10:00:00Z")},
		{ID: "t5", Lat: 40.7128, Lng: -74.006, City: "New York", Country: "USA", Level: LevelCritical, Count: 300, Timestamp: ts("2026-02-07T06:20:00Z")},
		{ID: "t6", Lat: 48.8566, Lng: 2.3522, City: "Paris", Country: "France", Level: LevelHigh, Count: 120},
		{ID: "t7", Lat: 52.52, Lng: 13.405, Label: "Berlin DC", Level: LevelMedium, Count: 105, Timestamp: ts("2026-02-07T09:45:00Z")},
		{ID: "t8", Lat: -33.8688, Lng: 151.2093, City: "Sydney", Country: "Australia", Level: LevelLow, Count: 45},
		{ID: "t9", Lat: 1.3521, Lng: 103.8198, Country: "Singapore", Level: LevelInfo, Count: 0, Timestamp: ts("2026-02-07T15:00:00Z")},
	}
}

// randomPoints generates n points with unique IDs from a fixed seed.
func randomPoints(seed int64, n int) []Point {
	r := rand.New(rand.NewSource(seed))
	countries := []string{"", "USA", "Canada", "France", "Japan"}
	cities := []string{"", "Paris", "Tokyo", "Ottawa", "Austin"}
	base := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)
	points := make([]Point, n)
	for i := range points {
		p := Point{
			ID:      fmt.Sprintf("p%03d", i),
			Lat:     r.Float64()*120 - 60,
			Lng:     r.Float64()*360 - 180,
			Country: countries[r.Intn(len(countries))],
			City:    cities[r.Intn(len(cities))],
			Level:   Level(r.Intn(5)),
			Count:   r.Intn(200),
		}
		if r.Intn(3) > 0 {
			p.Timestamp = TimePtr(base.Add(time.Duration(r.Intn(24*60)) * time.Minute))
		}
		points[i] = p
	}
	return points
}

func ids(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.ID
	}
	return out
}
