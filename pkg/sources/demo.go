package sources

import (
	"time"

	"github.com/sudorandom/threat-globe/pkg/threat"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return threat.TimePtr(t)
}

// DemoThreats returns a fresh copy of the built-in demo data set.
func DemoThreats() []threat.Point {
	return []threat.Point{
		{ID: "t1", Lat: 55.7558, Lng: 37.6173, City: "Moscow", Country: "Russia", Level: threat.LevelCritical, Count: 250, Timestamp: at("2026-02-07T08:30:00Z")},
		{ID: "t2", Lat: 39.9042, Lng: 116.4074, City: "Beijing", Country: "China", Level: threat.LevelHigh, Count: 180, Timestamp: at("2026-02-07T09:15:00Z")},
		{ID: "t3", Lat: 25.2048, Lng: 55.2708, City: "Dubai", Country: "UAE", Level: threat.LevelMedium, Count: 95, Timestamp: at("2026-02-07T07:45:00Z")},
		{ID: "t4", Lat: 51.5074, Lng: -0.1278, City: "London", Country: "UK", Level: threat.LevelHigh, Count: 140, Timestamp: at("2026-02-07T10:00:00Z")},
		{ID: "t5", Lat: 40.7128, Lng: -74.006, City: "New York", Country: "USA", Level: threat.LevelCritical, Count: 300, Timestamp: at("2026-02-07T06:20:00Z")},
		{ID: "t6", Lat: 35.6762, Lng: 139.6503, City: "Tokyo", Country: "Japan", Level: threat.LevelMedium, Count: 75, Timestamp: at("2026-02-07T11:30:00Z")},
		{ID: "t7", Lat: -33.8688, Lng: 151.2093, City: "Sydney", Country: "Australia", Level: threat.LevelLow, Count: 45, Timestamp: at("2026-02-07T12:00:00Z")},
		{ID: "t8", Lat: 48.8566, Lng: 2.3522, City: "Paris", Country: "France", Level: threat.LevelHigh, Count: 120, Timestamp: at("2026-02-07T08:00:00Z")},
		{ID: "t9", Lat: 37.5665, Lng: 126.978, City: "Seoul", Country: "South Korea", Level: threat.LevelMedium, Count: 88, Timestamp: at("2026-02-07T13:15:00Z")},
		{ID: "t10", Lat: -23.5505, Lng: -46.6333, City: "Sao Paulo", Country: "Brazil", Level: threat.LevelHigh, Count: 160, Timestamp: at("2026-02-07T05:45:00Z")},
		{ID: "t11", Lat: 28.6139, Lng: 77.209, City: "New Delhi", Country: "India", Level: threat.LevelCritical, Count: 210, Timestamp: at("2026-02-07T14:30:00Z")},
		{ID: "t12", Lat: 1.3521, Lng: 103.8198, City: "Singapore", Country: "Singapore", Level: threat.LevelLow, Count: 35, Timestamp: at("2026-02-07T15:00:00Z")},
		{ID: "t13", Lat: 52.52, Lng: 13.405, City: "Berlin", Country: "Germany", Level: threat.LevelMedium, Count: 105, Timestamp: at("2026-02-07T09:45:00Z")},
		{ID: "t14", Lat: 59.3293, Lng: 18.0686, City: "Stockholm", Country: "Sweden", Level: threat.LevelLow, Count: 28, Timestamp: at("2026-02-07T10:30:00Z")},
		{ID: "t15", Lat: 41.0082, Lng: 28.9784, City: "Istanbul", Country: "Turkey", Level: threat.LevelHigh, Count: 135, Timestamp: at("2026-02-07T11:00:00Z")},
		{ID: "t16", Lat: 30.0444, Lng: 31.2357, City: "Cairo", Country: "Egypt", Level: threat.LevelMedium, Count: 72, Timestamp: at("2026-02-07T08:15:00Z")},
		{ID: "t17", Lat: -1.2921, Lng: 36.8219, City: "Nairobi", Country: "Kenya", Level: threat.LevelLow, Count: 42, Timestamp: at("2026-02-07T07:00:00Z")},
		{ID: "t18", Lat: 19.4326, Lng: -99.1332, City: "Mexico City", Country: "Mexico", Level: threat.LevelHigh, Count: 155, Timestamp: at("2026-02-07T04:30:00Z")},
	}
}
