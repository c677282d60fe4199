package threat

import (
	"reflect"
	"testing"
)

func TestCountryDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"DE", "Germany"},
		{"Narnia", "Narnia"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CountryDisplayName(tt.in); got != tt.want {
			t.Errorf("CountryDisplayName(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFacets(t *testing.T) {
	fs := Facets(samplePoints())

	var values []string
	for _, c := range fs.Countries {
		values = append(values, c.Value)
		if c.Count != 1 {
			t.Errorf("country %s count = %d; want 1", c.Value, c.Count)
		}
	}
	wantCountries := []string{"Australia", "China", "France", "Russia", "Singapore", "UAE", "UK", "USA"}
	if !reflect.DeepEqual(values, wantCountries) {
		t.Errorf("countries = %v; want %v", values, wantCountries)
	}

	wantCities := []string{"Beijing", "Dubai", "London", "Moscow", "New York", "Paris", "Sydney"}
	if !reflect.DeepEqual(fs.Cities, wantCities) {
		t.Errorf("cities = %v; want %v", fs.Cities, wantCities)
	}

	wantLevels := map[Level]int{LevelCritical: 2, LevelHigh: 3, LevelMedium: 2, LevelLow: 1, LevelInfo: 1}
	if !reflect.DeepEqual(fs.Levels, wantLevels) {
		t.Errorf("levels = %v; want %v", fs.Levels, wantLevels)
	}

	empty := Facets(nil)
	if empty.Countries == nil || empty.Cities == nil || len(empty.Countries) != 0 {
		t.Errorf("Facets(nil) = %+v; want empty non-nil lists", empty)
	}
}
