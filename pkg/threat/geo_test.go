package threat

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want, tolerance        float64
	}{
		{"same point", 0, 0, 0, 0, 0, 0},
		{"half circumference", 0, 0, 0, 180, 20015, 1},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.01},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5, 1},
		{"pole to pole", 90, 0, -90, 0, 20015, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineKm(%v, %v, %v, %v) = %f; want %f ±%f", tt.lat1, tt.lng1, tt.lat2, tt.lng2, got, tt.want, tt.tolerance)
			}
		})
	}

	a, b := Point{Lat: 10, Lng: 20}, Point{Lat: -5, Lng: 33}
	if DistanceKm(a, b) != DistanceKm(b, a) {
		t.Error("DistanceKm is not symmetric")
	}
}

func TestMercator(t *testing.T) {
	tests := []struct {
		lat, lng     float64
		wantX, wantY float64
	}{
		{0, 0, 180, 90},
		{0, -180, 0, 90},
		{0, 180, 360, 90},
		{45, 90, 270, 90 - 360*math.Log(math.Tan(math.Pi/4+math.Pi/8))/(2*math.Pi)},
	}
	for _, tt := range tests {
		x, y := Mercator(tt.lat, tt.lng, 360, 180)
		if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
			t.Errorf("Mercator(%f, %f) = (%f, %f); want (%f, %f)", tt.lat, tt.lng, x, y, tt.wantX, tt.wantY)
		}
	}

	_, yNorth := Mercator(60, 0, 360, 180)
	_, ySouth := Mercator(-60, 0, 360, 180)
	if yNorth >= 90 || ySouth <= 90 {
		t.Errorf("north should be above the equator and south below: north=%f south=%f", yNorth, ySouth)
	}
}
