// Package render draws border segments and threat clusters onto a flat map
// and encodes the result as PNG.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/sudorandom/threat-globe/pkg/threat"
)

// Projection maps geographic coordinates to pixel coordinates.
type Projection interface {
	Project(lat, lng float64) (x, y float64)
}

// maxMercatorLat keeps Mercator y finite.
const maxMercatorLat = 85.05112878

type Mercator struct {
	Width, Height int
}

func (m Mercator) Project(lat, lng float64) (x, y float64) {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	return threat.Mercator(lat, lng, float64(m.Width), float64(m.Height))
}

// maxEqualAreaLat avoids the singular derivative at the poles.
const maxEqualAreaLat = 89.5

// EqualArea is the Mollweide projection. At Zoom 1 a 2:1 canvas holds the
// whole world.
type EqualArea struct {
	Width, Height int
	Zoom          float64
}

func (e EqualArea) Project(lat, lng float64) (x, y float64) {
	lat = math.Max(-maxEqualAreaLat, math.Min(maxEqualAreaLat, lat))
	latRad, lngRad := lat*math.Pi/180, lng*math.Pi/180
	theta := latRad
	for i := 0; i < 30; i++ {
		delta := (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(latRad)) / (2 + 2*math.Cos(2*theta))
		theta -= delta
		if math.Abs(delta) < 1e-7 {
			break
		}
	}
	zoom := e.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	r := float64(e.Width) / (2 * math.Sqrt(8)) * zoom
	x = (float64(e.Width) / 2) + r*(2*math.Sqrt(2)/math.Pi)*lngRad*math.Cos(theta)
	y = (float64(e.Height) / 2) - r*math.Sqrt(2)*math.Sin(theta)
	return x, y
}

// NewProjection returns the projection called name: mercator or equal-area.
func NewProjection(name string, width, height int) (Projection, error) {
	switch strings.ToLower(name) {
	case "", "mercator":
		return Mercator{Width: width, Height: height}, nil
	case "equal-area", "mollweide":
		return EqualArea{Width: width, Height: height, Zoom: 1}, nil
	}
	return nil, fmt.Errorf("unknown projection %q", name)
}
