// Package borders turns country border GeoJSON into flat line segments and
// caches the result for the life of the process.
package borders

import (
	"errors"
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// Segment is one edge of a border ring.
type Segment struct {
	StartLat float64 `json:"start_lat"`
	StartLng float64 `json:"start_lng"`
	EndLat   float64 `json:"end_lat"`
	EndLng   float64 `json:"end_lng"`
}

// CrossesAntimeridian reports whether the edge jumps across ±180° longitude.
func (s Segment) CrossesAntimeridian() bool {
	d := s.EndLng - s.StartLng
	return d > 180 || d < -180
}

// Flatten emits one segment per consecutive vertex pair of every Polygon and
// MultiPolygon ring. Rings are expected to be closed already, so no closing
// edge is added. Features of other geometry types are ignored.
func Flatten(fc *geojson.FeatureCollection) []Segment {
	segments := make([]Segment, 0)
	if fc == nil {
		return segments
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if f.Geometry.IsPolygon() {
			segments = appendRings(segments, f.Geometry.Polygon)
		} else if f.Geometry.IsMultiPolygon() {
			for _, poly := range f.Geometry.MultiPolygon {
				segments = appendRings(segments, poly)
			}
		}
	}
	return segments
}

func appendRings(segments []Segment, rings [][][]float64) []Segment {
	for _, ring := range rings {
		for i := 0; i < len(ring)-1; i++ {
			a, b := ring[i], ring[i+1]
			if len(a) < 2 || len(b) < 2 {
				continue
			}
			// GeoJSON positions are [lng, lat].
			segments = append(segments, Segment{StartLat: a[1], StartLng: a[0], EndLat: b[1], EndLng: b[0]})
		}
	}
	return segments
}

// ParseSegments decodes a GeoJSON FeatureCollection and flattens it. A document
// without a type is accepted as long as it carries a features array.
func ParseSegments(data []byte) ([]Segment, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding border geojson: %w", err)
	}
	switch {
	case fc.Type == "" && fc.Features == nil:
		return nil, errors.New("decoding border geojson: no features array")
	case fc.Type != "" && fc.Type != "FeatureCollection":
		return nil, fmt.Errorf("decoding border geojson: unexpected type %q", fc.Type)
	}
	return Flatten(fc), nil
}
