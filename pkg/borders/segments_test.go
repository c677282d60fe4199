package borders

import (
	"reflect"
	"testing"
)

const testCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Square"}, "geometry": {
      "type": "Polygon",
      "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]
    }},
    {"type": "Feature", "properties": {"name": "Islands"}, "geometry": {
      "type": "MultiPolygon",
      "coordinates": [
        [[[20, 20], [21, 20], [21, 21], [20, 20]]],
        [[[30, -5], [31, -5], [31, -4], [30, -5]]]
      ]
    }},
    {"type": "Feature", "properties": {"name": "Capital"}, "geometry": {"type": "Point", "coordinates": [1, 2]}},
    {"type": "Feature", "properties": {"name": "River"}, "geometry": {"type": "LineString", "coordinates": [[1, 2], [3, 4]]}},
    {"type": "Feature", "properties": {"name": "Nowhere"}, "geometry": null}
  ]
}`

func TestParseSegments(t *testing.T) {
	segs, err := ParseSegments([]byte(testCollection))
	if err != nil {
		t.Fatalf("ParseSegments failed: %v", err)
	}
	if len(segs) != 10 {
		t.Fatalf("got %d segments, want 10 (4 + 3 + 3)", len(segs))
	}

	want := []Segment{
		{StartLat: 0, StartLng: 0, EndLat: 0, EndLng: 10},
		{StartLat: 0, StartLng: 10, EndLat: 10, EndLng: 10},
		{StartLat: 10, StartLng: 10, EndLat: 10, EndLng: 0},
		{StartLat: 10, StartLng: 0, EndLat: 0, EndLng: 0},
	}
	if !reflect.DeepEqual(segs[:4], want) {
		t.Errorf("polygon segments = %v, want %v", segs[:4], want)
	}
	if got := segs[7]; got != (Segment{StartLat: -5, StartLng: 30, EndLat: -5, EndLng: 31}) {
		t.Errorf("first segment of the second island = %+v", got)
	}
}

func TestParseSegmentsErrors(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{"type": "Feature", "geometry": null}`,
		`{}`,
		`{"features": null}`,
	} {
		if _, err := ParseSegments([]byte(in)); err == nil {
			t.Errorf("ParseSegments(%q) should fail", in)
		}
	}

	segs, err := ParseSegments([]byte(`{"type": "FeatureCollection", "features": []}`))
	if err != nil || segs == nil || len(segs) != 0 {
		t.Errorf("empty collection = (%v, %v), want empty non-nil", segs, err)
	}

	untyped := `{"features": [{"type": "Feature", "properties": {},
"geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}}]}`
	segs, err = ParseSegments([]byte(untyped))
	if err != nil || len(segs) != 3 {
		t.Errorf("collection without type = (%d segments, %v), want 3", len(segs), err)
	}
}

func TestFlattenNil(t *testing.T) {
	if got := Flatten(nil); got == nil || len(got) != 0 {
		t.Errorf("Flatten(nil) = %v, want empty non-nil", got)
	}
}

func TestCrossesAntimeridian(t *testing.T) {
	tests := []struct {
		s    Segment
		want bool
	}{
		{Segment{StartLng: 179, EndLng: -179}, true},
		{Segment{StartLng: -179.5, EndLng: 179.5}, true},
		{Segment{StartLng: 10, EndLng: 20}, false},
		{Segment{StartLng: -90, EndLng: 90}, false},
	}
	for _, tt := range tests {
		if got := tt.s.CrossesAntimeridian(); got != tt.want {
			t.Errorf("%+v.CrossesAntimeridian() = %v; want %v", tt.s, got, tt.want)
		}
	}
}
