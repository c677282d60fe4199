package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sudorandom/threat-globe/pkg/borders"
	"github.com/sudorandom/threat-globe/pkg/threat"
)

func rgbaAt(c *Canvas, x, y int) color.RGBA {
	return c.Image().RGBAAt(x, y)
}

func TestDrawBorders(t *testing.T) {
	c := NewCanvas(360, 180, nil)
	red := color.RGBA{255, 0, 0, 255}
	c.DrawBorders([]borders.Segment{
		{StartLat: 0, StartLng: -10, EndLat: 0, EndLng: 10},
		{StartLat: 40, StartLng: 179, EndLat: 40, EndLng: -179},
	}, red)

	for x := 170; x <= 190; x++ {
		if got := rgbaAt(c, x, 90); got != red {
			t.Fatalf("pixel (%d, 90) = %v; want border color", x, got)
		}
	}
	if got := rgbaAt(c, 180, 46); got == red {
		t.Error("segment crossing the antimeridian was drawn")
	}
	if got := rgbaAt(c, 0, 0); got != BackgroundColor {
		t.Errorf("background pixel = %v; want %v", got, BackgroundColor)
	}
}

func TestDrawLineClipsOffCanvas(t *testing.T) {
	c := NewCanvas(20, 20, nil)
	c.drawLine(-50, -50, 70, 70, BorderColor)
	if got := rgbaAt(c, 10, 10); got != BorderColor {
		t.Errorf("pixel on the diagonal = %v; want border color", got)
	}
}

func TestMarkerRadius(t *testing.T) {
	tests := []struct {
		total, width int
		want         float64
	}{
		{0, 1000, 4},
		{9, 1000, 10},
		{99, 1000, 16},
		{0, 3000, 8},
		{1 << 62, 3000, 120},
		{-5, 1000, 4},
	}
	for _, tt := range tests {
		if got := MarkerRadius(tt.total, tt.width); got != tt.want {
			t.Errorf("MarkerRadius(%d, %d) = %v; want %v", tt.total, tt.width, got, tt.want)
		}
	}
}

func TestDrawClusters(t *testing.T) {
	c := NewCanvas(360, 180, nil)
	clusters := threat.ClusterPoints([]threat.Point{
		{ID: "a", Lat: 0, Lng: 0, Level: threat.LevelCritical, Count: 100},
		{ID: "b", Lat: 0, Lng: 100, Level: threat.LevelLow, Count: 1},
		{ID: "edge", Lat: 0, Lng: 179.9, Level: threat.LevelHigh, Count: 1},
	}, threat.DefaultClusterThresholdKm)
	c.DrawClusters(clusters, threat.DefaultColors)

	center := rgbaAt(c, 180, 90)
	if center == BackgroundColor {
		t.Fatal("critical cluster was not drawn")
	}
	if center.R < 150 || center.G > 40 {
		t.Errorf("critical marker color = %v; want mostly red", center)
	}
	low := rgbaAt(c, 280, 90)
	if low.G < 100 {
		t.Errorf("low marker color = %v; want mostly green", low)
	}
	if got := rgbaAt(c, 180, 20); got != BackgroundColor {
		t.Errorf("pixel far from any cluster = %v; want background", got)
	}
}

func TestDrawLegend(t *testing.T) {
	c := NewCanvas(400, 200, nil)
	clusters := []threat.Cluster{{MaxLevel: threat.LevelHigh, TotalCount: 1234}}
	if err := c.DrawLegend(clusters, threat.DefaultColors); err != nil {
		t.Fatalf("DrawLegend failed: %v", err)
	}
	// The first swatch is the critical color.
	top := c.Height - 16 - len(threat.Levels())*18
	if got := rgbaAt(c, 16+5, top+5); got != threat.DefaultColors.Critical {
		t.Errorf("first swatch = %v; want %v", got, threat.DefaultColors.Critical)
	}
}

func TestEncodePNG(t *testing.T) {
	c := NewCanvas(64, 32, EqualArea{Width: 64, Height: 32, Zoom: 1})
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("decoded size = %v; want 64x32", b)
	}
}

func TestSaveFrame(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	c := NewCanvas(8, 8, nil)
	path, err := c.SaveFrame(dir, time.UnixMilli(1700000000000))
	if err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}
	if filepath.Base(path) != "globe-export-1700000000000.png" {
		t.Errorf("SaveFrame path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("frame not written: %v", err)
	}
}
