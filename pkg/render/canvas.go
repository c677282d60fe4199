package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/vector"

	"github.com/sudorandom/threat-globe/pkg/borders"
	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/threat"
)

var (
	BackgroundColor = color.RGBA{8, 10, 15, 255}
	BorderColor     = color.RGBA{36, 42, 53, 255}
)

// Canvas is an RGBA raster with a projection.
type Canvas struct {
	Width, Height int
	Projection    Projection

	img *image.RGBA
}

// NewCanvas returns a canvas filled with BackgroundColor. A nil projection
// means Mercator.
func NewCanvas(width, height int, proj Projection) *Canvas {
	if proj == nil {
		proj = Mercator{Width: width, Height: height}
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{BackgroundColor}, image.Point{}, draw.Src)
	return &Canvas{Width: width, Height: height, Projection: proj, img: img}
}

func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// DrawBorders draws every segment as a one pixel line. Segments that cross the
// antimeridian are skipped rather than drawn across the whole map.
func (c *Canvas) DrawBorders(segments []borders.Segment, col color.RGBA) {
	for _, s := range segments {
		if s.CrossesAntimeridian() {
			continue
		}
		x1, y1 := c.Projection.Project(s.StartLat, s.StartLng)
		x2, y2 := c.Projection.Project(s.EndLat, s.EndLng)
		c.drawLine(int(x1), int(y1), int(x2), int(y2), col)
	}
}

func (c *Canvas) drawLine(x1, y1, x2, y2 int, col color.RGBA) {
	dx, dy := math.Abs(float64(x2-x1)), math.Abs(float64(y2-y1))
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		if x1 >= 0 && x1 < c.Width && y1 >= 0 && y1 < c.Height {
			off := y1*c.img.Stride + x1*4
			c.img.Pix[off], c.img.Pix[off+1], c.img.Pix[off+2], c.img.Pix[off+3] = col.R, col.G, col.B, 255
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// MarkerRadius sizes a cluster marker logarithmically by its total count.
func MarkerRadius(totalCount, canvasWidth int) float64 {
	baseRad, growth := 4.0, 6.0
	if canvasWidth > 2000 {
		baseRad, growth = 8.0, 12.0
	}
	radius := baseRad + math.Log10(float64(max(totalCount, 0))+1.0)*growth
	return math.Min(radius, 120)
}

const markerAlpha = 0.6

// DrawClusters draws one translucent disc per cluster, colored by its most
// severe level. More severe clusters are drawn on top.
func (c *Canvas) DrawClusters(clusters []threat.Cluster, scheme threat.ColorScheme) {
	z := vector.NewRasterizer(c.Width, c.Height)
	levels := threat.Levels()
	for i := len(levels) - 1; i >= 0; i-- {
		level := levels[i]
		z.Reset(c.Width, c.Height)
		z.DrawOp = draw.Over
		n := 0
		for _, cl := range clusters {
			if cl.MaxLevel != level {
				continue
			}
			x, y := c.Projection.Project(cl.Lat, cl.Lng)
			c.addDisc(z, x, y, MarkerRadius(cl.TotalCount, c.Width))
			n++
		}
		if n == 0 {
			continue
		}
		col := scheme.Color(level)
		src := image.NewUniform(color.NRGBA{col.R, col.G, col.B, uint8(markerAlpha * 255)})
		z.Draw(c.img, c.img.Bounds(), src, image.Point{})
	}
}

// addDisc adds a polygonal circle to z, clamped to the canvas.
func (c *Canvas) addDisc(z *vector.Rasterizer, cx, cy, r float64) {
	const sides = 32
	clamp := func(x, y float64) (float32, float32) {
		x = math.Max(0, math.Min(float64(c.Width), x))
		y = math.Max(0, math.Min(float64(c.Height), y))
		return float32(x), float32(y)
	}
	z.MoveTo(clamp(cx+r, cy))
	for i := 1; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / sides
		z.LineTo(clamp(cx+r*math.Cos(a), cy+r*math.Sin(a)))
	}
	z.ClosePath()
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// SaveFrame writes the canvas to dir under the standard export file name and
// returns the path.
func (c *Canvas) SaveFrame(dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, threat.ExportFilename(threat.FormatPNG, now))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn().Err(err).Str("file", path).Msg("error closing capture file")
		}
	}()
	if err := c.EncodePNG(f); err != nil {
		return "", err
	}
	logging.Info().Str("file", path).Msg("captured frame")
	return path, nil
}
