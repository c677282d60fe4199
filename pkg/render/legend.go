package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/sudorandom/threat-globe/pkg/threat"
)

var legendFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// DrawLegend draws a swatch, level name and incident total for every level in
// the lower left corner.
func (c *Canvas) DrawLegend(clusters []threat.Cluster, scheme threat.ColorScheme) error {
	fontSize, spacing, swatch, margin := 12.0, 18, 10, 16
	if c.Width > 2000 {
		fontSize, spacing, swatch, margin = 24.0, 36, 20, 32
	}

	f, err := legendFont()
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: fontSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return err
	}
	defer func() { _ = face.Close() }()

	totals := make(map[threat.Level]int)
	for _, cl := range clusters {
		totals[cl.MaxLevel] += cl.TotalCount
	}

	levels := threat.Levels()
	top := c.Height - margin - len(levels)*spacing
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(color.RGBA{232, 234, 237, 255}), Face: face}
	for i, level := range levels {
		y := top + i*spacing
		r := image.Rect(margin, y, margin+swatch, y+swatch)
		draw.Draw(c.img, r, image.NewUniform(scheme.Color(level)), image.Point{}, draw.Src)

		d.Dot = fixed.P(margin+swatch+8, y+swatch)
		d.DrawString(strings.ToUpper(level.String()) + "  " + threat.FormatCount(totals[level]))
	}
	return nil
}
