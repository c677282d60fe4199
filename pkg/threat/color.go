package threat

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var ErrInvalidColor = errors.New("invalid hex color")

// ColorScheme maps each level to a display color. A zero entry falls back to
// DefaultColors, so a partially filled scheme acts as an override.
type ColorScheme struct {
	Critical color.RGBA
	High     color.RGBA
	Medium   color.RGBA
	Low      color.RGBA
	Info     color.RGBA
}

var (
	DefaultColors = ColorScheme{
		Critical: color.RGBA{0xff, 0x00, 0x40, 0xff},
		High:     color.RGBA{0xff, 0x66, 0x00, 0xff},
		Medium:   color.RGBA{0xff, 0xcc, 0x00, 0xff},
		Low:      color.RGBA{0x00, 0xff, 0x88, 0xff},
		Info:     color.RGBA{0x3b, 0x82, 0xf6, 0xff},
	}
	DarkColors = ColorScheme{
		Critical: color.RGBA{0xdc, 0x26, 0x26, 0xff},
		High:     color.RGBA{0xea, 0x58, 0x0c, 0xff},
		Medium:   color.RGBA{0xd9, 0x77, 0x06, 0xff},
		Low:      color.RGBA{0x16, 0xa3, 0x4a, 0xff},
		Info:     color.RGBA{0x25, 0x63, 0xeb, 0xff},
	}
	GlowColors = ColorScheme{
		Critical: color.RGBA{0xff, 0x00, 0x3c, 0xff},
		High:     color.RGBA{0xff, 0x77, 0x00, 0xff},
		Medium:   color.RGBA{0xff, 0xd0, 0x00, 0xff},
		Low:      color.RGBA{0x00, 0xff, 0xa3, 0xff},
		Info:     color.RGBA{0x4d, 0x9f, 0xff, 0xff},
	}
)

// Color returns the color for a level, falling back to DefaultColors for unset
// entries and to the info color for unknown levels.
func (s ColorScheme) Color(l Level) color.RGBA {
	var c, def color.RGBA
	switch l {
	case LevelCritical:
		c, def = s.Critical, DefaultColors.Critical
	case LevelHigh:
		c, def = s.High, DefaultColors.High
	case LevelMedium:
		c, def = s.Medium, DefaultColors.Medium
	case LevelLow:
		c, def = s.Low, DefaultColors.Low
	default:
		c, def = s.Info, DefaultColors.Info
	}
	if c == (color.RGBA{}) {
		return def
	}
	return c
}

// SchemeByName resolves a named palette: default, dark or glow.
func SchemeByName(name string) (ColorScheme, bool) {
	switch strings.ToLower(name) {
	case "", "default":
		return DefaultColors, true
	case "dark":
		return DarkColors, true
	case "glow":
		return GlowColors, true
	}
	return ColorScheme{}, false
}

// HexColor formats c as #rrggbb.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHexColor parses #rrggbb (the leading # is optional). The result is opaque.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// RGBAString renders c with the given alpha as a CSS rgba() value.
func RGBAString(c color.RGBA, alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(alpha, 'f', -1, 64))
}
