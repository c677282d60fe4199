package threat

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// CSVHeader is the fixed column order of CSV exports.
var CSVHeader = []string{"id", "lat", "lng", "city", "country", "level", "count", "timestamp"}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func csvRow(p Point) string {
	ts := ""
	if p.Timestamp != nil {
		ts = p.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	fields := []string{
		p.ID,
		formatFloat(p.Lat),
		formatFloat(p.Lng),
		p.City,
		p.Country,
		p.Level.String(),
		strconv.Itoa(p.Count),
		ts,
	}
	for i, f := range fields {
		fields[i] = csvQuote(f)
	}
	return strings.Join(fields, ",")
}

// WriteCSV writes points as CSV: an unquoted header followed by one row per
// point with every field double-quoted. Lines are separated by \n with no
// trailing newline.
func WriteCSV(w io.Writer, points []Point) error {
	if _, err := io.WriteString(w, strings.Join(CSVHeader, ",")); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := io.WriteString(w, "\n"+csvRow(p)); err != nil {
			return err
		}
	}
	return nil
}

// PointsToCSV returns the CSV export of points as a string.
func PointsToCSV(points []Point) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, points)
	return sb.String()
}

// PointsToJSON returns the JSON export of points, indented by two spaces.
func PointsToJSON(points []Point) ([]byte, error) {
	if points == nil {
		points = []Point{}
	}
	return json.MarshalIndent(points, "", "  ")
}

// ExportFormat is a file export target.
type ExportFormat string

const (
	FormatPNG  ExportFormat = "png"
	FormatSVG  ExportFormat = "svg"
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// DefaultExportFormats are the formats offered when none are configured.
var DefaultExportFormats = []ExportFormat{FormatPNG, FormatJSON, FormatCSV}

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(s)); f {
	case FormatPNG, FormatSVG, FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// MIMEType returns the content type of the exported file.
func (f ExportFormat) MIMEType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}

// ExportFilename names an export created at now.
func ExportFilename(f ExportFormat, now time.Time) string {
	if f == FormatPNG {
		return fmt.Sprintf("globe-export-%d.png", now.UnixMilli())
	}
	return fmt.Sprintf("threats-%d.%s", now.UnixMilli(), f)
}

// Export serializes points in a data format. Image formats are produced by the
// render package; svg is not supported.
func Export(f ExportFormat, points []Point) ([]byte, error) {
	switch f {
	case FormatJSON:
		return PointsToJSON(points)
	case FormatCSV:
		return []byte(PointsToCSV(points)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}
