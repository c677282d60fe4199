package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sudorandom/threat-globe/pkg/threat"
)

// ParseCSV reads points in the CSV export layout. The header row is required
// and columns are matched by name, so extra or reordered columns are fine.
// Lines starting with # are skipped.
func ParseCSV(r io.Reader) ([]threat.Point, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []threat.Point{}, nil
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "lat", "lng"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidPayload, required)
		}
	}

	points := make([]threat.Point, 0)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(record) {
				return record[i]
			}
			return ""
		}

		p := threat.Point{ID: field("id"), City: field("city"), Country: field("country")}
		if p.Lat, err = strconv.ParseFloat(field("lat"), 64); err != nil {
			return nil, fmt.Errorf("line %d: lat: %w", line, err)
		}
		if p.Lng, err = strconv.ParseFloat(field("lng"), 64); err != nil {
			return nil, fmt.Errorf("line %d: lng: %w", line, err)
		}
		if v := field("level"); v != "" {
			if p.Level, err = threat.ParseLevel(v); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if v := field("count"); v != "" {
			if p.Count, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("line %d: count: %w", line, err)
			}
		}
		if v := field("timestamp"); v != "" {
			ts, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("line %d: timestamp: %w", line, err)
			}
			p.Timestamp = threat.TimePtr(ts)
		}
		points = append(points, p)
	}
	return points, nil
}
