// Package sources provides the data inputs of threat-globe: point decoding, the
// demo data set and live feeds.
package sources

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/sudorandom/threat-globe/pkg/threat"
)

var ErrInvalidPayload = errors.New("invalid point payload")

// Transform turns one feed payload into a full point snapshot.
type Transform func(data []byte) ([]threat.Point, error)

// DecodePoints accepts either a JSON array of points or an object with a
// "points" array.
func DecodePoints(data []byte) ([]threat.Point, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}

	var points []threat.Point
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	case '{':
		var envelope struct {
			Points *[]threat.Point `json:"points"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if envelope.Points == nil {
			return nil, fmt.Errorf("%w: missing \"points\"", ErrInvalidPayload)
		}
		points = *envelope.Points
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrInvalidPayload)
	}
	if points == nil {
		points = []threat.Point{}
	}
	return points, nil
}

// DecodeFile decodes data read from name, choosing CSV for .csv names and JSON
// otherwise.
func DecodeFile(name string, data []byte) ([]threat.Point, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return ParseCSV(bytes.NewReader(data))
	}
	return DecodePoints(data)
}
