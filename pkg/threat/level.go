// Package threat provides the renderer-independent threat point engine: filtering,
// clustering, time windowing and serialization of geolocated threat events.
package threat

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLevel = errors.New("unknown threat level")

// Level is a severity tier. Higher values are more severe.
type Level int

const (
	LevelInfo Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = [...]string{
	LevelInfo:     "info",
	LevelLow:      "low",
	LevelMedium:   "medium",
	LevelHigh:     "high",
	LevelCritical: "critical",
}

// Levels returns every level, most severe first.
func Levels() []Level {
	return []Level{LevelCritical, LevelHigh, LevelMedium, LevelLow, LevelInfo}
}

// Severity returns the ordinal used for ordering. Unknown values rank below info.
func (l Level) Severity() int {
	if !l.Valid() {
		return -1
	}
	return int(l)
}

func (l Level) Valid() bool {
	return l >= LevelInfo && l <= LevelCritical
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses the lower-case level name. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MaxLevel returns the more severe of a and b.
func MaxLevel(a, b Level) Level {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}
