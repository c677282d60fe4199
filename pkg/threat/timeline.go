package threat

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultHistogramBuckets is the number of histogram buckets shown on a timeline.
	DefaultHistogramBuckets = 60
	// MaxHistogramBuckets bounds bucket counts accepted from callers.
	MaxHistogramBuckets = 10000
	// DefaultWindow is the fallback range when no point carries a timestamp.
	DefaultWindow = 24 * time.Hour
	// PlaybackSteps is the number of playback ticks spanning the whole range at speed 1.
	PlaybackSteps = 100
)

// ErrBucketCount reports a histogram bucket count outside [1, MaxHistogramBuckets].
var ErrBucketCount = fmt.Errorf("histogram buckets must be between 1 and %d", MaxHistogramBuckets)

// CheckBuckets returns ErrBucketCount unless 0 < n <= MaxHistogramBuckets.
func CheckBuckets(n int) error {
	if n <= 0 || n > MaxHistogramBuckets {
		return fmt.Errorf("%w, got %d", ErrBucketCount, n)
	}
	return nil
}

// Bounds are the earliest and latest timestamps of a point collection.
type Bounds struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// Span returns Max - Min.
func (b Bounds) Span() time.Duration {
	return b.Max.Sub(b.Min)
}

// TimeBounds returns the timestamp bounds of the timestamped points, or
// [now-24h, now] when no point has a timestamp.
func TimeBounds(points []Point, now time.Time) Bounds {
	var b Bounds
	found := false
	for _, p := range points {
		if p.Timestamp == nil {
			continue
		}
		t := *p.Timestamp
		if !found {
			b = Bounds{Min: t, Max: t}
			found = true
			continue
		}
		if t.Before(b.Min) {
			b.Min = t
		}
		if t.After(b.Max) {
			b.Max = t
		}
	}
	if !found {
		return Bounds{Min: now.Add(-DefaultWindow), Max: now}
	}
	return b
}

// Histogram sums point counts into equal-width time buckets across b. A point at
// b.Max falls in the last bucket. When the range is empty every timestamped
// point lands in the last bucket. Timestamps outside b are ignored.
func Histogram(points []Point, b Bounds, buckets int) []int {
	if buckets <= 0 {
		return []int{}
	}
	counts := make([]int, buckets)
	span := float64(b.Span())
	for _, p := range points {
		if p.Timestamp == nil {
			continue
		}
		t := *p.Timestamp
		if t.Before(b.Min) || t.After(b.Max) {
			continue
		}
		idx := buckets - 1
		if span > 0 {
			idx = int(math.Floor(float64(t.Sub(b.Min)) / span * float64(buckets)))
			if idx > buckets-1 {
				idx = buckets - 1
			}
		}
		counts[idx] += p.Count
	}
	return counts
}

// HistogramPeak returns the largest bucket, never less than 1, for scaling bars.
func HistogramPeak(h []int) int {
	peak := 1
	for _, v := range h {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// CursorPercent places end within b as a percentage. An empty range reports 100.
func CursorPercent(end time.Time, b Bounds) float64 {
	span := b.Span()
	if span == 0 {
		return 100
	}
	return float64(end.Sub(b.Min)) / float64(span) * 100
}

// SeekPercent moves the end of current to percent (clamped to [0, 100]) of b.
func SeekPercent(current TimeRange, b Bounds, percent float64) TimeRange {
	percent = math.Max(0, math.Min(100, percent))
	offset := time.Duration(percent / 100 * float64(b.Span()))
	return TimeRange{Start: current.Start, End: b.Min.Add(offset)}
}

// StepPlayback advances the end of current by one playback tick of
// (span/100)*speed. When the new end reaches b.Max it is clamped there and done
// is true. A step that cannot advance completes immediately.
func StepPlayback(current TimeRange, b Bounds, speed float64) (next TimeRange, done bool) {
	step := time.Duration(float64(b.Span()) / PlaybackSteps * speed)
	if step <= 0 {
		return TimeRange{Start: current.Start, End: b.Max}, true
	}
	end := current.End.Add(step)
	if !end.Before(b.Max) {
		return TimeRange{Start: current.Start, End: b.Max}, true
	}
	return TimeRange{Start: current.Start, End: end}, false
}

// TickInterval is the wall-clock period between playback ticks.
func TickInterval(stepInterval time.Duration, speed float64) time.Duration {
	if speed <= 0 {
		return stepInterval
	}
	return time.Duration(float64(stepInterval) / speed)
}
