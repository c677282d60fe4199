package threat

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var (
	t0 = time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	b0 = Bounds{Min: t0, Max: t0.Add(100 * time.Minute)}
)

func TestTimeBounds(t *testing.T) {
	now := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	got := TimeBounds(samplePoints(), now)
	want := Bounds{Min: *ts("2026-02-07T06:20:00Z"), Max: *ts("2026-02-07T15:00:00Z")}
	if !got.Min.Equal(want.Min) || !got.Max.Equal(want.Max) {
		t.Errorf("TimeBounds(sample) = %v; want %v", got, want)
	}

	untimed := []Point{{ID: "a"}, {ID: "b"}}
	got = TimeBounds(untimed, now)
	if !got.Max.Equal(now) || got.Span() != DefaultWindow {
		t.Errorf("TimeBounds(untimed) = %v; want the 24h window ending at now", got)
	}
	if got := TimeBounds(nil, now); got.Span() != DefaultWindow {
		t.Errorf("TimeBounds(nil).Span() = %v; want %v", got.Span(), DefaultWindow)
	}
}

func TestHistogram(t *testing.T) {
	points := []Point{
		{ID: "start", Count: 1, Timestamp: TimePtr(t0)},
		{ID: "second bucket", Count: 2, Timestamp: TimePtr(t0.Add(10 * time.Minute))},
		{ID: "end", Count: 3, Timestamp: TimePtr(b0.Max)},
		{ID: "untimed", Count: 100},
		{ID: "before", Count: 100, Timestamp: TimePtr(t0.Add(-time.Minute))},
		{ID: "after", Count: 100, Timestamp: TimePtr(b0.Max.Add(time.Minute))},
	}
	got := Histogram(points, b0, 10)
	want := []int{1, 2, 0, 0, 0, 0, 0, 0, 0, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Histogram = %v; want %v", got, want)
	}

	if got := Histogram(points, b0, 0); len(got) != 0 {
		t.Errorf("Histogram with 0 buckets = %v; want empty", got)
	}

	flat := Bounds{Min: t0, Max: t0}
	got = Histogram([]Point{{Count: 4, Timestamp: TimePtr(t0)}, {Count: 5, Timestamp: TimePtr(t0)}}, flat, 3)
	if !reflect.DeepEqual(got, []int{0, 0, 9}) {
		t.Errorf("Histogram over an empty range = %v; want [0 0 9]", got)
	}
}

func TestHistogramConservesCounts(t *testing.T) {
	points := randomPoints(3, 200)
	b := TimeBounds(points, time.Now())
	total := 0
	for _, p := range points {
		if p.Timestamp != nil {
			total += p.Count
		}
	}
	sum := 0
	for _, v := range Histogram(points, b, DefaultHistogramBuckets) {
		sum += v
	}
	if sum != total {
		t.Errorf("histogram sum = %d; want %d", sum, total)
	}
}

func TestCheckBuckets(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{1, true},
		{DefaultHistogramBuckets, true},
		{MaxHistogramBuckets, true},
		{0, false},
		{-5, false},
		{MaxHistogramBuckets + 1, false},
		{1 << 62, false},
	}
	for _, tt := range tests {
		err := CheckBuckets(tt.n)
		if (err == nil) != tt.want {
			t.Errorf("CheckBuckets(%d) = %v; want ok=%v", tt.n, err, tt.want)
		}
		if err != nil && !errors.Is(err, ErrBucketCount) {
			t.Errorf("CheckBuckets(%d) = %v; want ErrBucketCount", tt.n, err)
		}
	}
}

func TestHistogramPeak(t *testing.T) {
	tests := []struct {
		in   []int
		want int
	}{
		{nil, 1},
		{[]int{0, 0}, 1},
		{[]int{0, 5, 3}, 5},
	}
	for _, tt := range tests {
		if got := HistogramPeak(tt.in); got != tt.want {
			t.Errorf("HistogramPeak(%v) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestCursorAndSeek(t *testing.T) {
	if got := CursorPercent(t0.Add(50*time.Minute), b0); got != 50 {
		t.Errorf("CursorPercent(halfway) = %v; want 50", got)
	}
	if got := CursorPercent(t0, Bounds{Min: t0, Max: t0}); got != 100 {
		t.Errorf("CursorPercent(empty range) = %v; want 100", got)
	}

	current := TimeRange{Start: t0, End: t0}
	tests := []struct {
		percent float64
		want    time.Time
	}{
		{25, t0.Add(25 * time.Minute)},
		{150, b0.Max},
		{-10, b0.Min},
	}
	for _, tt := range tests {
		got := SeekPercent(current, b0, tt.percent)
		if !got.End.Equal(tt.want) || !got.Start.Equal(current.Start) {
			t.Errorf("SeekPercent(%v) = %v; want end %v", tt.percent, got, tt.want)
		}
	}
}

func TestStepPlayback(t *testing.T) {
	current := TimeRange{Start: b0.Min, End: b0.Min}
	next, done := StepPlayback(current, b0, 1)
	if done || !next.End.Equal(t0.Add(time.Minute)) {
		t.Errorf("first step = %v, done=%v; want end at +1m", next.End, done)
	}

	next, done = StepPlayback(TimeRange{Start: t0, End: b0.Max.Add(-30 * time.Second)}, b0, 1)
	if !done || !next.End.Equal(b0.Max) {
		t.Errorf("final step = %v, done=%v; want clamped to max", next.End, done)
	}

	next, done = StepPlayback(current, b0, 0)
	if !done || !next.End.Equal(b0.Max) {
		t.Errorf("zero speed = %v, done=%v; want immediate completion", next.End, done)
	}

	steps := 0
	for r := current; ; {
		var finished bool
		r, finished = StepPlayback(r, b0, 1)
		steps++
		if finished {
			break
		}
		if steps > 1000 {
			t.Fatal("playback never finished")
		}
	}
	if steps != PlaybackSteps {
		t.Errorf("playback took %d steps; want %d", steps, PlaybackSteps)
	}
}

func TestTickInterval(t *testing.T) {
	if got := TickInterval(100*time.Millisecond, 2); got != 50*time.Millisecond {
		t.Errorf("TickInterval(100ms, 2) = %v; want 50ms", got)
	}
	if got := TickInterval(100*time.Millisecond, 0); got != 100*time.Millisecond {
		t.Errorf("TickInterval(100ms, 0) = %v; want 100ms", got)
	}
}
