package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sudorandom/threat-globe/pkg/threat"
)

type FilterCmd struct {
	PointsInput
	Level    []string  `short:"l" help:"Keep these levels (critical, high, medium, low, info)."`
	Country  []string  `help:"Keep these countries. Points without a country always pass."`
	City     []string  `help:"Keep these cities."`
	Search   string    `short:"s" help:"Case-insensitive substring of city, country, label or id."`
	Any      []string  `help:"Keep points whose text contains any of these terms."`
	Since    time.Time `help:"Start of the time window (RFC3339)."`
	Until    time.Time `help:"End of the time window (RFC3339)."`
	MinCount int       `help:"Minimum count. Negative disables." default:"-1"`
	Summary  bool      `help:"Print the number of active filters and matches instead of the points."`
}

func (c *FilterCmd) criteria() (threat.FilterCriteria, error) {
	var fc threat.FilterCriteria
	for _, s := range c.Level {
		l, err := threat.ParseLevel(s)
		if err != nil {
			return fc, err
		}
		fc = threat.ToggleLevel(fc, l)
	}
	fc.Countries = c.Country
	fc.Cities = c.City
	fc.Search = c.Search
	fc.AnyTerms = c.Any
	if !c.Since.IsZero() || !c.Until.IsZero() {
		r := threat.TimeRange{Start: c.Since, End: c.Until}
		if c.Until.IsZero() {
			r.End = time.Now()
		}
		fc.TimeRange = &r
	}
	if c.MinCount >= 0 {
		fc.MinCount = threat.IntPtr(c.MinCount)
	}
	return fc, nil
}

func (c *FilterCmd) Run(ctx context.Context, a *app) error {
	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	fc, err := c.criteria()
	if err != nil {
		return err
	}
	matched := threat.FilterPoints(points, fc)
	if c.Summary {
		_, err := fmt.Fprintf(a.out, "%d active filters, %d of %d points match\n", fc.ActiveCount(), len(matched), len(points))
		return err
	}
	return a.printJSON(matched)
}

type ClusterCmd struct {
	PointsInput
	Threshold float64 `short:"t" help:"Merge distance in km. Negative uses cluster.threshold_km." default:"-1"`
}

func (c *ClusterCmd) Run(ctx context.Context, a *app) error {
	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(threat.ClusterPoints(points, a.threshold(c.Threshold)))
}

func (a *app) threshold(flag float64) float64 {
	if flag < 0 {
		return a.cfg.Cluster.ThresholdKm
	}
	return flag
}

type TimelineCmd struct {
	PointsInput
	Buckets int `short:"b" help:"Histogram buckets. Zero uses timeline.buckets."`
}

func (c *TimelineCmd) Run(ctx context.Context, a *app) error {
	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	buckets := c.Buckets
	if buckets == 0 {
		buckets = a.cfg.Timeline.Buckets
	}
	if err := threat.CheckBuckets(buckets); err != nil {
		return err
	}
	bounds := threat.TimeBounds(points, time.Now())
	hist := threat.Histogram(points, bounds, buckets)
	return a.printJSON(struct {
		Bounds    threat.Bounds `json:"bounds"`
		Histogram []int         `json:"histogram"`
		Peak      int           `json:"peak"`
	}{bounds, hist, threat.HistogramPeak(hist)})
}

type PlaybackCmd struct {
	PointsInput
	Speed    float64 `help:"Playback speed multiplier. Zero uses timeline.playback_speed."`
	From     float64 `help:"Start the cursor at this percentage of the range." default:"0"`
	Realtime bool    `help:"Wait timeline.step_interval/speed between ticks."`
}

// Run advances the window end tick by tick, printing the cursor and how many
// points fall inside the window at each step.
func (c *PlaybackCmd) Run(ctx context.Context, a *app) error {
	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	speed := c.Speed
	if speed == 0 {
		speed = a.cfg.Timeline.PlaybackSpeed
	}
	bounds := threat.TimeBounds(points, time.Now())
	window := threat.SeekPercent(threat.TimeRange{Start: bounds.Min, End: bounds.Min}, bounds, c.From)

	var tick <-chan time.Time
	if c.Realtime {
		ticker := time.NewTicker(threat.TickInterval(a.cfg.Timeline.StepInterval, speed))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		visible := threat.FilterPoints(points, threat.FilterCriteria{TimeRange: &window})
		if _, err := fmt.Fprintf(a.out, "%6.2f%%  %s  %d points\n",
			threat.CursorPercent(window.End, bounds), window.End.UTC().Format(time.RFC3339), len(visible)); err != nil {
			return err
		}

		next, done := threat.StepPlayback(window, bounds, speed)
		if window.End.Equal(bounds.Max) && done {
			return nil
		}
		window = next

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
}

type ExportCmd struct {
	PointsInput
	Format string `short:"f" help:"Output format." enum:"csv,json,png,svg" default:"csv"`
	Output string `short:"o" help:"Output file. Defaults to the standard export name in the current directory; '-' writes to stdout."`
}

func (c *ExportCmd) Run(ctx context.Context, a *app) error {
	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	format, err := threat.ParseExportFormat(c.Format)
	if err != nil {
		return err
	}

	var body []byte
	if format == threat.FormatPNG {
		canvas, err := a.renderCanvas(ctx, points, -1)
		if err != nil {
			return err
		}
		body, err = encodePNG(canvas)
		if err != nil {
			return err
		}
	} else if body, err = threat.Export(format, points); err != nil {
		return err
	}

	if c.Output == "-" {
		_, err := a.out.Write(body)
		return err
	}
	path := c.Output
	if path == "" {
		path = threat.ExportFilename(format, time.Now())
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, err = fmt.Fprintf(a.out, "wrote %d points to %s (%s)\n", len(points), path, format.MIMEType())
	return err
}

type TooltipCmd struct {
	PointsInput
	ID    string `arg:"" help:"Point id."`
	Total int    `help:"Count shown in the card. Negative uses the point's own count." default:"-1"`
}

func (c *TooltipCmd) Run(ctx context.Context, a *app) error {
	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	for _, p := range points {
		if p.ID != c.ID {
			continue
		}
		total := c.Total
		if total < 0 {
			total = p.Count
		}
		_, err := fmt.Fprintln(a.out, threat.TooltipHTML(p, total, a.scheme()))
		return err
	}
	return fmt.Errorf("no point with id %q", c.ID)
}

type FacetsCmd struct {
	PointsInput
}

func (c *FacetsCmd) Run(ctx context.Context, a *app) error {
	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(threat.Facets(points))
}
