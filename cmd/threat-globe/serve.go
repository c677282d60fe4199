package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sudorandom/threat-globe/pkg/api"
	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/metrics"
	"github.com/sudorandom/threat-globe/pkg/render"
	"github.com/sudorandom/threat-globe/pkg/sources"
	"github.com/sudorandom/threat-globe/pkg/threat"
	"github.com/sudorandom/threat-globe/pkg/utils"
)

// renderCanvas draws points clustered at threshold (negative means the
// configured one) over the country borders.
func (a *app) renderCanvas(ctx context.Context, points []threat.Point, threshold float64) (*render.Canvas, error) {
	rc := a.cfg.Render
	proj, err := render.NewProjection(rc.Projection, rc.Width, rc.Height)
	if err != nil {
		return nil, err
	}
	loader, err := a.bordersLoader()
	if err != nil {
		return nil, err
	}

	clusters := threat.ClusterPoints(points, a.threshold(threshold))
	canvas := render.NewCanvas(rc.Width, rc.Height, proj)
	canvas.DrawBorders(loader.Load(ctx, a.cfg.Borders.URL), render.BorderColor)
	canvas.DrawClusters(clusters, a.scheme())
	if err := canvas.DrawLegend(clusters, a.scheme()); err != nil {
		return nil, err
	}
	return canvas, nil
}

func encodePNG(c *render.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type BordersCmd struct {
	URL     string `help:"GeoJSON FeatureCollection URL. Defaults to borders.url."`
	JSON    bool   `help:"Print the segments instead of a summary."`
	Refresh bool   `help:"Drop the cached document and download it again."`
	Save    string `help:"Download the document to this file instead of loading it."`
}

func (c *BordersCmd) Run(ctx context.Context, a *app) error {
	url := c.URL
	if url == "" {
		url = a.cfg.Borders.URL
	}
	loader, err := a.bordersLoader()
	if err != nil {
		return err
	}

	if c.Save != "" {
		n, err := loader.Save(ctx, url, c.Save)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.out, "saved %d segments from %s to %s\n", n, url, c.Save)
		return err
	}
	if c.Refresh {
		if err := loader.Forget(url); err != nil {
			return fmt.Errorf("failed to drop cached borders: %w", err)
		}
	}

	segments := loader.Load(ctx, url)
	if c.JSON {
		return a.printJSON(segments)
	}
	crossing := 0
	for _, s := range segments {
		if s.CrossesAntimeridian() {
			crossing++
		}
	}
	_, err = fmt.Fprintf(a.out, "%d segments (%d cross the antimeridian) from %s\n", len(segments), crossing, url)
	return err
}

type RenderCmd struct {
	PointsInput
	Threshold  float64 `short:"t" help:"Merge distance in km. Negative uses cluster.threshold_km." default:"-1"`
	Width      int     `help:"Image width. Zero uses render.width."`
	Height     int     `help:"Image height. Zero uses render.height."`
	Projection string  `help:"mercator, equal-area or mollweide. Defaults to render.projection."`
	Scheme     string  `help:"default, dark or glow. Defaults to render.scheme."`
	Output     string  `short:"o" help:"Directory for the frame. Defaults to render.output_dir."`
}

func (c *RenderCmd) Run(ctx context.Context, a *app) error {
	if c.Width > 0 {
		a.cfg.Render.Width = c.Width
	}
	if c.Height > 0 {
		a.cfg.Render.Height = c.Height
	}
	if c.Projection != "" {
		a.cfg.Render.Projection = c.Projection
	}
	if c.Scheme != "" {
		if _, ok := threat.SchemeByName(c.Scheme); !ok {
			return fmt.Errorf("unknown color scheme %q", c.Scheme)
		}
		a.cfg.Render.Scheme = c.Scheme
	}
	dir := c.Output
	if dir == "" {
		dir = a.cfg.Render.OutputDir
	}

	points, err := c.points(ctx)
	if err != nil {
		return err
	}
	canvas, err := a.renderCanvas(ctx, points, c.Threshold)
	if err != nil {
		return err
	}
	path, err := canvas.SaveFrame(dir, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, path)
	return err
}

type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to server.addr."`
}

func (c *ServeCmd) Run(ctx context.Context, a *app) error {
	addr := c.Addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	loader, err := a.bordersLoader()
	if err != nil {
		return err
	}

	opts := api.DefaultOptions()
	opts.ThresholdKm = a.cfg.Cluster.ThresholdKm
	opts.Buckets = a.cfg.Timeline.Buckets
	opts.BordersURL = a.cfg.Borders.URL
	opts.CORSOrigins = a.cfg.Server.CORSOrigins
	opts.Scheme = a.scheme()
	opts.Width, opts.Height = a.cfg.Render.Width, a.cfg.Render.Height
	opts.Projection = a.cfg.Render.Projection
	opts.ReadTimeout = a.cfg.Server.ReadTimeout
	opts.WriteTimeout = a.cfg.Server.WriteTimeout
	opts.MaxBodyBytes = a.cfg.Server.MaxBodyBytes

	// Warm the border cache so the first request does not pay for the fetch.
	go loader.Load(ctx, opts.BordersURL)

	return api.New(opts, loader).ListenAndServe(ctx, addr)
}

type WatchCmd struct {
	PointsInput
	Type     string        `help:"Feed type: static, websocket or polling. Defaults to feed.type."`
	URL      string        `help:"Feed URL. Defaults to feed.url."`
	Interval time.Duration `help:"Polling interval. Defaults to feed.interval."`
	Throttle time.Duration `help:"Process at most one snapshot per window." default:"1s"`
	History  string        `help:"Directory persisting the latest snapshot across restarts."`
	Frames   bool          `help:"Write a PNG frame to render.output_dir for each processed snapshot."`
}

func (c *WatchCmd) feedConfig(ctx context.Context, a *app) (sources.FeedConfig, error) {
	fc := a.cfg.Feed
	if c.Type != "" {
		fc.Type = c.Type
	}
	if c.URL != "" {
		fc.URL = c.URL
	}
	if c.Interval > 0 {
		fc.Interval = c.Interval
	}
	if fc.Type == "" || fc.Type == sources.FeedStatic {
		points, err := c.points(ctx)
		if err != nil {
			return fc, err
		}
		fc.Points = points
	}
	return fc, nil
}

// Run follows the feed until interrupted. Snapshots are clustered and logged at
// most once per throttle window. With --history, points are upserted by ID
// after a quiet period and again on exit.
func (c *WatchCmd) Run(ctx context.Context, a *app) error {
	fc, err := c.feedConfig(ctx, a)
	if err != nil {
		return err
	}
	src, err := sources.NewSource(fc)
	if err != nil {
		return err
	}

	var history *sources.History
	if c.History != "" {
		cache, err := utils.OpenDiskCache(c.History)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logging.Warn().Err(err).Msg("failed to close history")
			}
		}()
		history = sources.NewHistory(cache)
		if prev, err := history.Load(); err != nil {
			logging.Warn().Err(err).Msg("failed to restore history")
		} else if len(prev) > 0 {
			logging.Info().Int("points", len(prev)).Msg("restored previous snapshot")
			c.process(ctx, a, prev)
		}
	}

	var latest []threat.Point
	save := utils.NewDebounce(2*time.Second, func(points []threat.Point) {
		if history == nil {
			return
		}
		if err := history.Save(points); err != nil {
			logging.Warn().Err(err).Msg("failed to persist snapshot")
		}
	})
	defer save.Stop()

	throttle := utils.NewThrottle(c.Throttle, func(points []threat.Point) {
		c.process(ctx, a, points)
	})
	defer throttle.Stop()

	err = src.Run(ctx, func(points []threat.Point) {
		metrics.FeedPoints.Set(float64(len(points)))
		latest = points
		throttle.Call(points)
		save.Call(points)
	})
	if history != nil && latest != nil {
		if err := history.Save(latest); err != nil {
			logging.Warn().Err(err).Msg("failed to persist snapshot")
		}
	}
	if err == nil && fc.Type != sources.FeedWebSocket && fc.Type != sources.FeedPolling {
		// A static feed delivers once; keep serving its snapshot until interrupted.
		<-ctx.Done()
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *WatchCmd) process(ctx context.Context, a *app, points []threat.Point) {
	clusters := threat.ClusterPoints(points, a.cfg.Cluster.ThresholdKm)
	byLevel := make(map[threat.Level]int)
	for _, cl := range clusters {
		byLevel[cl.MaxLevel]++
	}
	ev := logging.Info().Int("points", len(points)).Int("clusters", len(clusters))
	for _, l := range threat.Levels() {
		ev = ev.Int(l.String(), byLevel[l])
	}
	ev.Msg("snapshot")

	if !c.Frames {
		return
	}
	canvas, err := a.renderCanvas(ctx, points, -1)
	if err != nil {
		logging.Warn().Err(err).Msg("failed to render frame")
		return
	}
	if _, err := canvas.SaveFrame(a.cfg.Render.OutputDir, time.Now()); err != nil {
		logging.Warn().Err(err).Msg("failed to save frame")
	}
}
