package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"

	"github.com/sudorandom/threat-globe/pkg/borders"
	"github.com/sudorandom/threat-globe/pkg/config"
	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/sources"
	"github.com/sudorandom/threat-globe/pkg/threat"
	"github.com/sudorandom/threat-globe/pkg/utils"
)

type CLI struct {
	Config   string `short:"c" help:"YAML config file." env:"THREATGLOBE_CONFIG"`
	LogLevel string `help:"Override log.level (trace, debug, info, warn, error)."`
	Debug    bool   `help:"Shorthand for --log-level=debug."`

	Filter   FilterCmd   `cmd:"" help:"Filter points by level, location, text, time and count."`
	Cluster  ClusterCmd  `cmd:"" help:"Group nearby points into clusters."`
	Timeline TimelineCmd `cmd:"" help:"Print time bounds and a count histogram."`
	Playback PlaybackCmd `cmd:"" help:"Step a time window across the data set."`
	Export   ExportCmd   `cmd:"" help:"Write points as CSV or JSON, or render them to PNG."`
	Tooltip  TooltipCmd  `cmd:"" help:"Print the hover card HTML for one point."`
	Facets   FacetsCmd   `cmd:"" help:"List the countries, cities and levels present."`
	Borders  BordersCmd  `cmd:"" help:"Fetch country borders and print line segments."`
	Render   RenderCmd   `cmd:"" help:"Render clustered points over country borders to PNG."`
	Serve    ServeCmd    `cmd:"" help:"Serve the HTTP API."`
	Watch    WatchCmd    `cmd:"" help:"Follow a live feed, clustering each snapshot."`
}

// app carries the loaded configuration to every command.
type app struct {
	cfg *config.Config
	out io.Writer

	loaderOnce sync.Once
	loader     *borders.Loader
	loaderErr  error
	cache      *utils.DiskCache
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("threat-globe"),
		kong.Description("Filter, cluster, time-window and export geolocated threat events."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	kctx.FatalIfErrorf(err)
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.Debug {
		cfg.Log.Level = "debug"
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	a := &app{cfg: cfg, out: os.Stdout}
	err = kctx.Run(a)
	a.close()
	if err != nil {
		logging.Error().Err(err).Str("command", kctx.Command()).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

// PointsInput selects where points come from.
type PointsInput struct {
	Input string `short:"i" help:"Points as JSON or CSV: a file, '-' for stdin, or an http(s) URL. Defaults to the built-in demo set."`
}

func (f PointsInput) points(ctx context.Context) ([]threat.Point, error) {
	if f.Input == "" {
		return sources.DemoThreats(), nil
	}
	data, err := utils.ReadSource(ctx, utils.DefaultClient, f.Input)
	if err != nil {
		return nil, err
	}
	return sources.DecodeFile(f.Input, data)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) scheme() threat.ColorScheme {
	s, ok := threat.SchemeByName(a.cfg.Render.Scheme)
	if !ok {
		return threat.DefaultColors
	}
	return s
}

// bordersLoader returns the process's border loader, backed by the persistent
// cache when borders.cache_dir is set.
func (a *app) bordersLoader() (*borders.Loader, error) {
	a.loaderOnce.Do(func() {
		client := &http.Client{Timeout: a.cfg.Borders.Timeout}
		if a.cfg.Borders.CacheDir == "" {
			a.loader = borders.NewLoader(client, nil)
			return
		}
		cache, err := utils.OpenDiskCache(a.cfg.Borders.CacheDir)
		if err != nil {
			a.loaderErr = err
			return
		}
		a.cache = cache
		a.loader = borders.NewLoader(client, cache).WithStoreTTL(a.cfg.Borders.CacheTTL)
	})
	return a.loader, a.loaderErr
}

func (a *app) close() {
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close border cache")
	}
}
