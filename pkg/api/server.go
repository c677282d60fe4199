// Package api exposes the threat engine over HTTP.
//
// Every engine operation is a POST taking a JSON body that carries the point
// collection, so the server holds no point state of its own. Border segments
// are the exception: they are loaded once through a borders.Loader and shared.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sudorandom/threat-globe/pkg/borders"
	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/render"
	"github.com/sudorandom/threat-globe/pkg/threat"
)

// DefaultMaxBodyBytes is the request body limit used when Options leave it unset.
const DefaultMaxBodyBytes = 32 << 20

// Options are the server defaults applied when a request leaves a value out.
type Options struct {
	ThresholdKm float64
	Buckets     int
	BordersURL  string
	CORSOrigins []string
	Scheme      threat.ColorScheme

	// Image export settings.
	Width      int
	Height     int
	Projection string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxBodyBytes bounds request bodies. Larger bodies get a 413.
	MaxBodyBytes int64
}

func DefaultOptions() Options {
	return Options{
		ThresholdKm:  500,
		Buckets:      threat.DefaultHistogramBuckets,
		CORSOrigins:  []string{"*"},
		Scheme:       threat.DefaultColors,
		Width:        1920,
		Height:       1080,
		Projection:   "mercator",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

type Server struct {
	opts    Options
	borders *borders.Loader
	now     func() time.Time
}

// New returns a server backed by loader. A nil loader uses the process-wide one.
func New(opts Options, loader *borders.Loader) *Server {
	if loader == nil {
		loader = borders.Default()
	}
	if opts.Buckets <= 0 {
		opts.Buckets = threat.DefaultHistogramBuckets
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1920, 1080
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Scheme == (threat.ColorScheme{}) {
		opts.Scheme = threat.DefaultColors
	}
	return &Server{opts: opts, borders: loader, now: time.Now}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(requestMetrics)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/filter", s.handleFilter)
		r.Post("/cluster", s.handleCluster)
		r.Post("/timeline", s.handleTimeline)
		r.Post("/playback/step", s.handlePlaybackStep)
		r.Post("/export", s.handleExport)
		r.Post("/tooltip", s.handleTooltip)
		r.Post("/facets", s.handleFacets)
		r.Get("/borders", s.handleBorders)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("API server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	logging.Info().Msg("API server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) projection() (render.Projection, error) {
	return render.NewProjection(s.opts.Projection, s.opts.Width, s.opts.Height)
}
