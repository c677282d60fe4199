package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/sudorandom/threat-globe/pkg/metrics"
	"github.com/sudorandom/threat-globe/pkg/render"
	"github.com/sudorandom/threat-globe/pkg/threat"
)

type pointsRequest struct {
	Points []threat.Point `json:"points"`
}

type filterRequest struct {
	Points   []threat.Point        `json:"points"`
	Criteria threat.FilterCriteria `json:"criteria"`
}

type clusterRequest struct {
	Points      []threat.Point `json:"points"`
	ThresholdKm *float64       `json:"threshold_km,omitempty"`
}

type timelineRequest struct {
	Points  []threat.Point `json:"points"`
	Buckets *int           `json:"buckets,omitempty"`
}

type timelineResponse struct {
	Bounds    threat.Bounds `json:"bounds"`
	Histogram []int         `json:"histogram"`
	Peak      int           `json:"peak"`
}

type playbackRequest struct {
	Range  threat.TimeRange `json:"range"`
	Bounds threat.Bounds    `json:"bounds"`
	Speed  *float64         `json:"speed,omitempty"`
}

type playbackResponse struct {
	Range threat.TimeRange `json:"range"`
	Done  bool             `json:"done"`
}

type tooltipRequest struct {
	Point      threat.Point `json:"point"`
	TotalCount *int         `json:"total_count,omitempty"`
	Scheme     string       `json:"scheme,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	metrics.RecordEngine("filter", len(req.Points))
	writeJSON(w, http.StatusOK, threat.FilterPoints(req.Points, req.Criteria))
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	threshold := s.opts.ThresholdKm
	if req.ThresholdKm != nil {
		threshold = *req.ThresholdKm
	}
	metrics.RecordEngine("cluster", len(req.Points))
	writeJSON(w, http.StatusOK, threat.ClusterPoints(req.Points, threshold))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var req timelineRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	buckets := s.opts.Buckets
	if req.Buckets != nil {
		buckets = *req.Buckets
	}
	if err := threat.CheckBuckets(buckets); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.RecordEngine("histogram", len(req.Points))
	bounds := threat.TimeBounds(req.Points, s.now())
	hist := threat.Histogram(req.Points, bounds, buckets)
	writeJSON(w, http.StatusOK, timelineResponse{
		Bounds:    bounds,
		Histogram: hist,
		Peak:      threat.HistogramPeak(hist),
	})
}

func (s *Server) handlePlaybackStep(w http.ResponseWriter, r *http.Request) {
	var req playbackRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	speed := 1.0
	if req.Speed != nil {
		speed = *req.Speed
	}
	next, done := threat.StepPlayback(req.Range, req.Bounds, speed)
	writeJSON(w, http.StatusOK, playbackResponse{Range: next, Done: done})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(threat.FormatJSON)
	}
	format, err := threat.ParseExportFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req pointsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	metrics.RecordEngine("export", len(req.Points))

	var body []byte
	switch format {
	case threat.FormatPNG:
		body, err = s.renderPNG(r, req.Points)
	default:
		body, err = threat.Export(format, req.Points)
	}
	if errors.Is(err, threat.ErrUnsupportedFormat) {
		writeError(w, http.StatusNotImplemented, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", format.MIMEType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", threat.ExportFilename(format, s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// renderPNG draws the clustered points over the cached borders.
func (s *Server) renderPNG(r *http.Request, points []threat.Point) ([]byte, error) {
	proj, err := s.projection()
	if err != nil {
		return nil, err
	}
	clusters := threat.ClusterPoints(points, s.opts.ThresholdKm)

	canvas := render.NewCanvas(s.opts.Width, s.opts.Height, proj)
	canvas.DrawBorders(s.borders.Load(r.Context(), s.opts.BordersURL), render.BorderColor)
	canvas.DrawClusters(clusters, s.opts.Scheme)
	if err := canvas.DrawLegend(clusters, s.opts.Scheme); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	var req tooltipRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	scheme := s.opts.Scheme
	if req.Scheme != "" {
		var ok bool
		if scheme, ok = threat.SchemeByName(req.Scheme); !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown color scheme %q", req.Scheme))
			return
		}
	}
	total := req.Point.Count
	if req.TotalCount != nil {
		total = *req.TotalCount
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(threat.TooltipHTML(req.Point, total, scheme)))
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, threat.Facets(req.Points))
}

func (s *Server) handleBorders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.borders.Load(r.Context(), s.opts.BordersURL))
}
