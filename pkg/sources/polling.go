package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/metrics"
	"github.com/sudorandom/threat-globe/pkg/threat"
	"github.com/sudorandom/threat-globe/pkg/utils"
)

// PollingSource fetches a snapshot from URL immediately and then every Interval.
// Failed or malformed responses are logged and the previous snapshot stays in
// effect.
type PollingSource struct {
	URL       string
	Interval  time.Duration
	Header    http.Header
	Transform Transform
	Client    *http.Client
}

func (s *PollingSource) Run(ctx context.Context, onUpdate func([]threat.Point)) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.poll(ctx, onUpdate)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *PollingSource) poll(ctx context.Context, onUpdate func([]threat.Point)) {
	log := logging.With().Str("source", FeedPolling).Str("url", s.URL).Logger()
	data, err := s.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("poll failed")
			metrics.FeedMessages.WithLabelValues(FeedPolling, "error").Inc()
		}
		return
	}
	transform := s.Transform
	if transform == nil {
		transform = DecodePoints
	}
	points, err := transform(data)
	if err != nil {
		log.Warn().Err(err).Msg("skipping malformed response")
		metrics.FeedMessages.WithLabelValues(FeedPolling, "invalid").Inc()
		return
	}
	metrics.FeedMessages.WithLabelValues(FeedPolling, "ok").Inc()
	onUpdate(points)
}

func (s *PollingSource) fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = utils.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.Header {
		req.Header[k] = v
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("error closing response body")
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
