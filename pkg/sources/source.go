package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sudorandom/threat-globe/pkg/threat"
)

var ErrUnknownFeed = errors.New("unknown feed type")

// Source delivers point snapshots to onUpdate until ctx ends. Each snapshot
// replaces the previous one.
type Source interface {
	Run(ctx context.Context, onUpdate func([]threat.Point)) error
}

const (
	FeedStatic    = "static"
	FeedWebSocket = "websocket"
	FeedPolling   = "polling"

	DefaultPollInterval = 30 * time.Second
)

// FeedConfig describes a live data source.
type FeedConfig struct {
	Type     string            `koanf:"type" validate:"omitempty,oneof=static websocket polling"`
	URL      string            `koanf:"url" validate:"omitempty,url"`
	Interval time.Duration     `koanf:"interval"`
	Headers  map[string]string `koanf:"headers"`

	// Points are delivered by the static feed. Empty means the demo data set.
	Points    []threat.Point `koanf:"-"`
	Transform Transform      `koanf:"-"`
	Client    *http.Client   `koanf:"-"`
}

func (c FeedConfig) header() http.Header {
	h := make(http.Header, len(c.Headers))
	for k, v := range c.Headers {
		h.Set(k, v)
	}
	return h
}

// NewSource builds the feed named by cfg.Type.
func NewSource(cfg FeedConfig) (Source, error) {
	transform := cfg.Transform
	if transform == nil {
		transform = DecodePoints
	}
	switch cfg.Type {
	case "", FeedStatic:
		points := cfg.Points
		if len(points) == 0 {
			points = DemoThreats()
		}
		return &StaticSource{Points: points}, nil
	case FeedWebSocket:
		if cfg.URL == "" {
			return nil, fmt.Errorf("websocket feed: url is required")
		}
		return &WebSocketSource{URL: cfg.URL, Header: cfg.header(), Transform: transform}, nil
	case FeedPolling:
		if cfg.URL == "" {
			return nil, fmt.Errorf("polling feed: url is required")
		}
		interval := cfg.Interval
		if interval <= 0 {
			interval = DefaultPollInterval
		}
		return &PollingSource{URL: cfg.URL, Interval: interval, Header: cfg.header(), Transform: transform, Client: cfg.Client}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFeed, cfg.Type)
}

// StaticSource delivers a fixed set of points once.
type StaticSource struct {
	Points []threat.Point
}

func (s *StaticSource) Run(ctx context.Context, onUpdate func([]threat.Point)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	points := make([]threat.Point, len(s.Points))
	copy(points, s.Points)
	onUpdate(points)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
