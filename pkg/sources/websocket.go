package sources

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/metrics"
	"github.com/sudorandom/threat-globe/pkg/threat"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 60 * time.Second
)

// WebSocketSource reads snapshots from a WebSocket, one per message, and
// reconnects with exponential backoff whenever the connection drops.
type WebSocketSource struct {
	URL       string
	Header    http.Header
	Transform Transform
	Dialer    *websocket.Dialer

	// MinBackoff and MaxBackoff default to 1s and 60s.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func (s *WebSocketSource) Run(ctx context.Context, onUpdate func([]threat.Point)) error {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	transform := s.Transform
	if transform == nil {
		transform = DecodePoints
	}
	lo, hi := s.MinBackoff, s.MaxBackoff
	if lo <= 0 {
		lo = minBackoff
	}
	if hi <= 0 {
		hi = maxBackoff
	}
	log := logging.With().Str("source", FeedWebSocket).Str("url", s.URL).Logger()

	backoff := lo
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info().Msg("connecting")
		c, _, err := dialer.DialContext(ctx, s.URL, s.Header)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial error")
			metrics.FeedReconnects.WithLabelValues(FeedWebSocket).Inc()
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, hi)
			continue
		}
		backoff = lo

		// ReadMessage does not observe ctx; closing the connection unblocks it.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = c.Close()
			case <-done:
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Msg("read error, reconnecting")
					metrics.FeedMessages.WithLabelValues(FeedWebSocket, "error").Inc()
				}
				break
			}
			points, err := transform(message)
			if err != nil {
				log.Warn().Err(err).Msg("skipping malformed message")
				metrics.FeedMessages.WithLabelValues(FeedWebSocket, "invalid").Inc()
				continue
			}
			metrics.FeedMessages.WithLabelValues(FeedWebSocket, "ok").Inc()
			onUpdate(points)
		}
		close(done)
		_ = c.Close()

		if err := ctx.Err(); err != nil {
			return err
		}
		metrics.FeedReconnects.WithLabelValues(FeedWebSocket).Inc()
		if err := sleepCtx(ctx, backoff); err != nil {
			return err
		}
	}
}
