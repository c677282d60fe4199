package borders

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/metrics"
	"github.com/sudorandom/threat-globe/pkg/sources"
	"github.com/sudorandom/threat-globe/pkg/utils"
)

// Store persists raw border documents between runs. *utils.DiskCache satisfies it.
type Store interface {
	Get(key string) ([]byte, error)
	PutTTL(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// Loader fetches and flattens border geometry once. Concurrent callers share a
// single in-flight load, a successful result is kept forever, and a failed load
// leaves the loader empty so the next call tries again.
//
// The cached result is not keyed by URL: once resolved, every Load returns it.
type Loader struct {
	client *http.Client
	store  Store
	ttl    time.Duration

	group    singleflight.Group
	mu       sync.RWMutex
	segments []Segment
	loaded   bool
}

func NewLoader(client *http.Client, store Store) *Loader {
	if client == nil {
		client = utils.DefaultClient
	}
	return &Loader{client: client, store: store}
}

// WithStoreTTL makes documents written to the store expire after ttl. Zero
// keeps them until they are forgotten.
func (l *Loader) WithStoreTTL(ttl time.Duration) *Loader {
	l.ttl = ttl
	return l
}

var defaultLoader = NewLoader(nil, nil)

// Default returns the process-wide loader used by LoadCountryBorders.
func Default() *Loader {
	return defaultLoader
}

// LoadCountryBorders loads border segments through the process-wide loader.
func LoadCountryBorders(ctx context.Context, url string) []Segment {
	return defaultLoader.Load(ctx, url)
}

// Cached returns the resolved segments, if any.
func (l *Loader) Cached() ([]Segment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.segments, l.loaded
}

// Forget drops the cached result and the stored document for url, so the
// next Load downloads it again.
func (l *Loader) Forget(url string) error {
	l.mu.Lock()
	l.segments, l.loaded = nil, false
	l.mu.Unlock()
	metrics.BorderSegments.Set(0)

	if l.store == nil {
		return nil
	}
	return l.store.Delete(storeKey(urlOrDefault(url)))
}

func urlOrDefault(url string) string {
	if url == "" {
		return sources.CountryBordersURL
	}
	return url
}

func storeKey(url string) string {
	return "borders/" + url
}

// Load returns the border segments of url, or an empty slice if they could not
// be loaded. Failures are logged, never returned. The returned slice is shared
// between callers and must not be modified. If ctx ends while waiting, Load
// returns an empty slice and the shared load carries on for the other callers.
func (l *Loader) Load(ctx context.Context, url string) []Segment {
	if segs, ok := l.Cached(); ok {
		metrics.BorderCacheHits.Inc()
		return segs
	}
	url = urlOrDefault(url)

	ch := l.group.DoChan("borders", func() (interface{}, error) {
		if segs, ok := l.Cached(); ok {
			return segs, nil
		}
		segs, err := l.load(context.WithoutCancel(ctx), url)
		if err != nil {
			metrics.BorderFetches.WithLabelValues("error").Inc()
			logging.Error().Err(err).Str("url", url).Msg("border loading failed")
			return []Segment{}, nil
		}
		l.mu.Lock()
		l.segments, l.loaded = segs, true
		l.mu.Unlock()
		metrics.BorderSegments.Set(float64(len(segs)))
		return segs, nil
	})

	select {
	case res := <-ch:
		return res.Val.([]Segment)
	case <-ctx.Done():
		return []Segment{}
	}
}

func (l *Loader) load(ctx context.Context, url string) ([]Segment, error) {
	key := storeKey(url)
	if l.store != nil {
		data, err := l.store.Get(key)
		if err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("border store read failed")
		}
		if data != nil {
			segs, err := ParseSegments(data)
			if err == nil {
				metrics.BorderFetches.WithLabelValues("store").Inc()
				logging.Debug().Str("url", url).Int("segments", len(segs)).Msg("loaded borders from store")
				return segs, nil
			}
			logging.Warn().Err(err).Str("key", key).Msg("discarding stored borders")
		}
	}

	logging.Info().Str("url", url).Msg("downloading country borders")
	data, err := utils.Fetch(ctx, l.client, url)
	if err != nil {
		return nil, err
	}
	segs, err := ParseSegments(data)
	if err != nil {
		return nil, err
	}
	metrics.BorderFetches.WithLabelValues("network").Inc()

	if l.store != nil {
		if err := l.store.PutTTL(key, data, l.ttl); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("border store write failed")
		}
	}
	return segs, nil
}

// Save downloads the document at url to path and checks that it parses,
// returning the number of segments it holds. A document that does not parse
// is removed again. Save does not touch the cached result.
func (l *Loader) Save(ctx context.Context, url, path string) (int, error) {
	url = urlOrDefault(url)
	if _, err := utils.DownloadFile(ctx, l.client, url, path); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	segs, err := ParseSegments(data)
	if err != nil {
		if rerr := os.Remove(path); rerr != nil {
			logging.Warn().Err(rerr).Str("file", path).Msg("failed to remove invalid border document")
		}
		return 0, err
	}
	return len(segs), nil
}
