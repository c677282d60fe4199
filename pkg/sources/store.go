package sources

import (
	json "github.com/goccy/go-json"

	"github.com/sudorandom/threat-globe/pkg/logging"
	"github.com/sudorandom/threat-globe/pkg/threat"
	"github.com/sudorandom/threat-globe/pkg/utils"
)

const pointPrefix = "point/"

// History keeps the latest version of every point seen on a feed, keyed by ID.
type History struct {
	cache *utils.DiskCache
}

func NewHistory(cache *utils.DiskCache) *History {
	return &History{cache: cache}
}

// Save upserts points by ID. Points without an ID are skipped.
func (h *History) Save(points []threat.Point) error {
	entries := make(map[string][]byte, len(points))
	for _, p := range points {
		if p.ID == "" {
			continue
		}
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		entries[pointPrefix+p.ID] = b
	}
	if len(entries) == 0 {
		return nil
	}
	return h.cache.BatchPut(entries)
}

// Load returns every stored point ordered by ID. Undecodable entries are
// logged and skipped.
func (h *History) Load() ([]threat.Point, error) {
	points := make([]threat.Point, 0)
	err := h.cache.ForEach(pointPrefix, func(key string, value []byte) error {
		var p threat.Point
		if err := json.Unmarshal(value, &p); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("skipping stored point")
			return nil
		}
		points = append(points, p)
		return nil
	})
	return points, err
}
