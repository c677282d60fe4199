package threat

import "sort"

// DefaultClusterThresholdKm is the seed radius used when callers have no preference.
const DefaultClusterThresholdKm = 500.0

// ClusterPoints greedily groups points around seeds taken in descending severity
// order. A point joins a cluster when it is strictly closer than thresholdKm to
// the cluster's seed; distances to other members are never considered. Same
// severity points keep their input order, so the result is deterministic for a
// given input order.
func ClusterPoints(points []Point, thresholdKm float64) []Cluster {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level.Severity() > sorted[j].Level.Severity()
	})

	clusters := make([]Cluster, 0)
	used := make([]bool, len(sorted))
	for i, seed := range sorted {
		if used[i] {
			continue
		}
		used[i] = true
		c := Cluster{
			Lat:        seed.Lat,
			Lng:        seed.Lng,
			Points:     []Point{seed},
			TotalCount: seed.Count,
			MaxLevel:   seed.Level,
		}

		for j := i + 1; j < len(sorted); j++ {
			if used[j] {
				continue
			}
			other := sorted[j]
			if DistanceKm(seed, other) < thresholdKm {
				used[j] = true
				c.Points = append(c.Points, other)
				c.TotalCount += other.Count
				c.MaxLevel = MaxLevel(c.MaxLevel, other.Level)
			}
		}

		// Plain mean of coordinates, not a spherical centroid.
		if len(c.Points) > 1 {
			var sumLat, sumLng float64
			for _, p := range c.Points {
				sumLat += p.Lat
				sumLng += p.Lng
			}
			n := float64(len(c.Points))
			c.Lat, c.Lng = sumLat/n, sumLng/n
		}
		clusters = append(clusters, c)
	}
	return clusters
}
