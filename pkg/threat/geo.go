package threat

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// lat/lng pairs given in decimal degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceKm is HaversineKm between two points.
func DistanceKm(a, b Point) float64 {
	return HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Mercator projects lat/lng onto a width x height Mercator plane. The poles map to
// infinity, callers clamp latitude when that matters.
func Mercator(lat, lng, width, height float64) (x, y float64) {
	x = (lng + 180) / 360 * width
	latRad := lat * math.Pi / 180
	mercN := math.Log(math.Tan(math.Pi/4 + latRad/2))
	y = height/2 - width*mercN/(2*math.Pi)
	return x, y
}
