// Package geo provides the geometry used to test group membership and to
// rank groups by size.
package geo

import "math"

const (
	earthRadiusKm = 6371.0
	// mercatorRadiusM is the WGS 84 sphere radius used by Web Mercator.
	mercatorRadiusM = 6378137.0
)

// Ring is a closed polygon ring of [lon, lat] pairs.
// The first point need not be repeated at the end.
type Ring [][2]float64

// HaversineKm returns the great-circle distance in kilometers between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// PointInPolygon reports whether (lat, lon) lies inside ring using the
// even-odd rule on planar lon/lat. Edges are half-open, so a point on a
// shared edge belongs to exactly one of two adjacent rings.
func PointInPolygon(lat, lon float64, ring Ring) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		if (yi > lat) != (yj > lat) {
			xCross := xi + (lat-yi)*(xj-xi)/(yj-yi)
			if lon < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// PolygonAreaKm2 approximates the area of ring in square kilometers by
// projecting it to Web Mercator. Only used to rank groups.
func PolygonAreaKm2(ring Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		x1, y1 := toMercator(ring[i][0], ring[i][1])
		x2, y2 := toMercator(ring[(i+1)%n][0], ring[(i+1)%n][1])
		sum += x1*y2 - x2*y1
	}
	return math.Abs(sum) / 2 / 1e6
}

// CircleAreaKm2 returns the area of a circle of the given radius.
func CircleAreaKm2(radiusKm float64) float64 {
	return math.Pi * radiusKm * radiusKm
}

func toMercator(lon, lat float64) (float64, float64) {
	x := mercatorRadiusM * toRad(lon)
	y := mercatorRadiusM * math.Log(math.Tan(math.Pi/4+toRad(lat)/2))
	return x, y
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
