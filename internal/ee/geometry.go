package ee

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// metersPerDegree is the usual flat-earth approximation of one degree of
// latitude at the equator.
const metersPerDegree = 111_000.0

// RectangleGeometry converts a lon/lat bound into the GeoJSON polygon the
// service expects as a reduction geometry.
func RectangleGeometry(b orb.Bound) *geojson.Geometry {
	return geojson.NewGeometry(b.ToPolygon())
}

// BufferedPoint approximates a circle of the given radius (meters) around a
// lon/lat center as a 64-gon. Longitude offsets shrink with the cosine of the
// latitude so the shape stays near-circular away from the equator; the
// latitude feeding that cosine is capped at ±89 degrees, where the scaling
// degenerates.
func BufferedPoint(center orb.Point, radiusMeters float64) *geojson.Geometry {
	const segments = 64

	lat := math.Max(-89, math.Min(89, center[1]))
	dLat := radiusMeters / metersPerDegree
	dLon := radiusMeters / (metersPerDegree * math.Cos(lat*math.Pi/180))

	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		ring = append(ring, orb.Point{
			center[0] + dLon*math.Cos(a),
			center[1] + dLat*math.Sin(a),
		})
	}
	ring = append(ring, ring[0])
	return geojson.NewGeometry(orb.Polygon{ring})
}
