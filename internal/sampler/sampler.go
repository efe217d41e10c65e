package sampler

import (
	"math/rand"

	"github.com/paulmach/orb"
)

// Region is one synthetic sampling box used in global mode to approximate a
// full-globe reduction by sparse sampling.
type Region struct {
	Bound  orb.Bound
	Center orb.Point
}

// Generate returns exactly n square sample regions of edge length size (in
// degrees) scattered uniformly over the globe. The draw ranges are restricted
// so no box extends past the poles or the antimeridian; no post-hoc clamping
// or wraparound happens. Sizes above 90 are capped at 90, the largest edge
// that still fits between the poles. For a fixed (n, size, seed) the sequence
// is identical across runs: one latitude draw followed by one longitude draw
// per region, in region order.
func Generate(n int, size float64, seed int64) []Region {
	if size > 90 {
		size = 90
	}
	rng := rand.New(rand.NewSource(seed))
	maxLat := 90 - size
	maxLon := 180 - size

	regions := make([]Region, 0, n)
	for i := 0; i < n; i++ {
		lat := uniform(rng, -maxLat, maxLat)
		lon := uniform(rng, -maxLon, maxLon)
		bound := orb.Bound{
			Min: orb.Point{lon, lat},
			Max: orb.Point{lon + size, lat + size},
		}
		regions = append(regions, Region{Bound: bound, Center: bound.Center()})
	}
	return regions
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + (max-min)*rng.Float64()
}
