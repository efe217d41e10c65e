package trend

import (
	"context"
	"fmt"

	"github.com/earthtrend/earthtrend-research-cli/internal/ee"
	"github.com/paulmach/orb/geojson"
)

// Measurement is a tagged optional scalar. A reading of zero is a present
// value; absence of data is only ever expressed through Valid, never through
// a zero or negative sentinel.
type Measurement struct {
	Value float64
	Valid bool
}

func Present(v float64) Measurement {
	return Measurement{Value: v, Valid: true}
}

func Absent() Measurement {
	return Measurement{}
}

// ReduceParams carries the reduction knobs shared by every metric.
type ReduceParams struct {
	Band      string
	Scale     float64
	MaxPixels int64
}

// Metric is the mode-specific strategy plugged into the shared pipeline: how
// a year of imagery becomes a composite, and how the composite reduces to a
// single scalar over a geometry.
type Metric interface {
	Name() string
	Unit() string
	Composite(dataset, band, start, end string) *ee.Image
	Reduce(ctx context.Context, client *ee.Client, img *ee.Image, geom *geojson.Geometry, p ReduceParams) (Measurement, error)
	Vis() ee.VisParams
}

// ConcentrationMetric measures the mean value of one band over the region,
// e.g. the CH4 column volume mixing ratio in ppb.
type ConcentrationMetric struct {
	MetricName string
	MetricUnit string
	VisParams  ee.VisParams
}

func (m ConcentrationMetric) Name() string      { return m.MetricName }
func (m ConcentrationMetric) Unit() string      { return m.MetricUnit }
func (m ConcentrationMetric) Vis() ee.VisParams { return m.VisParams }

func (m ConcentrationMetric) Composite(dataset, band, start, end string) *ee.Image {
	return ee.NewImageCollection(dataset).FilterDate(start, end).Select(band).Mean()
}

func (m ConcentrationMetric) Reduce(ctx context.Context, client *ee.Client, img *ee.Image, geom *geojson.Geometry, p ReduceParams) (Measurement, error) {
	value, err := client.ReduceRegion(ctx, img, geom, ee.ReducerMean, p.Band, p.Scale, p.MaxPixels, true)
	if err != nil {
		return Absent(), err
	}
	if value == nil {
		return Absent(), nil
	}
	return Present(*value), nil
}

// CoverageMetric measures the fraction of the region covered by pixels above
// a threshold, as a percentage: the composite is masked at the threshold,
// weighted by per-pixel area, and the two area sums are divided.
type CoverageMetric struct {
	MetricName string
	Threshold  float64
	VisParams  ee.VisParams
}

func (m CoverageMetric) Name() string      { return m.MetricName }
func (m CoverageMetric) Unit() string      { return "%" }
func (m CoverageMetric) Vis() ee.VisParams { return m.VisParams }

func (m CoverageMetric) Composite(dataset, band, start, end string) *ee.Image {
	return ee.NewImageCollection(dataset).FilterDate(start, end).Select(band).Mean()
}

func (m CoverageMetric) Reduce(ctx context.Context, client *ee.Client, img *ee.Image, geom *geojson.Geometry, p ReduceParams) (Measurement, error) {
	masked := img.Gt(m.Threshold).Multiply(ee.PixelArea())
	covered, err := client.ReduceRegion(ctx, masked, geom, ee.ReducerSum, p.Band, p.Scale, p.MaxPixels, true)
	if err != nil {
		return Absent(), err
	}

	total, err := client.ReduceRegion(ctx, ee.PixelArea(), geom, ee.ReducerSum, "area", p.Scale, p.MaxPixels, true)
	if err != nil {
		return Absent(), err
	}
	// The ratio is undefined without a denominator.
	if total == nil || *total == 0 {
		return Absent(), fmt.Errorf("total pixel area is absent or zero, coverage ratio is undefined")
	}

	if covered == nil {
		return Absent(), nil
	}
	return Present(100 * *covered / *total), nil
}
