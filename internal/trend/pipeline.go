package trend

import (
	"context"
	"fmt"

	"github.com/earthtrend/earthtrend-research-cli/internal/config"
	"github.com/earthtrend/earthtrend-research-cli/internal/ee"
	"github.com/earthtrend/earthtrend-research-cli/internal/sampler"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// SampleStat is the reduction result for one sample region, keyed by its
// centroid.
type SampleStat struct {
	Lat     float64
	Lon     float64
	Reading Measurement
}

// YearResult is everything one year of querying produced: the aggregate
// reading, the opaque composite handle (dereferenced only by the map
// renderer), and in global mode the per-sample-region readings.
type YearResult struct {
	Year    int
	Reading Measurement
	Image   *ee.Image
	Samples []SampleStat
}

// Pipeline drives the per-year queries for one run. Execution is strictly
// sequential: every reduction is a blocking round-trip, awaited before the
// next one is issued.
type Pipeline struct {
	client  *ee.Client
	cfg     *config.Config
	metric  Metric
	log     *logrus.Logger
	samples []sampler.Region
}

// New builds the pipeline and, in global mode, the run's sample regions.
// Regions are generated once and reused across all years.
func New(client *ee.Client, cfg *config.Config, metric Metric, log *logrus.Logger) *Pipeline {
	p := &Pipeline{client: client, cfg: cfg, metric: metric, log: log}
	if cfg.Global() {
		p.samples = sampler.Generate(cfg.SamplePoints, cfg.SampleRegionSize, cfg.SampleSeed)
		log.Infof("generated %d random sample regions of %.0f degrees", len(p.samples), cfg.SampleRegionSize)
	}
	return p
}

// SampleRegions exposes the run's sample regions (empty in point mode).
func (p *Pipeline) SampleRegions() []sampler.Region {
	return p.samples
}

// Run issues one composite request plus one-or-many reductions per configured
// year. A region/year with no data is carried as an absent reading and logged
// at warn level; a failing service call aborts the run.
func (p *Pipeline) Run(ctx context.Context) ([]YearResult, error) {
	params := ReduceParams{
		Band:      p.cfg.Band,
		Scale:     p.cfg.Resolution,
		MaxPixels: p.cfg.MaxPixels,
	}

	var roi *geojson.Geometry
	if !p.cfg.Global() {
		roi = ee.BufferedPoint(orb.Point{p.cfg.Center[0], p.cfg.Center[1]}, p.cfg.Radius)
	}

	bar := progressbar.Default(int64(len(p.cfg.Years)), fmt.Sprintf("Querying yearly %s composites", p.metric.Name()))
	results := make([]YearResult, 0, len(p.cfg.Years))
	for _, year := range p.cfg.Years {
		start := fmt.Sprintf("%d-%s", year, p.cfg.StartDate)
		end := fmt.Sprintf("%d-%s", year, p.cfg.EndDate)

		result := YearResult{
			Year:  year,
			Image: p.metric.Composite(p.cfg.DatasetName, p.cfg.Band, start, end),
		}

		if p.cfg.Global() {
			for _, region := range p.samples {
				m, err := p.metric.Reduce(ctx, p.client, result.Image, ee.RectangleGeometry(region.Bound), params)
				if err != nil {
					return nil, fmt.Errorf("year %d sample [%.1f, %.1f]: %w", year, region.Center[0], region.Center[1], err)
				}
				result.Samples = append(result.Samples, SampleStat{
					Lat:     region.Center[1],
					Lon:     region.Center[0],
					Reading: m,
				})
				if m.Valid {
					p.log.Infof("%d sample [%.1f, %.1f] %s: %.1f %s", year, region.Center[0], region.Center[1], p.metric.Name(), m.Value, p.metric.Unit())
				} else {
					p.log.Warnf("%d sample [%.1f, %.1f]: no data returned", year, region.Center[0], region.Center[1])
				}
			}
			result.Reading = MeanOfSamples(result.Samples)
			if !result.Reading.Valid {
				p.log.Warnf("%d: no sample region returned a value", year)
			}
		} else {
			m, err := p.metric.Reduce(ctx, p.client, result.Image, roi, params)
			if err != nil {
				return nil, fmt.Errorf("year %d: %w", year, err)
			}
			result.Reading = m
			if m.Valid {
				p.log.Infof("%d: mean %s = %.1f %s", year, p.metric.Name(), m.Value, p.metric.Unit())
			} else {
				p.log.Warnf("%d: no %s data returned for the region", year, p.metric.Name())
			}
		}

		results = append(results, result)
		bar.Add(1)
	}
	return results, nil
}
