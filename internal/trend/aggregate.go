package trend

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// MeanOfSamples aggregates per-sample-region readings to one scalar: the
// arithmetic mean of the samples that returned a value. All-absent input
// aggregates to an absent reading.
func MeanOfSamples(samples []SampleStat) Measurement {
	var sum float64
	var n int
	for _, s := range samples {
		if s.Reading.Valid {
			sum += s.Reading.Value
			n++
		}
	}
	if n == 0 {
		return Absent()
	}
	return Present(sum / float64(n))
}

// YearValue is one chartable point of the aggregated series.
type YearValue struct {
	Year  int
	Value float64
}

// FilterSeries returns the ordered (year, value) pairs ready for charting,
// years ascending. Absent years are dropped silently (they were already
// logged when produced); present non-positive readings are also dropped, with
// a warning each, because a true zero may be physically meaningful even
// though this pipeline cannot chart it.
func FilterSeries(results []YearResult, log *logrus.Logger) []YearValue {
	series := make([]YearValue, 0, len(results))
	for _, r := range results {
		if !r.Reading.Valid {
			continue
		}
		if r.Reading.Value <= 0 {
			log.Warnf("%d: non-positive reading %.1f excluded from the chart", r.Year, r.Reading.Value)
			continue
		}
		series = append(series, YearValue{Year: r.Year, Value: r.Reading.Value})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return series
}

// LatestValidSamples finds the most recent chartable year (valid, positive
// aggregate) and returns its per-sample stats for the heatmap panel. The bool
// is false when no year qualifies.
func LatestValidSamples(results []YearResult) (int, []SampleStat, bool) {
	best := -1
	var samples []SampleStat
	for _, r := range results {
		if r.Reading.Valid && r.Reading.Value > 0 && r.Year > best {
			best = r.Year
			samples = r.Samples
		}
	}
	if best < 0 {
		return 0, nil, false
	}
	return best, samples, true
}
