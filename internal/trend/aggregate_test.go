package trend

import (
	"testing"

	"github.com/earthtrend/earthtrend-research-cli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanOfSamples(t *testing.T) {
	samples := []SampleStat{
		{Reading: Absent()},
		{Reading: Present(10)},
		{Reading: Present(20)},
		{Reading: Absent()},
		{Reading: Present(30)},
	}

	m := MeanOfSamples(samples)
	require.True(t, m.Valid)
	assert.Equal(t, 20.0, m.Value)
}

func TestMeanOfSamplesAllAbsent(t *testing.T) {
	samples := []SampleStat{{Reading: Absent()}, {Reading: Absent()}}
	assert.False(t, MeanOfSamples(samples).Valid)
	assert.False(t, MeanOfSamples(nil).Valid)
}

func TestFilterSeries(t *testing.T) {
	results := []YearResult{
		{Year: 2018, Reading: Present(0)},
		{Year: 2019, Reading: Present(1850.3)},
		{Year: 2020, Reading: Absent()},
	}

	series := FilterSeries(results, logging.Discard())
	require.Equal(t, []YearValue{{Year: 2019, Value: 1850.3}}, series)
}

func TestFilterSeriesSortsAscending(t *testing.T) {
	results := []YearResult{
		{Year: 2021, Reading: Present(3)},
		{Year: 2019, Reading: Present(1)},
		{Year: 2020, Reading: Present(2)},
	}

	series := FilterSeries(results, logging.Discard())
	require.Len(t, series, 3)
	assert.Equal(t, []YearValue{{2019, 1}, {2020, 2}, {2021, 3}}, series)
}

func TestFilterSeriesNegativeExcluded(t *testing.T) {
	results := []YearResult{{Year: 2019, Reading: Present(-5)}}
	assert.Empty(t, FilterSeries(results, logging.Discard()))
}

func TestLatestValidSamples(t *testing.T) {
	stats := []SampleStat{{Lat: 10, Lon: 20, Reading: Present(7)}}
	results := []YearResult{
		{Year: 2019, Reading: Present(1), Samples: []SampleStat{{Reading: Present(1)}}},
		{Year: 2021, Reading: Absent()},
		{Year: 2020, Reading: Present(2), Samples: stats},
	}

	year, samples, ok := LatestValidSamples(results)
	require.True(t, ok)
	assert.Equal(t, 2020, year)
	assert.Equal(t, stats, samples)
}

func TestLatestValidSamplesNone(t *testing.T) {
	_, _, ok := LatestValidSamples([]YearResult{{Year: 2019, Reading: Absent()}})
	assert.False(t, ok)
}
