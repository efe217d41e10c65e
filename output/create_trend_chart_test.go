package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/earthtrend/earthtrend-research-cli/internal/logging"
	"github.com/earthtrend/earthtrend-research-cli/internal/trend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAxisRange(t *testing.T) {
	tests := []struct {
		name   string
		series []trend.YearValue
		lo     float64
		hi     float64
	}{
		{
			name:   "spread values",
			series: []trend.YearValue{{Year: 2019, Value: 1800}, {Year: 2020, Value: 1900}},
			lo:     1800 - 15,
			hi:     1900 + 15,
		},
		{
			name:   "single value margins from the value itself",
			series: []trend.YearValue{{Year: 2019, Value: 1850.3}},
			lo:     1850.3 * 0.85,
			hi:     1850.3 * 1.15,
		},
		{
			name:   "flat series",
			series: []trend.YearValue{{Year: 2019, Value: 40}, {Year: 2020, Value: 40}},
			lo:     34,
			hi:     46,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := yAxisRange(tt.series)
			assert.InDelta(t, tt.lo, lo, 1e-9)
			assert.InDelta(t, tt.hi, hi, 1e-9)
		})
	}
}

func TestYearOffsets(t *testing.T) {
	// Consecutive years fall on even slots.
	offsets, unit := yearOffsets([]trend.YearValue{
		{Year: 2019, Value: 1}, {Year: 2020, Value: 2}, {Year: 2021, Value: 3},
	})
	assert.InDelta(t, 1.0/3, unit, 1e-9)
	require.Len(t, offsets, 3)
	assert.InDelta(t, 0.5/3, offsets[0], 1e-9)
	assert.InDelta(t, 1.5/3, offsets[1], 1e-9)
	assert.InDelta(t, 2.5/3, offsets[2], 1e-9)

	// A gap in the year list keeps its width on the axis.
	offsets, unit = yearOffsets([]trend.YearValue{
		{Year: 2018, Value: 1}, {Year: 2023, Value: 2},
	})
	assert.InDelta(t, 1.0/6, unit, 1e-9)
	assert.InDelta(t, 0.5/6, offsets[0], 1e-9)
	assert.InDelta(t, 5.5/6, offsets[1], 1e-9)
	assert.InDelta(t, 5.0/6, offsets[1]-offsets[0], 1e-9)
}

func TestCreateTrendChartSparseYears(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "trend.png")

	params := ChartParams{
		Title:  "Regional snow cover fraction annual trend",
		YLabel: "Snow cover (%)",
		Unit:   "%",
		Series: []trend.YearValue{
			{Year: 2018, Value: 42.5},
			{Year: 2023, Value: 38.1},
		},
	}

	require.NoError(t, CreateTrendChart(params, outputPath, logging.Discard()))
	requirePNG(t, outputPath)
}

func requirePNG(t *testing.T, path string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(content), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, content[:4])
}

func TestCreateTrendChartPointMode(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "pic", "exp1_trend.png")

	params := ChartParams{
		Title:  "Regional atmospheric CH4 concentration annual trend",
		YLabel: "CH4 concentration (ppb)",
		Unit:   "ppb",
		Series: []trend.YearValue{
			{Year: 2019, Value: 1810.1},
			{Year: 2020, Value: 1820.2},
			{Year: 2021, Value: 1835.7},
		},
	}

	require.NoError(t, CreateTrendChart(params, outputPath, logging.Discard()))
	requirePNG(t, outputPath)
}

func TestCreateTrendChartGlobalMode(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "trend.png")

	params := ChartParams{
		Title:     "Global atmospheric CH4 concentration annual trend",
		YLabel:    "CH4 concentration (ppb)",
		Unit:      "ppb",
		Global:    true,
		GridSize:  10,
		HeatTitle: "2021 global atmospheric CH4 concentration distribution",
		Series:    []trend.YearValue{{Year: 2021, Value: 1850.3}},
		Samples: []trend.SampleStat{
			{Lat: 45.2, Lon: -120.8, Reading: trend.Present(1840)},
			{Lat: -33.1, Lon: 18.4, Reading: trend.Present(1860)},
			{Lat: 10.0, Lon: 100.0, Reading: trend.Absent()},
		},
	}

	require.NoError(t, CreateTrendChart(params, outputPath, logging.Discard()))
	requirePNG(t, outputPath)
}

func TestCreateTrendChartGlobalModeNoValidSamples(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "trend.png")

	params := ChartParams{
		Title:    "Global snow cover fraction annual trend",
		YLabel:   "Snow cover (%)",
		Global:   true,
		GridSize: 10,
		Series:   []trend.YearValue{{Year: 2021, Value: 42.5}},
		Samples:  []trend.SampleStat{{Lat: 10, Lon: 20, Reading: trend.Absent()}},
	}

	// The placeholder panel still renders a valid chart file.
	require.NoError(t, CreateTrendChart(params, outputPath, logging.Discard()))
	requirePNG(t, outputPath)
}

func TestCreateTrendChartEmptySeries(t *testing.T) {
	err := CreateTrendChart(ChartParams{}, filepath.Join(t.TempDir(), "x.png"), logging.Discard())
	require.Error(t, err)
}

func TestRdYlBuEndpoints(t *testing.T) {
	r, g, b := rdYlBu(0)
	assert.Equal(t, [3]int{49, 54, 149}, [3]int{r, g, b})
	r, g, b = rdYlBu(1)
	assert.Equal(t, [3]int{165, 0, 38}, [3]int{r, g, b})
}
