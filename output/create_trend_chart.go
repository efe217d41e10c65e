package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/earthtrend/earthtrend-research-cli/internal/trend"
	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
)

const chartDPI = 300

// px scales stylistic sizes that matplotlib-style charts express in ~96-DPI
// units up to the raster resolution.
const px = chartDPI / 96.0

// ChartParams describes the trend chart: the filtered yearly series for the
// bar+line panel and, in global mode, the latest valid year's sample stats
// for the heatmap panel.
type ChartParams struct {
	Title     string
	YLabel    string
	Unit      string
	Series    []trend.YearValue
	Global    bool
	GridSize  float64
	HeatTitle string
	Samples   []trend.SampleStat
	FontPath  string
}

// CreateTrendChart renders the chart at 300 DPI and writes it as a PNG. The
// series must be non-empty; the caller is responsible for skipping the chart
// step when no year survived filtering.
func CreateTrendChart(params ChartParams, outputPath string, log *logrus.Logger) error {
	if len(params.Series) == 0 {
		return fmt.Errorf("no valid data to chart")
	}

	width := 12 * chartDPI
	height := 6 * chartDPI
	if params.Global {
		height = 12 * chartDPI
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if params.Global {
		// Two stacked panels with a 1:1.2 height ratio, like the source tool.
		trendH := float64(height) / 2.2
		drawTrendPanel(dc, params, 0, 0, float64(width), trendH)
		drawHeatPanel(dc, params, 0, trendH, float64(width), float64(height)-trendH, log)
	} else {
		drawTrendPanel(dc, params, 0, 0, float64(width), float64(height))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create chart output directory: %w", err)
	}
	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// yAxisRange computes the y-axis limits from the valid series only: a 15%
// margin around the observed min/max, or 15% of the value itself when the
// series is flat.
func yAxisRange(series []trend.YearValue) (float64, float64) {
	minV, maxV := series[0].Value, series[0].Value
	for _, pt := range series[1:] {
		minV = math.Min(minV, pt.Value)
		maxV = math.Max(maxV, pt.Value)
	}
	margin := (maxV - minV) * 0.15
	if minV == maxV {
		margin = maxV * 0.15
	}
	return minV - margin, maxV + margin
}

// yearOffsets places each year on a numeric axis: the slot centers as
// fractions of the plot width, plus the width fraction of one year slot.
// Non-consecutive years keep their gaps instead of collapsing onto even
// index positions.
func yearOffsets(series []trend.YearValue) ([]float64, float64) {
	minYear, maxYear := series[0].Year, series[0].Year
	for _, pt := range series[1:] {
		if pt.Year < minYear {
			minYear = pt.Year
		}
		if pt.Year > maxYear {
			maxYear = pt.Year
		}
	}
	unit := 1 / float64(maxYear-minYear+1)
	offsets := make([]float64, len(series))
	for i, pt := range series {
		offsets[i] = unit * (float64(pt.Year-minYear) + 0.5)
	}
	return offsets, unit
}

func (p ChartParams) setFont(dc *gg.Context, points float64) {
	if p.FontPath == "" {
		return
	}
	// Errors leave the built-in face in place, which still renders.
	_ = dc.LoadFontFace(p.FontPath, points*chartDPI/72)
}

func drawTrendPanel(dc *gg.Context, params ChartParams, x0, y0, w, h float64) {
	left := 0.09 * w
	right := 0.03 * w
	top := 0.13 * h
	bottom := 0.14 * h
	plotX, plotY := x0+left, y0+top
	plotW, plotH := w-left-right, h-top-bottom

	// Panel background.
	dc.SetRGB255(240, 240, 240)
	dc.DrawRectangle(plotX, plotY, plotW, plotH)
	dc.Fill()

	lo, hi := yAxisRange(params.Series)
	yTo := func(v float64) float64 {
		return plotY + plotH*(1-(v-lo)/(hi-lo))
	}

	// Horizontal gridlines with y tick labels.
	params.setFont(dc, 10)
	dc.SetDash(6*px, 6*px)
	for i := 0; i <= 5; i++ {
		v := lo + (hi-lo)*float64(i)/5
		y := yTo(v)
		dc.SetRGBA(0.5, 0.5, 0.5, 0.3)
		dc.SetLineWidth(1 * px)
		dc.DrawLine(plotX, y, plotX+plotW, y)
		dc.Stroke()
		dc.SetRGB255(51, 51, 51)
		dc.DrawStringAnchored(formatTick(v, hi-lo), plotX-8*px, y, 1, 0.5)
	}
	dc.SetDash()

	offsets, unit := yearOffsets(params.Series)
	barW := plotW * unit * 0.6
	centers := make([]float64, len(params.Series))
	tops := make([]float64, len(params.Series))

	// Bars.
	for i, pt := range params.Series {
		cx := plotX + plotW*offsets[i]
		topY := yTo(pt.Value)
		centers[i], tops[i] = cx, topY

		dc.SetRGBA255(91, 155, 213, 178) // #5B9BD5 at 0.7 alpha
		dc.DrawRectangle(cx-barW/2, topY, barW, plotY+plotH-topY)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(1 * px)
		dc.DrawRectangle(cx-barW/2, topY, barW, plotY+plotH-topY)
		dc.Stroke()
	}

	// Trend line over the bars.
	dc.SetRGB255(237, 125, 49) // #ED7D31
	dc.SetLineWidth(2.5 * px)
	for i := 1; i < len(centers); i++ {
		dc.DrawLine(centers[i-1], tops[i-1], centers[i], tops[i])
		dc.Stroke()
	}
	for i := range centers {
		dc.SetRGB(1, 1, 1)
		dc.DrawCircle(centers[i], tops[i], 5*px)
		dc.Fill()
		dc.SetRGB255(237, 125, 49)
		dc.SetLineWidth(2 * px)
		dc.DrawCircle(centers[i], tops[i], 5*px)
		dc.Stroke()
	}

	// Per-bar value labels to one decimal, and year tick labels.
	params.setFont(dc, 11)
	dc.SetRGB255(51, 51, 51)
	for i, pt := range params.Series {
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", pt.Value), centers[i], tops[i]-8*px, 0.5, 1)
		dc.DrawStringAnchored(strconv.Itoa(pt.Year), centers[i], plotY+plotH+10*px, 0.5, 0)
	}

	// Titles and axis labels.
	params.setFont(dc, 16)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(params.Title, plotX+plotW/2, y0+top/2, 0.5, 0.5)
	params.setFont(dc, 12)
	dc.DrawStringAnchored("Year", plotX+plotW/2, plotY+plotH+bottom*0.65, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, x0+left*0.3, plotY+plotH/2)
	dc.DrawStringAnchored(params.YLabel, x0+left*0.3, plotY+plotH/2, 0.5, 0.5)
	dc.Pop()

	drawLegend(dc, params, plotX+plotW-180*px, plotY+14*px)
}

func drawLegend(dc *gg.Context, params ChartParams, x, y float64) {
	params.setFont(dc, 11)

	dc.SetRGBA255(91, 155, 213, 178)
	dc.DrawRectangle(x, y, 24*px, 12*px)
	dc.Fill()
	dc.SetRGB255(51, 51, 51)
	dc.DrawStringAnchored("annual mean", x+32*px, y+6*px, 0, 0.5)

	y += 22 * px
	dc.SetRGB255(237, 125, 49)
	dc.SetLineWidth(2.5 * px)
	dc.DrawLine(x, y+6*px, x+24*px, y+6*px)
	dc.Stroke()
	dc.SetRGB255(51, 51, 51)
	dc.DrawStringAnchored("trend", x+32*px, y+6*px, 0, 0.5)
}

func drawHeatPanel(dc *gg.Context, params ChartParams, x0, y0, w, h float64, log *logrus.Logger) {
	left := 0.09 * w
	right := 0.12 * w // room for the colorbar
	top := 0.10 * h
	bottom := 0.12 * h
	plotX, plotY := x0+left, y0+top
	plotW, plotH := w-left-right, h-top-bottom

	dc.SetRGB255(240, 240, 240)
	dc.DrawRectangle(plotX, plotY, plotW, plotH)
	dc.Fill()

	var lats, lons, values []float64
	for _, s := range params.Samples {
		if s.Reading.Valid {
			lats = append(lats, s.Lat)
			lons = append(lons, s.Lon)
			values = append(values, s.Reading.Value)
		}
	}

	params.setFont(dc, 14)
	if len(values) == 0 {
		log.Warnf("no valid sampled values for the heatmap panel")
		dc.SetRGB255(51, 51, 51)
		dc.DrawStringAnchored("No valid data to display", plotX+plotW/2, plotY+plotH/2, 0.5, 0.5)
		return
	}

	// Bin the sample values on the configured grid, summing per cell the way
	// a weighted 2-D histogram does.
	nLon := int(math.Round(360 / params.GridSize))
	nLat := int(math.Round(180 / params.GridSize))
	heat := make([][]float64, nLat)
	for i := range heat {
		heat[i] = make([]float64, nLon)
	}
	for i := range values {
		li := binIndex(lats[i], -90, params.GridSize, nLat)
		lj := binIndex(lons[i], -180, params.GridSize, nLon)
		heat[li][lj] += values[i]
	}

	minH, maxH := heat[0][0], heat[0][0]
	for _, row := range heat {
		for _, v := range row {
			minH = math.Min(minH, v)
			maxH = math.Max(maxH, v)
		}
	}

	cellW := plotW / float64(nLon)
	cellH := plotH / float64(nLat)
	for li := 0; li < nLat; li++ {
		for lj := 0; lj < nLon; lj++ {
			t := 0.5
			if maxH > minH {
				t = (heat[li][lj] - minH) / (maxH - minH)
			}
			r, g, b := rdYlBu(t)
			dc.SetRGB255(r, g, b)
			// Row 0 is the southernmost band; the y axis grows upward.
			y := plotY + plotH - float64(li+1)*cellH
			dc.DrawRectangle(plotX+float64(lj)*cellW, y, cellW, cellH)
			dc.Fill()
		}
	}

	// Sample centroid markers.
	for i := range values {
		mx := plotX + (lons[i]+180)/360*plotW
		my := plotY + plotH*(1-(lats[i]+90)/180)
		dc.SetRGBA(1, 0, 0, 0.6)
		dc.DrawCircle(mx, my, 7*px)
		dc.Fill()
	}

	// Axis ticks.
	params.setFont(dc, 10)
	dc.SetRGB255(51, 51, 51)
	for lon := -180.0; lon <= 180; lon += 60 {
		tx := plotX + (lon+180)/360*plotW
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", lon), tx, plotY+plotH+10*px, 0.5, 0)
	}
	for lat := -90.0; lat <= 90; lat += 30 {
		ty := plotY + plotH*(1-(lat+90)/180)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", lat), plotX-8*px, ty, 1, 0.5)
	}

	drawColorbar(dc, params, plotX+plotW+20*px, plotY, 20*px, plotH, minH, maxH)

	params.setFont(dc, 16)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(params.HeatTitle, plotX+plotW/2, y0+top/2, 0.5, 0.5)
	params.setFont(dc, 12)
	dc.DrawStringAnchored("Longitude", plotX+plotW/2, plotY+plotH+bottom*0.6, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, x0+left*0.3, plotY+plotH/2)
	dc.DrawStringAnchored("Latitude", x0+left*0.3, plotY+plotH/2, 0.5, 0.5)
	dc.Pop()
}

func drawColorbar(dc *gg.Context, params ChartParams, x, y, w, h, minV, maxV float64) {
	steps := 100
	for i := 0; i < steps; i++ {
		t := 1 - float64(i)/float64(steps-1)
		r, g, b := rdYlBu(t)
		dc.SetRGB255(r, g, b)
		dc.DrawRectangle(x, y+h*float64(i)/float64(steps), w, h/float64(steps)+1)
		dc.Fill()
	}
	dc.SetRGB255(51, 51, 51)
	dc.SetLineWidth(1 * px)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	params.setFont(dc, 10)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", maxV), x+w+6*px, y, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", minV), x+w+6*px, y+h, 0, 0.5)
	if params.Unit != "" {
		dc.Push()
		dc.RotateAbout(math.Pi/2, x+w+36*px, y+h/2)
		dc.DrawStringAnchored(params.Unit, x+w+36*px, y+h/2, 0.5, 0.5)
		dc.Pop()
	}
}

func binIndex(v, min, size float64, n int) int {
	idx := int(math.Floor((v - min) / size))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

func formatTick(v, span float64) string {
	if math.Abs(span) >= 10 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// rdYlBu interpolates a blue-to-red diverging ramp: low values cold, high
// values hot.
func rdYlBu(t float64) (int, int, int) {
	stops := [][3]float64{
		{49, 54, 149},
		{116, 173, 209},
		{255, 255, 191},
		{244, 109, 67},
		{165, 0, 38},
	}
	t = math.Max(0, math.Min(1, t))
	scaled := t * float64(len(stops)-1)
	i := int(math.Floor(scaled))
	if i >= len(stops)-1 {
		i = len(stops) - 2
	}
	f := scaled - float64(i)
	r := stops[i][0] + (stops[i+1][0]-stops[i][0])*f
	g := stops[i][1] + (stops[i+1][1]-stops[i][1])*f
	b := stops[i][2] + (stops[i+1][2]-stops[i][2])*f
	return int(r), int(g), int(b)
}
