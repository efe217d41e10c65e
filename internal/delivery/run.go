package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/earthtrend/earthtrend-research-cli/internal/config"
	"github.com/earthtrend/earthtrend-research-cli/internal/ee"
	"github.com/earthtrend/earthtrend-research-cli/internal/notification"
	"github.com/earthtrend/earthtrend-research-cli/internal/properties"
	"github.com/earthtrend/earthtrend-research-cli/internal/trend"
	"github.com/earthtrend/earthtrend-research-cli/output"
	"github.com/sirupsen/logrus"
)

// Options carries the per-command specializations of the shared pipeline: the
// metric strategy plus labeling for the artifacts.
type Options struct {
	Command     string
	Metric      trend.Metric
	Attribution string
	Subject     string
	YLabel      string
	LocalZoom   int
}

// Run authenticates against Earth Engine and executes the full pipeline:
// per-year queries, map, CSV export, trend chart, success notification.
func Run(ctx context.Context, cfg *config.Config, opts Options, log *logrus.Logger) error {
	client, err := ee.NewClient(ctx, cfg.ProjectName, log)
	if err != nil {
		return err
	}
	return RunWithClient(ctx, client, cfg, opts, log)
}

// RunWithClient is Run with an injected client; tests use it with a stub
// transport.
func RunWithClient(ctx context.Context, client *ee.Client, cfg *config.Config, opts Options, log *logrus.Logger) error {
	pipeline := trend.New(client, cfg, opts.Metric, log)
	results, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	layers, err := output.BuildYearLayers(ctx, client, results, opts.Metric.Vis(), opts.Attribution)
	if err != nil {
		return err
	}
	mapPath := MapOutputPath(cfg)
	if err := output.CreateMapHTML(mapParams(cfg, opts, layers), mapPath); err != nil {
		return err
	}
	log.Infof("map saved to %s", mapPath)

	csvPath := filepath.Join(properties.RootPath(), "data", "result", cfg.ExperimentID+"_series.csv")
	if err := output.CreateSeriesCSV(results, opts.Metric.Unit(), csvPath); err != nil {
		return err
	}
	log.Infof("series exported to %s", csvPath)

	picPath := ""
	series := trend.FilterSeries(results, log)
	if len(series) == 0 {
		log.Errorf("no valid %s data for any year, skipping the trend chart", opts.Metric.Name())
	} else {
		picPath = ChartOutputPath(cfg)
		if err := output.CreateTrendChart(chartParams(cfg, opts, series, results), picPath, log); err != nil {
			return err
		}
		log.Infof("chart saved to %s", picPath)
	}

	message := fmt.Sprintf("Earthtrend %s\n\nRun finished.\nMap: %s\nSeries: %s", opts.Command, mapPath, csvPath)
	if picPath != "" {
		message += fmt.Sprintf("\nChart: %s", picPath)
	}
	if err := notification.SendDiscordSuccessNotification(message); err != nil {
		log.Warnf("failed to send success notification: %s", err)
	}
	return nil
}

// MapOutputPath resolves the map artifact location from the configured
// output directory and experiment identifier.
func MapOutputPath(cfg *config.Config) string {
	dir := filepath.Join(properties.RootPath(), strings.Trim(cfg.MapFilePath, "./"))
	return filepath.Join(dir, fmt.Sprintf("%s_%s", cfg.ExperimentID, cfg.MapFileName))
}

// ChartOutputPath resolves the chart artifact location under the fixed pic
// directory.
func ChartOutputPath(cfg *config.Config) string {
	return filepath.Join(properties.RootPath(), "pic", fmt.Sprintf("%s_%s.png", cfg.ExperimentID, cfg.PicName))
}

func mapParams(cfg *config.Config, opts Options, layers []output.MapLayer) output.MapParams {
	params := output.MapParams{
		Title:           cfg.ExperimentID,
		BaseTiles:       output.BaseTileURL(cfg.MapTiles),
		BaseAttribution: cfg.MapTiles,
		Layers:          layers,
	}
	if cfg.Global() {
		params.Zoom = 2
		return params
	}
	params.CenterLat = cfg.Center[1]
	params.CenterLon = cfg.Center[0]
	params.Zoom = opts.LocalZoom
	params.Circle = &output.MapCircle{
		Lat:          cfg.Center[1],
		Lon:          cfg.Center[0],
		RadiusMeters: cfg.Radius,
		Label:        fmt.Sprintf("Study area (radius: %g km)", cfg.Radius/1000),
	}
	return params
}

func chartParams(cfg *config.Config, opts Options, series []trend.YearValue, results []trend.YearResult) output.ChartParams {
	scope := "Regional"
	if cfg.Global() {
		scope = "Global"
	}
	params := output.ChartParams{
		Title:    fmt.Sprintf("%s %s annual trend", scope, opts.Subject),
		YLabel:   opts.YLabel,
		Unit:     opts.Metric.Unit(),
		Series:   series,
		Global:   cfg.Global(),
		GridSize: cfg.GridSize,
		FontPath: properties.ChartFontPath(),
	}
	if cfg.Global() {
		if year, samples, ok := trend.LatestValidSamples(results); ok {
			params.HeatTitle = fmt.Sprintf("%d global %s distribution", year, opts.Subject)
			params.Samples = samples
		}
	}
	return params
}
