package main

import (
	"context"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/earthtrend/earthtrend-research-cli/internal/config"
	"github.com/earthtrend/earthtrend-research-cli/internal/delivery"
	"github.com/earthtrend/earthtrend-research-cli/internal/ee"
	"github.com/earthtrend/earthtrend-research-cli/internal/logging"
	"github.com/earthtrend/earthtrend-research-cli/internal/notification"
	"github.com/earthtrend/earthtrend-research-cli/internal/properties"
	"github.com/earthtrend/earthtrend-research-cli/internal/trend"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Earthtrend", "isometric1", true)
	figure2 := figure.NewFigure("ICE", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func main() {
	printBanner()

	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../.env")
	}

	cfg, err := config.Load(properties.RootPath())
	if err != nil {
		fmt.Printf("\033[31mConfiguration error: %s\033[0m\n", err)
		os.Exit(1)
	}

	// Console-only logging for this command, at the configured level.
	log, _, err := logging.New(cfg.LogLevel, cfg.ExperimentID, "")
	if err != nil {
		fmt.Printf("\033[31mFailed to set up logging: %s\033[0m\n", err)
		os.Exit(1)
	}

	opts := delivery.Options{
		Command: "icemap",
		Metric: trend.CoverageMetric{
			MetricName: "snow cover",
			Threshold:  cfg.Threshold,
			VisParams: ee.VisParams{
				Min:     0,
				Max:     100,
				Palette: []string{"black", "blue", "cyan", "white"},
			},
		},
		Attribution: "Google Earth Engine - MODIS Snow Cover",
		Subject:     "snow cover fraction",
		YLabel:      "Snow cover (%)",
		LocalZoom:   10,
	}

	if err := delivery.Run(context.Background(), cfg, opts, log); err != nil {
		log.Errorf("run failed: %s", err)
		if nerr := notification.SendDiscordErrorNotification(fmt.Sprintf("Earthtrend icemap\n\nRun failed: %s", err)); nerr != nil {
			log.Warnf("failed to send error notification: %s", nerr)
		}
		os.Exit(1)
	}
}
