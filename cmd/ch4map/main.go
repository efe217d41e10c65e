package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

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
	figure2 := figure.NewFigure("CH4", "isometric1", true)
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

	log, logFile, err := logging.New(cfg.LogLevel, cfg.ExperimentID, filepath.Join(properties.RootPath(), "log"))
	if err != nil {
		fmt.Printf("\033[31mFailed to set up logging: %s\033[0m\n", err)
		os.Exit(1)
	}
	log.Infof("log file created: %s", logFile)

	opts := delivery.Options{
		Command: "ch4map",
		Metric: trend.ConcentrationMetric{
			MetricName: "CH4",
			MetricUnit: "ppb",
			VisParams: ee.VisParams{
				Min:     1750,
				Max:     1900,
				Palette: []string{"blue", "cyan", "yellow", "red"},
			},
		},
		Attribution: "Google Earth Engine - Sentinel-5P CH4",
		Subject:     "atmospheric CH4 concentration",
		YLabel:      "CH4 concentration (ppb)",
		LocalZoom:   8,
	}

	if err := delivery.Run(context.Background(), cfg, opts, log); err != nil {
		log.Errorf("run failed: %s", err)
		if nerr := notification.SendDiscordErrorNotification(fmt.Sprintf("Earthtrend ch4map\n\nRun failed: %s", err)); nerr != nil {
			log.Warnf("failed to send error notification: %s", nerr)
		}
		os.Exit(1)
	}
}
