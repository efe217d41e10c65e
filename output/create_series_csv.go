package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/earthtrend/earthtrend-research-cli/internal/trend"
	"github.com/gocarina/gocsv"
)

// SeriesRow is one exported year of the aggregated series. Absent readings
// keep their row with valid=false rather than being dropped, so downstream
// analysis can tell "no data" from "not queried".
type SeriesRow struct {
	Year  int     `csv:"year"`
	Value float64 `csv:"value"`
	Unit  string  `csv:"unit"`
	Valid bool    `csv:"valid"`
}

// SampleRow is one sample-region reading of one year (global mode only).
type SampleRow struct {
	Year  int     `csv:"year"`
	Lat   float64 `csv:"lat"`
	Lon   float64 `csv:"lon"`
	Value float64 `csv:"value"`
	Valid bool    `csv:"valid"`
}

// CreateSeriesCSV exports the per-year aggregate series, and the per-sample
// readings when any exist, next to the other run artifacts.
func CreateSeriesCSV(results []trend.YearResult, unit, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	rows := make([]SeriesRow, 0, len(results))
	var sampleRows []SampleRow
	for _, r := range results {
		rows = append(rows, SeriesRow{
			Year:  r.Year,
			Value: r.Reading.Value,
			Unit:  unit,
			Valid: r.Reading.Valid,
		})
		for _, s := range r.Samples {
			sampleRows = append(sampleRows, SampleRow{
				Year:  r.Year,
				Lat:   s.Lat,
				Lon:   s.Lon,
				Value: s.Reading.Value,
				Valid: s.Reading.Valid,
			})
		}
	}

	if err := writeCSV(outputPath, &rows); err != nil {
		return err
	}
	if len(sampleRows) > 0 {
		samplePath := samplesPath(outputPath)
		if err := writeCSV(samplePath, &sampleRows); err != nil {
			return err
		}
	}
	return nil
}

// samplesPath derives the per-sample export name from the series file name.
func samplesPath(seriesPath string) string {
	ext := filepath.Ext(seriesPath)
	return seriesPath[:len(seriesPath)-len(ext)] + "_samples" + ext
}

func writeCSV(path string, rows interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
