package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/raster"
)

// Report is the JSON summary the API and the frontend dashboards consume.
type Report struct {
	AnalysisDate   string                 `json:"analysis_date"`
	Region         string                 `json:"region"`
	Coordinates    properties.BoundingBox `json:"coordinates"`
	DataSource     string                 `json:"data_source"`
	AnalysisPeriod string                 `json:"analysis_period"`
	Mode           string                 `json:"mode"`
	Statistics     raster.Statistics      `json:"statistics"`
	Density        *DensitySummary        `json:"density,omitempty"`
	Regional       []CellChange           `json:"regional_breakdown,omitempty"`
	Interpretation Interpretation         `json:"interpretation"`
}

// Interpretation is the plain-language reading of the statistics.
type Interpretation struct {
	OverallTrend    string `json:"overall_trend"`
	ChangeMagnitude string `json:"change_magnitude"`
	DataQuality     string `json:"data_quality"`
}

// DensitySummary aggregates a density classification for reporting.
type DensitySummary struct {
	Counts      [raster.DensityClassCount]int     `json:"class_counts"`
	Percentages [raster.DensityClassCount]float64 `json:"class_percentages"`
	MeanNDVI    float64                           `json:"mean_ndvi"`
}

// Interpret derives the overall trend and magnitude from change statistics.
// A net change above ten percentage points reads as significant.
func Interpret(stats raster.Statistics) Interpretation {
	trend := "Stable"
	if stats.LossPixels > stats.GainPixels {
		trend = "Forest Loss"
	} else if stats.GainPixels > stats.LossPixels {
		trend = "Forest Gain"
	}

	magnitude := "Moderate"
	if math.Abs(stats.NetChangePercent) > 10 {
		magnitude = "Significant"
	}

	return Interpretation{
		OverallTrend:    trend,
		ChangeMagnitude: magnitude,
		DataQuality:     "High (NASA MODIS/VIIRS)",
	}
}

// SummarizeDensity builds the report block for a density classification.
func SummarizeDensity(ndvi raster.Band, classes [][]int) *DensitySummary {
	summary := &DensitySummary{Counts: raster.DensityCounts(classes)}

	total := 0
	for _, count := range summary.Counts {
		total += count
	}
	if total == 0 {
		return summary
	}
	for i, count := range summary.Counts {
		summary.Percentages[i] = float64(count) / float64(total) * 100
	}

	var sum float64
	for y := range ndvi {
		for x := range ndvi[y] {
			sum += ndvi[y][x]
		}
	}
	summary.MeanNDVI = sum / float64(total)
	return summary
}

// WriteReport saves the report JSON under dataDir, returning the file path.
func WriteReport(dataDir string, report Report) (string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %v", err)
	}

	path := filepath.Join(dataDir, fmt.Sprintf("%s_forest_analysis_report.json", report.Region))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %v", err)
	}
	return path, nil
}

func formatPeriod(before, after time.Time) string {
	return fmt.Sprintf("%s to %s", before.Format("2006-01-02"), after.Format("2006-01-02"))
}
