package output

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/sierravision/sierravision-api/internal/analysis"
	"github.com/sierravision/sierravision-api/internal/satellite"
)

// WriteFiresCSV exports fire detections for spreadsheet review.
func WriteFiresCSV(fires []satellite.FireDetection, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create fires CSV: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&fires, file); err != nil {
		return fmt.Errorf("failed to write fires CSV: %v", err)
	}
	return nil
}

// WriteRegionalCSV exports the per-cell regional breakdown.
func WriteRegionalCSV(cells []analysis.CellChange, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create regional CSV: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&cells, file); err != nil {
		return fmt.Errorf("failed to write regional CSV: %v", err)
	}
	return nil
}
