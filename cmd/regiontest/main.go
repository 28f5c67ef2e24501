package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sierravision/sierravision-api/internal/observability"
	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/satellite"
	"github.com/sierravision/sierravision-api/output"
)

func main() {
	// Hardcoded test parameters - modify these to test different scenarios
	region := "sierra_madre"
	beforeDate := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	afterDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	width, height := 512, 512

	fmt.Println("=== SierraVision Test Image Download ===")
	fmt.Printf("Region: %s\n", region)
	fmt.Printf("Before: %s\n", beforeDate.Format("2006-01-02"))
	fmt.Printf("After: %s\n", afterDate.Format("2006-01-02"))
	fmt.Println()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		fmt.Println("Optional environment variables:")
		fmt.Println("- EARTHDATA_TOKEN (enables the Worldview fallback provider)")
		fmt.Println("- FIRMS_API_KEY")
		fmt.Println("- DATA_DIR")
		fmt.Println()
	}

	settings := properties.FromEnv()
	if err := os.MkdirAll(settings.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	bbox, ok := properties.Regions[region]
	if !ok {
		log.Fatalf("Unknown region: %s", region)
	}
	fmt.Printf("Bounding box: N=%.2f S=%.2f E=%.2f W=%.2f\n", bbox.North, bbox.South, bbox.East, bbox.West)

	metrics := observability.NewMetrics()
	fetcher := satellite.NewFetcher(settings, satellite.DefaultProviders(settings), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Requesting %dx%d scenes...\n", width, height)
	before, after, err := fetcher.FetchComparison(ctx, beforeDate, afterDate, bbox, width, height)
	if err != nil {
		log.Fatalf("Failed to fetch comparison: %v", err)
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Before scene source: %s\n", before.Source)
	fmt.Printf("After scene source: %s\n", after.Source)

	outputPath := filepath.Join(settings.DataDir, region+"_test_comparison.png")
	err = output.CreateComparisonImage(
		satellite.Grayscale(before.Raster), satellite.Grayscale(after.Raster),
		before.Date.Format("2006-01-02"), after.Date.Format("2006-01-02"), outputPath)
	if err != nil {
		log.Fatalf("Failed to render comparison image: %v", err)
	}

	fmt.Printf("✓ Comparison image saved to %s\n", outputPath)
}
