package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/sierravision/sierravision-api/internal/observability"
	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/raster"
	"github.com/sierravision/sierravision-api/internal/satellite"
)

// Request describes one change analysis: a named region, two acquisition
// dates and the detection algorithm to apply.
type Request struct {
	Region     string
	BeforeDate time.Time
	AfterDate  time.Time
	Mode       raster.ChangeMode
	Width      int
	Height     int
}

// Result bundles everything a change analysis produced: the report for
// serialization plus the arrays the rendering layer consumes.
type Result struct {
	Report    Report
	ChangeMap raster.Band
	LossMask  raster.Band
	Before    satellite.Acquisition
	After     satellite.Acquisition
}

// Analyzer wires the fetch layer to the change detection core.
type Analyzer struct {
	settings properties.Settings
	fetcher  *satellite.Fetcher
	metrics  *observability.Metrics
}

func NewAnalyzer(settings properties.Settings, fetcher *satellite.Fetcher, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{settings: settings, fetcher: fetcher, metrics: metrics}
}

// Fetcher exposes the underlying acquisition layer for callers that need
// imagery without an analysis, like the comparison download.
func (a *Analyzer) Fetcher() *satellite.Fetcher {
	return a.fetcher
}

// AnalyzeChange fetches the before/after scenes for a region and runs the
// requested change detection algorithm over them.
func (a *Analyzer) AnalyzeChange(ctx context.Context, req Request) (*Result, error) {
	bbox, ok := properties.Regions[req.Region]
	if !ok {
		return nil, fmt.Errorf("unknown region %q", req.Region)
	}
	if req.Width == 0 {
		req.Width = 1024
	}
	if req.Height == 0 {
		req.Height = 1024
	}

	start := time.Now()
	result, err := a.analyze(ctx, req, bbox)
	a.recordAnalysis(req.Mode, err, time.Since(start))
	return result, err
}

func (a *Analyzer) analyze(ctx context.Context, req Request, bbox properties.BoundingBox) (*Result, error) {
	before, after, err := a.fetcher.FetchComparison(ctx, req.BeforeDate, req.AfterDate, bbox, req.Width, req.Height)
	if err != nil {
		return nil, err
	}

	var changeMap, lossMask raster.Band
	var stats raster.Statistics

	switch req.Mode {
	case raster.ModeMaskSubtraction:
		changeMap, lossMask, stats, err = a.detectMaskLoss(before.Raster, after.Raster)
	case raster.ModeIndexDifference:
		changeMap, stats, err = a.detectIntensityChange(before.Raster, after.Raster)
	default:
		_, _, err = raster.DetectChange(nil, nil, req.Mode, raster.DefaultChangeOptions())
	}
	if err != nil {
		return nil, err
	}

	report := Report{
		AnalysisDate:   time.Now().Format(time.RFC3339),
		Region:         req.Region,
		Coordinates:    bbox,
		DataSource:     fmt.Sprintf("%s / %s", before.Source, after.Source),
		AnalysisPeriod: formatPeriod(req.BeforeDate, req.AfterDate),
		Mode:           req.Mode.String(),
		Statistics:     stats,
		Regional:       RegionalBreakdown(satellite.Grayscale(before.Raster), satellite.Grayscale(after.Raster), 4, 6),
		Interpretation: Interpret(stats),
	}

	return &Result{
		Report:    report,
		ChangeMap: changeMap,
		LossMask:  lossMask,
		Before:    before,
		After:     after,
	}, nil
}

// detectMaskLoss runs the HSV vegetation mask pipeline: threshold both
// scenes, subtract, and clean the loss mask with a morphological opening.
func (a *Analyzer) detectMaskLoss(before, after raster.Raster) (raster.Band, raster.Band, raster.Statistics, error) {
	beforeMask, err := raster.VegetationMask(before, raster.DefaultMaskOptions())
	if err != nil {
		return nil, nil, raster.Statistics{}, err
	}
	afterMask, err := raster.VegetationMask(after, raster.DefaultMaskOptions())
	if err != nil {
		return nil, nil, raster.Statistics{}, err
	}

	opts := raster.DefaultChangeOptions()
	opts.Policy = raster.ResizeNearest
	opts.Denoise = true

	changeMap, stats, err := raster.DetectChange(beforeMask, afterMask, raster.ModeMaskSubtraction, opts)
	if err != nil {
		return nil, nil, raster.Statistics{}, err
	}

	height, width := changeMap.Dims()
	lossMask := raster.NewBand(height, width)
	for y := range changeMap {
		for x := range changeMap[y] {
			if changeMap[y][x] < 0 {
				lossMask[y][x] = 1
			}
		}
	}
	return changeMap, lossMask, stats, nil
}

// detectIntensityChange runs the continuous pipeline: grayscale intensity,
// percentile normalization, relative-change map smoothed against sensor
// noise.
func (a *Analyzer) detectIntensityChange(before, after raster.Raster) (raster.Band, raster.Statistics, error) {
	beforeNorm := raster.Normalize(satellite.Grayscale(before), raster.DefaultLowPercentile, raster.DefaultHighPercentile)
	afterNorm := raster.Normalize(satellite.Grayscale(after), raster.DefaultLowPercentile, raster.DefaultHighPercentile)

	opts := raster.DefaultChangeOptions()
	opts.Policy = raster.ResizeNearest
	opts.SmoothSigma = 1.0

	return raster.DetectChange(beforeNorm, afterNorm, raster.ModeIndexDifference, opts)
}

// AnalyzeDensity classifies forest density from the spectral bands of a
// local GeoTIFF scene.
func (a *Analyzer) AnalyzeDensity(tiffPath string) (raster.Band, [][]int, *DensitySummary, error) {
	scene, err := satellite.ReadSceneBands(tiffPath)
	if err != nil {
		return nil, nil, nil, err
	}

	ndvi, err := raster.NDVI(scene.Red, scene.NIR)
	if err != nil {
		return nil, nil, nil, err
	}

	classes := raster.ClassifyDensity(ndvi)
	return ndvi, classes, SummarizeDensity(ndvi, classes), nil
}

func (a *Analyzer) recordAnalysis(mode raster.ChangeMode, err error, elapsed time.Duration) {
	if a.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	a.metrics.AnalysesTotal.WithLabelValues(mode.String(), outcome).Inc()
	a.metrics.AnalysisDuration.Observe(elapsed.Seconds())
}
