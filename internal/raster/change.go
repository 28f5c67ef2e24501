package raster

import "fmt"

// ChangeMode selects the change detection algorithm. Mask subtraction works
// on binary vegetation masks and only detects loss; index difference works
// on continuous rasters and detects both loss and gain.
type ChangeMode int

const (
	ModeMaskSubtraction ChangeMode = iota
	ModeIndexDifference
)

func (m ChangeMode) String() string {
	switch m {
	case ModeMaskSubtraction:
		return "mask-subtraction"
	case ModeIndexDifference:
		return "index-difference"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseChangeMode maps the wire/CLI names onto a ChangeMode.
func ParseChangeMode(name string) (ChangeMode, error) {
	switch name {
	case "mask-subtraction", "mask":
		return ModeMaskSubtraction, nil
	case "index-difference", "index":
		return ModeIndexDifference, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, name)
	}
}

// relativeChangeEpsilon keeps the relative-change denominator away from zero.
const relativeChangeEpsilon = 1e-8

// ChangeOptions tune DetectChange. The zero value of Denoise and SmoothSigma
// disables the optional cleanup steps, keeping pixel counts exact.
type ChangeOptions struct {
	LossThreshold float64      // change below this counts as loss
	GainThreshold float64      // change above this counts as gain
	Policy        ResizePolicy // how to reconcile mismatched dimensions
	Denoise       bool         // morphological opening of the loss mask (mask mode)
	KernelSize    int          // opening neighborhood, default 5
	SmoothSigma   float64      // Gaussian sigma for the change map (index mode)
}

func DefaultChangeOptions() ChangeOptions {
	return ChangeOptions{
		LossThreshold: -0.1,
		GainThreshold: 0.1,
		KernelSize:    5,
	}
}

// Statistics aggregates a change map into the counts and percentages the
// reporting layer serializes.
type Statistics struct {
	TotalPixels      int     `json:"total_pixels_analyzed"`
	LossPixels       int     `json:"forest_loss_pixels"`
	GainPixels       int     `json:"forest_gain_pixels"`
	StablePixels     int     `json:"stable_pixels"`
	LossPercent      float64 `json:"forest_loss_percentage"`
	GainPercent      float64 `json:"forest_gain_percentage"`
	StablePercent    float64 `json:"stable_percentage"`
	NetChangePercent float64 `json:"net_change_percentage"`

	// Mask-subtraction extras. Areas are counted in vegetated pixels of the
	// before mask and VegetationLossPercent is relative to that area, so a
	// mostly bare scene does not dilute the loss figure.
	VegetationArea        int     `json:"vegetation_area_pixels,omitempty"`
	VegetationLossArea    int     `json:"vegetation_loss_pixels,omitempty"`
	VegetationLossPercent float64 `json:"vegetation_loss_percentage,omitempty"`
}

// DetectChange compares two temporally distinct rasters of the same region
// and returns a signed change map (negative = loss, positive = gain) plus
// aggregate statistics. Inputs for ModeIndexDifference are expected to be
// normalized by the caller.
func DetectChange(before, after Band, mode ChangeMode, opts ChangeOptions) (Band, Statistics, error) {
	if opts.KernelSize == 0 {
		opts.KernelSize = 5
	}

	before, after, err := alignBands(before, after, opts.Policy)
	if err != nil {
		return nil, Statistics{}, err
	}

	switch mode {
	case ModeMaskSubtraction:
		return detectMaskLoss(before, after, opts)
	case ModeIndexDifference:
		return detectIndexChange(before, after, opts)
	default:
		return nil, Statistics{}, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

// detectMaskLoss flags vegetation that was present before and is absent
// after: a masked subtraction clamped at zero. Gain is not detected in this
// mode by design of the input masks.
func detectMaskLoss(before, after Band, opts ChangeOptions) (Band, Statistics, error) {
	height, width := before.Dims()

	loss := NewBand(height, width)
	vegetationArea := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if before[y][x] > 0 {
				vegetationArea++
				if after[y][x] <= 0 {
					loss[y][x] = 1
				}
			}
		}
	}

	if opts.Denoise {
		loss = Opening(loss, opts.KernelSize)
	}

	change := NewBand(height, width)
	lossArea := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if loss[y][x] > 0 {
				lossArea++
				change[y][x] = -1
			}
		}
	}

	stats := Statistics{
		TotalPixels:        height * width,
		LossPixels:         lossArea,
		StablePixels:       height*width - lossArea,
		VegetationArea:     vegetationArea,
		VegetationLossArea: lossArea,
	}
	if vegetationArea > 0 {
		stats.VegetationLossPercent = float64(lossArea) / float64(vegetationArea) * 100
	}
	fillPercentages(&stats)
	return change, stats, nil
}

// detectIndexChange computes a bounded relative change between two
// continuous rasters: (after-before)/(after+before+eps).
func detectIndexChange(before, after Band, opts ChangeOptions) (Band, Statistics, error) {
	height, width := before.Dims()

	change := NewBand(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			change[y][x] = clip((after[y][x]-before[y][x])/(after[y][x]+before[y][x]+relativeChangeEpsilon), -1, 1)
		}
	}

	if opts.SmoothSigma > 0 {
		change = GaussianSmooth(change, opts.SmoothSigma)
	}

	stats := Statistics{TotalPixels: height * width}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch {
			case change[y][x] < opts.LossThreshold:
				stats.LossPixels++
			case change[y][x] > opts.GainThreshold:
				stats.GainPixels++
			default:
				stats.StablePixels++
			}
		}
	}
	fillPercentages(&stats)
	return change, stats, nil
}

func fillPercentages(stats *Statistics) {
	if stats.TotalPixels == 0 {
		return
	}
	total := float64(stats.TotalPixels)
	stats.LossPercent = float64(stats.LossPixels) / total * 100
	stats.GainPercent = float64(stats.GainPixels) / total * 100
	stats.StablePercent = float64(stats.StablePixels) / total * 100
	stats.NetChangePercent = stats.GainPercent - stats.LossPercent
}
