package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectChangeMaskSubtraction(t *testing.T) {
	// 10 vegetated pixels before, 2 of them cleared after.
	before := Band{
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
	}
	after := Band{
		{1, 1, 1, 1, 1},
		{1, 1, 1, 0, 0},
	}

	change, stats, err := DetectChange(before, after, ModeMaskSubtraction, DefaultChangeOptions())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalPixels)
	assert.Equal(t, 10, stats.VegetationArea)
	assert.Equal(t, 2, stats.VegetationLossArea)
	assert.Equal(t, 20.0, stats.VegetationLossPercent)
	assert.Equal(t, 2, stats.LossPixels)
	assert.Equal(t, 0, stats.GainPixels)
	assert.Equal(t, 8, stats.StablePixels)

	assert.Equal(t, -1.0, change[1][3])
	assert.Equal(t, -1.0, change[1][4])
	assert.Equal(t, 0.0, change[0][0])
}

func TestDetectChangeMaskSubtractionIgnoresGain(t *testing.T) {
	// Vegetation appearing after has no before-pixel to subtract from.
	before := Band{{0, 1}}
	after := Band{{1, 1}}

	change, stats, err := DetectChange(before, after, ModeMaskSubtraction, DefaultChangeOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.LossPixels)
	assert.Equal(t, 0, stats.GainPixels)
	assert.Equal(t, 0.0, change[0][0])
}

func TestDetectChangeMaskSubtractionZeroVegetation(t *testing.T) {
	before := Band{{0, 0}, {0, 0}}
	after := Band{{0, 0}, {0, 0}}

	_, stats, err := DetectChange(before, after, ModeMaskSubtraction, DefaultChangeOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.VegetationArea)
	assert.Equal(t, 0.0, stats.VegetationLossPercent)
}

func TestDetectChangeMaskSubtractionDenoise(t *testing.T) {
	// A single lost pixel in a large stable field is speckle: the opening
	// removes it when Denoise is on and keeps it when off.
	before := NewBand(20, 20)
	after := NewBand(20, 20)
	for y := range before {
		for x := range before[y] {
			before[y][x] = 1
			after[y][x] = 1
		}
	}
	after[10][10] = 0

	opts := DefaultChangeOptions()
	_, stats, err := DetectChange(before, after, ModeMaskSubtraction, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LossPixels)

	opts.Denoise = true
	_, stats, err = DetectChange(before, after, ModeMaskSubtraction, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.LossPixels)
}

func TestDetectChangeIndexDifference(t *testing.T) {
	before := Band{{0, 0}}
	after := Band{{1, 1}}

	change, stats, err := DetectChange(before, after, ModeIndexDifference, DefaultChangeOptions())
	require.NoError(t, err)

	// (1-0)/(1+0+eps) saturates at the +1 end of the ramp.
	assert.InDelta(t, 1.0, change[0][0], 1e-6)
	assert.InDelta(t, 1.0, change[0][1], 1e-6)
	assert.Equal(t, 2, stats.GainPixels)
	assert.Equal(t, 0, stats.LossPixels)
	assert.Equal(t, 100.0, stats.GainPercent)
	assert.Equal(t, 100.0, stats.NetChangePercent)
}

func TestDetectChangeIndexDifferenceLoss(t *testing.T) {
	before := Band{{0.8, 0.8, 0.8}}
	after := Band{{0.2, 0.8, 0.8}}

	change, stats, err := DetectChange(before, after, ModeIndexDifference, DefaultChangeOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.LossPixels)
	assert.Equal(t, 2, stats.StablePixels)
	assert.Less(t, change[0][0], 0.0)
}

func TestDetectChangeIdenticalInputsAreStable(t *testing.T) {
	band := Band{{0.2, 0.5}, {0.9, 0.1}}

	for _, mode := range []ChangeMode{ModeMaskSubtraction, ModeIndexDifference} {
		change, stats, err := DetectChange(band, band.Clone(), mode, DefaultChangeOptions())
		require.NoError(t, err, mode.String())

		assert.Equal(t, 0, stats.LossPixels, mode.String())
		assert.Equal(t, 0, stats.GainPixels, mode.String())
		assert.Equal(t, stats.TotalPixels, stats.StablePixels, mode.String())
		for y := range change {
			for x := range change[y] {
				assert.Equal(t, 0.0, change[y][x], mode.String())
			}
		}
	}
}

func TestDetectChangeShapeMismatchRejected(t *testing.T) {
	before := NewBand(4, 4)
	after := NewBand(3, 3)

	_, _, err := DetectChange(before, after, ModeMaskSubtraction, DefaultChangeOptions())
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDetectChangeShapeMismatchCrop(t *testing.T) {
	before := Band{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	}
	after := Band{
		{1, 0},
		{1, 1},
	}

	opts := DefaultChangeOptions()
	opts.Policy = ResizeCrop
	_, stats, err := DetectChange(before, after, ModeMaskSubtraction, opts)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalPixels)
	assert.Equal(t, 1, stats.LossPixels)
}

func TestDetectChangeShapeMismatchResample(t *testing.T) {
	before := NewBand(4, 4)
	after := NewBand(2, 2)

	opts := DefaultChangeOptions()
	opts.Policy = ResizeNearest
	change, stats, err := DetectChange(before, after, ModeMaskSubtraction, opts)
	require.NoError(t, err)

	// The after band is resampled onto the before grid.
	assert.Equal(t, 16, stats.TotalPixels)
	h, w := change.Dims()
	assert.Equal(t, 4, h)
	assert.Equal(t, 4, w)
}

func TestDetectChangeUnsupportedMode(t *testing.T) {
	band := NewBand(2, 2)
	_, _, err := DetectChange(band, band, ChangeMode(99), DefaultChangeOptions())
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}

func TestParseChangeMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ChangeMode
		wantErr  bool
	}{
		{input: "mask-subtraction", expected: ModeMaskSubtraction},
		{input: "mask", expected: ModeMaskSubtraction},
		{input: "index-difference", expected: ModeIndexDifference},
		{input: "index", expected: ModeIndexDifference},
		{input: "spectral", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		mode, err := ParseChangeMode(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedMode, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, mode, tt.input)
	}
}
