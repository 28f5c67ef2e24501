package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRange(t *testing.T) {
	band := Band{
		{10, 20, 30},
		{40, 50, 60},
	}

	norm := Normalize(band, DefaultLowPercentile, DefaultHighPercentile)

	for y := range norm {
		for x := range norm[y] {
			assert.GreaterOrEqual(t, norm[y][x], 0.0)
			assert.LessOrEqual(t, norm[y][x], 1.0)
		}
	}
	// Ordering survives normalization.
	assert.Less(t, norm[0][0], norm[1][2])
}

func TestNormalizeConstantBand(t *testing.T) {
	band := Band{
		{7, 7, 7},
		{7, 7, 7},
	}

	norm := Normalize(band, DefaultLowPercentile, DefaultHighPercentile)

	for y := range norm {
		for x := range norm[y] {
			assert.Equal(t, 0.0, norm[y][x])
		}
	}
}

func TestNormalizeClipsOutliers(t *testing.T) {
	// One extreme outlier among uniform values should not stretch the scale:
	// after percentile clipping the bulk of the data still spans [0,1].
	band := NewBand(10, 10)
	for y := range band {
		for x := range band[y] {
			band[y][x] = float64(y*10 + x)
		}
	}
	band[9][9] = 1e9

	norm := Normalize(band, 2, 98)

	assert.Equal(t, 1.0, norm[9][9])
	// Values near the high percentile already reach the top of the range.
	assert.Greater(t, norm[9][7], 0.95)
}

func TestNormalizeEmptyBand(t *testing.T) {
	norm := Normalize(Band{}, DefaultLowPercentile, DefaultHighPercentile)
	assert.Len(t, norm, 0)
}

func TestNormalizeRasterPerBand(t *testing.T) {
	r := Raster{Bands: []Band{
		{{0, 100}},
		{{5, 5}},
	}}

	norm := NormalizeRaster(r, 0, 100)

	assert.Equal(t, 0.0, norm.Bands[0][0][0])
	assert.Equal(t, 1.0, norm.Bands[0][0][1])
	// The constant band normalizes to zeros without touching the other band.
	assert.Equal(t, 0.0, norm.Bands[1][0][0])
	assert.Equal(t, 0.0, norm.Bands[1][0][1])
}

func TestPercentileInterpolation(t *testing.T) {
	band := Band{{0, 10, 20, 30, 40}}

	assert.Equal(t, 0.0, percentile(band, 0))
	assert.Equal(t, 40.0, percentile(band, 100))
	assert.Equal(t, 20.0, percentile(band, 50))
	assert.Equal(t, 10.0, percentile(band, 25))
}
