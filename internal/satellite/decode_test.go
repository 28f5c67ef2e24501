package satellite

import (
	"image/color"
	"testing"

	"github.com/sierravision/sierravision-api/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRGB(t *testing.T) {
	data := pngBytes(t, 2, 2, color.RGBA{200, 150, 100, 255})

	rast, err := DecodeRGB(data, 0, 0)
	require.NoError(t, err)

	require.Len(t, rast.Bands, 3)
	assert.Equal(t, 200.0, rast.Bands[0][0][0])
	assert.Equal(t, 150.0, rast.Bands[1][0][0])
	assert.Equal(t, 100.0, rast.Bands[2][0][0])
}

func TestDecodeRGBResamples(t *testing.T) {
	data := pngBytes(t, 2, 2, color.RGBA{10, 10, 10, 255})

	rast, err := DecodeRGB(data, 8, 8)
	require.NoError(t, err)

	h, w := rast.Dims()
	assert.Equal(t, 8, h)
	assert.Equal(t, 8, w)
}

func TestDecodeRGBRejectsGarbage(t *testing.T) {
	_, err := DecodeRGB([]byte("not an image"), 0, 0)
	assert.Error(t, err)
}

func TestGrayscale(t *testing.T) {
	rgb := raster.Raster{Bands: []raster.Band{
		{{30}},
		{{60}},
		{{90}},
	}}

	gray := Grayscale(rgb)
	assert.Equal(t, 60.0, gray[0][0])
}

func TestGrayscaleSingleBandPassthrough(t *testing.T) {
	single := raster.Raster{Bands: []raster.Band{{{42}}}}

	gray := Grayscale(single)
	assert.Equal(t, 42.0, gray[0][0])
}
