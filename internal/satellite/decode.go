package satellite

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/sierravision/sierravision-api/internal/raster"
)

// DecodeRGB decodes PNG or JPEG bytes into a three-band raster with 0-255
// channel values, optionally resampling to the given dimensions first.
// Width/height of 0 keeps the native resolution.
func DecodeRGB(data []byte, width, height int) (raster.Raster, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return raster.Raster{}, errors.Wrap(err, "decode image")
	}

	if width > 0 && height > 0 {
		bounds := img.Bounds()
		if bounds.Dx() != width || bounds.Dy() != height {
			img = resize.Resize(uint(width), uint(height), img, resize.NearestNeighbor)
		}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	red := raster.NewBand(h, w)
	green := raster.NewBand(h, w)
	blue := raster.NewBand(h, w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			red[y][x] = float64(r >> 8)
			green[y][x] = float64(g >> 8)
			blue[y][x] = float64(b >> 8)
		}
	}
	return raster.Raster{Bands: []raster.Band{red, green, blue}}, nil
}

// Grayscale collapses an RGB raster to channel-mean intensity, the input the
// index-difference detector expects before normalization.
func Grayscale(rgb raster.Raster) raster.Band {
	if len(rgb.Bands) == 1 {
		return rgb.Bands[0].Clone()
	}
	height, width := rgb.Dims()
	out := raster.NewBand(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for _, band := range rgb.Bands {
				sum += band[y][x]
			}
			out[y][x] = sum / float64(len(rgb.Bands))
		}
	}
	return out
}
