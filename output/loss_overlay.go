package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"github.com/sierravision/sierravision-api/internal/raster"
)

// CreateLossOverlay renders the after scene with vegetation-loss pixels
// blended half-transparent red, the classic deforestation highlight.
func CreateLossOverlay(after raster.Raster, lossMask raster.Band, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".png") {
		outputPath += ".png"
	}
	if len(after.Bands) < 3 {
		return fmt.Errorf("loss overlay needs a 3-band RGB raster, got %d bands", len(after.Bands))
	}

	height, width := after.Dims()
	mh, mw := lossMask.Dims()
	if mh != height || mw != width {
		return fmt.Errorf("%w: scene %dx%d, loss mask %dx%d", raster.ErrShapeMismatch, width, height, mw, mh)
	}

	red, green, blue := after.Bands[0], after.Bands[1], after.Bands[2]
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := red[y][x], green[y][x], blue[y][x]
			if lossMask[y][x] > 0 {
				r = r*0.5 + 255*0.5
				g *= 0.5
				b *= 0.5
			}
			img.Set(x, y, color.RGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: 255})
		}
	}

	return savePNG(img, outputPath)
}

func savePNG(img image.Image, outputPath string) error {
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create PNG file: %v", err)
	}
	defer outputFile.Close()

	if err := png.Encode(outputFile, img); err != nil {
		return fmt.Errorf("failed to encode PNG file: %v", err)
	}
	return nil
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
