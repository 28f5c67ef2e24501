package output

import (
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/sierravision/sierravision-api/internal/raster"
)

// CreateChangeMapImage renders a signed change map on a red-yellow-green
// ramp: -1 (major loss) is red, 0 is yellow, +1 (major growth) is green.
func CreateChangeMapImage(change raster.Band, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".png") {
		outputPath += ".png"
	}

	height, width := change.Dims()
	if height == 0 || width == 0 {
		return fmt.Errorf("empty change map")
	}

	dc := gg.NewContext(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := changeRamp(change[y][x])
			dc.SetRGB(r, g, b)
			dc.SetPixel(x, y)
		}
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save change map: %v", err)
	}
	return nil
}

// changeRamp maps [-1,1] onto red-yellow-green.
func changeRamp(v float64) (r, g, b float64) {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	if v < 0 {
		// red to yellow
		return 1, 1 + v, 0
	}
	// yellow to green
	return 1 - v, 1, 0
}

// CreateComparisonImage renders the two grayscale scenes side by side with a
// divider and year labels, the before scene on the left.
func CreateComparisonImage(before, after raster.Band, beforeLabel, afterLabel, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".png") {
		outputPath += ".png"
	}

	bh, bw := before.Dims()
	ah, aw := after.Dims()
	if bh == 0 || ah == 0 {
		return fmt.Errorf("empty comparison input")
	}

	height := max(bh, ah)
	dc := gg.NewContext(bw+aw, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	drawGray := func(band raster.Band, offsetX int) {
		h, w := band.Dims()
		norm := raster.Normalize(band, raster.DefaultLowPercentile, raster.DefaultHighPercentile)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dc.SetRGB(norm[y][x], norm[y][x], norm[y][x])
				dc.SetPixel(offsetX+x, y)
			}
		}
	}
	drawGray(before, 0)
	drawGray(after, bw)

	// Divider between the two acquisitions.
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(3)
	dc.DrawLine(float64(bw), 0, float64(bw), float64(height))
	dc.Stroke()

	dc.DrawStringAnchored(beforeLabel, float64(bw)/2, 16, 0.5, 0.5)
	dc.DrawStringAnchored(afterLabel, float64(bw)+float64(aw)/2, 16, 0.5, 0.5)

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save comparison image: %v", err)
	}
	return nil
}
