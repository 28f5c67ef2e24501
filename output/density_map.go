package output

import (
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/raster"
)

const legendHeight = 24

// CreateDensityMapImage renders a density class raster with the fixed
// five-class palette and a legend strip along the bottom.
func CreateDensityMapImage(classes [][]int, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".png") {
		outputPath += ".png"
	}

	height := len(classes)
	if height == 0 || len(classes[0]) == 0 {
		return fmt.Errorf("empty density raster")
	}
	width := len(classes[0])

	dc := gg.NewContext(width, height+legendHeight)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			class := classes[y][x]
			if class < 0 || class >= raster.DensityClassCount {
				class = raster.DensityNoVegetation
			}
			c := properties.DensityColors[class]
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.SetPixel(x, y)
		}
	}

	// Legend: one swatch per class with its label.
	swatchWidth := float64(width) / raster.DensityClassCount
	for class := 0; class < raster.DensityClassCount; class++ {
		c := properties.DensityColors[class]
		x := float64(class) * swatchWidth
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(x, float64(height), swatchWidth, legendHeight)
		dc.Fill()

		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(raster.DensityLabels[class], x+swatchWidth/2, float64(height)+legendHeight/2, 0.5, 0.5)
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save density map: %v", err)
	}
	return nil
}
