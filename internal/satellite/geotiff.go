package satellite

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/sierravision/sierravision-api/internal/raster"
)

// SceneBands holds the spectral bands read from a local GeoTIFF scene.
// Surface-reflectance products store red/NIR/blue/green in that band order
// (MODIS MOD09GA convention).
type SceneBands struct {
	Red   raster.Band
	NIR   raster.Band
	Blue  raster.Band
	Green raster.Band
}

// ReadSceneBands opens a GeoTIFF and reads its spectral bands into float
// grids. Scenes with fewer than four bands reuse the first band for the
// missing channels so grayscale products still analyze.
func ReadSceneBands(tiffPath string) (*SceneBands, error) {
	dataset, err := godal.Open(tiffPath, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open TIFF file: %v", err)
	}
	defer dataset.Close()

	bands := dataset.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("no raster bands in %s", tiffPath)
	}

	readBand := func(band godal.Band) (raster.Band, error) {
		xSize := band.Structure().SizeX
		ySize := band.Structure().SizeY
		data := make([]float64, xSize*ySize)
		if err := band.Read(0, 0, data, xSize, ySize); err != nil {
			return nil, err
		}
		grid := make(raster.Band, ySize)
		for i := range grid {
			grid[i] = data[i*xSize : (i+1)*xSize]
		}
		return grid, nil
	}

	bandAt := func(i int) godal.Band {
		if i < len(bands) {
			return bands[i]
		}
		return bands[0]
	}

	scene := &SceneBands{}
	if scene.Red, err = readBand(bandAt(0)); err != nil {
		return nil, fmt.Errorf("failed to read red band: %v", err)
	}
	if scene.NIR, err = readBand(bandAt(1)); err != nil {
		return nil, fmt.Errorf("failed to read NIR band: %v", err)
	}
	if scene.Blue, err = readBand(bandAt(2)); err != nil {
		return nil, fmt.Errorf("failed to read blue band: %v", err)
	}
	if scene.Green, err = readBand(bandAt(3)); err != nil {
		return nil, fmt.Errorf("failed to read green band: %v", err)
	}
	return scene, nil
}

// LatLonToXY converts geographic coordinates to pixel coordinates of a
// GeoTIFF scene.
func LatLonToXY(tiffPath string, lat, lon float64) (int, int, error) {
	dataset, err := godal.Open(tiffPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open TIFF file: %v", err)
	}
	defer dataset.Close()

	geoTransform, err := dataset.GeoTransform()
	if err != nil {
		return 0, 0, err
	}

	width := dataset.Structure().SizeX
	height := dataset.Structure().SizeY

	col := int(math.Floor((lon - geoTransform[0]) / geoTransform[1]))
	row := int(math.Floor((lat - geoTransform[3]) / geoTransform[5]))

	if col < 0 || col >= width || row < 0 || row >= height {
		return 0, 0, fmt.Errorf("coordinates (%f, %f) fall outside the scene", lat, lon)
	}
	return col, row, nil
}

// XYToLatLon converts pixel coordinates of a GeoTIFF scene to geographic
// coordinates at the pixel center.
func XYToLatLon(tiffPath string, x, y int) (float64, float64, error) {
	dataset, err := godal.Open(tiffPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open TIFF file: %v", err)
	}
	defer dataset.Close()

	geoTransform, err := dataset.GeoTransform()
	if err != nil {
		return 0, 0, err
	}

	lon := geoTransform[0] + (float64(x)+0.5)*geoTransform[1]
	lat := geoTransform[3] + (float64(y)+0.5)*geoTransform[5]
	return lat, lon, nil
}
