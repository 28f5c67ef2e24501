package raster

// Forest density classes derived from NDVI. The thresholds are fixed:
// rendering palettes and report consumers rely on the exact class boundaries.
const (
	DensityNoVegetation = iota // < 0.1, bare soil or water
	DensitySparse              // [0.1, 0.3)
	DensityModerate            // [0.3, 0.5)
	DensityDense               // [0.5, 0.7)
	DensityVeryDense           // >= 0.7
)

// DensityClassCount is the number of ordinal density classes.
const DensityClassCount = 5

// DensityLabels name the classes for legends and reports, indexed by class.
var DensityLabels = [DensityClassCount]string{
	"No Forest", "Sparse", "Moderate", "Dense", "Very Dense",
}

// ClassifyDensity buckets a vegetation index into discrete density classes.
// It is total over all real inputs: values outside [-1,1] still classify
// through the same half-open boundaries.
func ClassifyDensity(ndvi Band) [][]int {
	height, width := ndvi.Dims()
	classes := make([][]int, height)
	for y := range classes {
		classes[y] = make([]int, width)
		for x := range classes[y] {
			classes[y][x] = classifyDensityValue(ndvi[y][x])
		}
	}
	return classes
}

func classifyDensityValue(v float64) int {
	switch {
	case v < 0.1:
		return DensityNoVegetation
	case v < 0.3:
		return DensitySparse
	case v < 0.5:
		return DensityModerate
	case v < 0.7:
		return DensityDense
	default:
		return DensityVeryDense
	}
}

// DensityCounts histograms a class raster for the report pie chart.
func DensityCounts(classes [][]int) [DensityClassCount]int {
	var counts [DensityClassCount]int
	for _, row := range classes {
		for _, class := range row {
			if class >= 0 && class < DensityClassCount {
				counts[class]++
			}
		}
	}
	return counts
}
