package raster

import "math"

// GaussianSmooth applies a separable Gaussian blur with the given sigma.
// A non-positive sigma returns a copy of the input unchanged, so callers can
// disable smoothing without a separate code path.
func GaussianSmooth(b Band, sigma float64) Band {
	if sigma <= 0 {
		return b.Clone()
	}
	height, width := b.Dims()
	if height == 0 || width == 0 {
		return b.Clone()
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	// Horizontal pass, then vertical. Weights falling outside the frame are
	// renormalized so edges keep their energy.
	tmp := NewBand(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum, weight float64
			for i, w := range kernel {
				nx := x + i - radius
				if nx < 0 || nx >= width {
					continue
				}
				sum += b[y][nx] * w
				weight += w
			}
			tmp[y][x] = sum / weight
		}
	}

	out := NewBand(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum, weight float64
			for i, w := range kernel {
				ny := y + i - radius
				if ny < 0 || ny >= height {
					continue
				}
				sum += tmp[ny][x] * w
				weight += w
			}
			out[y][x] = sum / weight
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var total float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		total += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}
