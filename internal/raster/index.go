package raster

import "fmt"

// NDVI computes the Normalized Difference Vegetation Index
// (nir-red)/(nir+red) for a pair of spectral bands. Pixels where the
// denominator is zero yield 0 instead of NaN, and the result is clipped to
// the valid [-1,1] range to guard against noisy inputs.
func NDVI(red, nir Band) (Band, error) {
	rh, rw := red.Dims()
	nh, nw := nir.Dims()
	if rh != nh || rw != nw {
		return nil, fmt.Errorf("%w: red %dx%d, nir %dx%d", ErrShapeMismatch, rw, rh, nw, nh)
	}

	out := normalizedDifference(nir, red)
	for y := range out {
		for x := range out[y] {
			out[y][x] = clip(out[y][x], -1, 1)
		}
	}
	return out, nil
}

// normalizedDifference computes (a-b)/(a+b) per pixel with a guarded
// denominator. Bands must already share dimensions.
func normalizedDifference(a, b Band) Band {
	height, width := a.Dims()
	out := NewBand(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			denominator := a[y][x] + b[y][x]
			if denominator != 0 {
				out[y][x] = (a[y][x] - b[y][x]) / denominator
			}
		}
	}
	return out
}
