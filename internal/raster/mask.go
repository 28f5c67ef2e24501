package raster

import "fmt"

// MaskOptions selects the HSV window treated as vegetation. Hue uses the
// 0-180 scale, saturation and value the 0-255 scale, matching the ranges the
// imagery decoder produces.
type MaskOptions struct {
	HueMin float64
	HueMax float64
	SatMin float64
	ValMin float64
}

// DefaultMaskOptions is the green window tuned for tropical forest cover in
// true-color satellite imagery.
func DefaultMaskOptions() MaskOptions {
	return MaskOptions{HueMin: 35, HueMax: 90, SatMin: 40, ValMin: 20}
}

// VegetationMask converts a true-color raster to HSV and thresholds it into
// a binary vegetation mask (1 = vegetation). It approximates a spectral
// vegetation index when only RGB imagery is available.
func VegetationMask(rgb Raster, opts MaskOptions) (Band, error) {
	if len(rgb.Bands) != 3 {
		return nil, fmt.Errorf("vegetation mask needs a 3-band RGB raster, got %d bands", len(rgb.Bands))
	}
	red, green, blue := rgb.Bands[0], rgb.Bands[1], rgb.Bands[2]
	rh, rw := red.Dims()
	gh, gw := green.Dims()
	bh, bw := blue.Dims()
	if gh != rh || gw != rw || bh != rh || bw != rw {
		return nil, fmt.Errorf("%w: RGB channels differ in size", ErrShapeMismatch)
	}

	mask := NewBand(rh, rw)
	for y := 0; y < rh; y++ {
		for x := 0; x < rw; x++ {
			h, s, v := RGBToHSV(red[y][x], green[y][x], blue[y][x])
			if h >= opts.HueMin && h <= opts.HueMax && s >= opts.SatMin && v >= opts.ValMin {
				mask[y][x] = 1
			}
		}
	}
	return mask, nil
}

// RGBToHSV converts 0-255 channel values to hue on the 0-180 scale and
// saturation/value on the 0-255 scale.
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	maxC := r
	if g > maxC {
		maxC = g
	}
	if b > maxC {
		maxC = b
	}
	minC := r
	if g < minC {
		minC = g
	}
	if b < minC {
		minC = b
	}

	v = maxC
	delta := maxC - minC
	if maxC > 0 {
		s = delta / maxC * 255
	}
	if delta == 0 {
		return 0, s, v
	}

	switch maxC {
	case r:
		h = 60 * (g - b) / delta
	case g:
		h = 120 + 60*(b-r)/delta
	default:
		h = 240 + 60*(r-g)/delta
	}
	if h < 0 {
		h += 360
	}
	return h / 2, s, v
}

// Opening applies a morphological opening (erosion then dilation) with a
// k x k neighborhood. It removes isolated set pixels smaller than the
// neighborhood, the usual false positives in thresholded masks.
func Opening(mask Band, k int) Band {
	if k < 2 {
		return mask.Clone()
	}
	return dilate(erode(mask, k), k)
}

func erode(mask Band, k int) Band {
	height, width := mask.Dims()
	out := NewBand(height, width)
	radius := k / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y][x] <= 0 {
				continue
			}
			keep := true
			for dy := -radius; dy <= radius && keep; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= height || nx < 0 || nx >= width {
						// Samples outside the frame are ignored.
						continue
					}
					if mask[ny][nx] <= 0 {
						keep = false
						break
					}
				}
			}
			if keep {
				out[y][x] = 1
			}
		}
	}
	return out
}

func dilate(mask Band, k int) Band {
	height, width := mask.Dims()
	out := NewBand(height, width)
	radius := k / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			set := false
			for dy := -radius; dy <= radius && !set; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= height || nx < 0 || nx >= width {
						continue
					}
					if mask[ny][nx] > 0 {
						set = true
						break
					}
				}
			}
			if set {
				out[y][x] = 1
			}
		}
	}
	return out
}
