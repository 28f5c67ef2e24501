package raster

import "sort"

// DefaultClipPercentiles are the percentile bounds used to discard sensor
// outliers before rescaling.
const (
	DefaultLowPercentile  = 2
	DefaultHighPercentile = 98
)

// Normalize clips a band to the given percentile range and linearly rescales
// it to [0,1]. A constant band has no usable range and normalizes to all
// zeros rather than dividing by zero.
func Normalize(b Band, lowPct, highPct float64) Band {
	height, width := b.Dims()
	out := NewBand(height, width)
	if height == 0 || width == 0 {
		return out
	}

	lo := percentile(b, lowPct)
	hi := percentile(b, highPct)

	minV, maxV := hi, lo
	for y := range b {
		for x := range b[y] {
			v := clip(b[y][x], lo, hi)
			out[y][x] = v
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
	}

	if maxV == minV {
		// Degenerate input: leave the band all zero.
		for y := range out {
			for x := range out[y] {
				out[y][x] = 0
			}
		}
		return out
	}

	scale := maxV - minV
	for y := range out {
		for x := range out[y] {
			out[y][x] = (out[y][x] - minV) / scale
		}
	}
	return out
}

// NormalizeRaster normalizes each band independently, so one saturated
// channel cannot flatten the others.
func NormalizeRaster(r Raster, lowPct, highPct float64) Raster {
	out := Raster{Bands: make([]Band, len(r.Bands))}
	for i, band := range r.Bands {
		out.Bands[i] = Normalize(band, lowPct, highPct)
	}
	return out
}

// percentile returns the pct-th percentile of the band values using linear
// interpolation between the two nearest ranks.
func percentile(b Band, pct float64) float64 {
	height, width := b.Dims()
	values := make([]float64, 0, height*width)
	for y := range b {
		values = append(values, b[y]...)
	}
	sort.Float64s(values)

	if pct <= 0 {
		return values[0]
	}
	if pct >= 100 {
		return values[len(values)-1]
	}

	rank := pct / 100 * float64(len(values)-1)
	lower := int(rank)
	frac := rank - float64(lower)
	if lower+1 >= len(values) {
		return values[lower]
	}
	return values[lower] + frac*(values[lower+1]-values[lower])
}
