package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when two rasters must share dimensions and
	// the caller did not opt into cropping or resampling.
	ErrShapeMismatch = errors.New("raster shape mismatch")
	// ErrUnsupportedMode is returned when DetectChange is called with an
	// unknown algorithm mode. This is a programming error, not a data error.
	ErrUnsupportedMode = errors.New("unsupported change detection mode")
)

// Band is a single-channel raster grid, row-major, indexed [y][x].
type Band [][]float64

func NewBand(height, width int) Band {
	band := make(Band, height)
	for y := range band {
		band[y] = make([]float64, width)
	}
	return band
}

func (b Band) Dims() (height, width int) {
	if len(b) == 0 {
		return 0, 0
	}
	return len(b), len(b[0])
}

func (b Band) Clone() Band {
	height, width := b.Dims()
	out := NewBand(height, width)
	for y := range b {
		copy(out[y], b[y])
	}
	return out
}

// Raster is one or more equally sized bands. Single-band rasters hold one
// entry; true-color imagery holds red, green and blue in that order.
type Raster struct {
	Bands []Band
}

func (r Raster) Dims() (height, width int) {
	if len(r.Bands) == 0 {
		return 0, 0
	}
	return r.Bands[0].Dims()
}

// ResizePolicy controls how two rasters of different dimensions are
// reconciled before comparison. Reject is the default: silently cropping
// mismatched inputs hides registration bugs, so cropping and resampling are
// opt-in.
type ResizePolicy int

const (
	ResizeReject ResizePolicy = iota
	ResizeCrop
	ResizeNearest
)

// ResampleNearest resamples a band to the given dimensions using
// nearest-neighbor lookup.
func ResampleNearest(b Band, height, width int) Band {
	srcHeight, srcWidth := b.Dims()
	out := NewBand(height, width)
	if srcHeight == 0 || srcWidth == 0 {
		return out
	}
	for y := 0; y < height; y++ {
		srcY := y * srcHeight / height
		for x := 0; x < width; x++ {
			srcX := x * srcWidth / width
			out[y][x] = b[srcY][srcX]
		}
	}
	return out
}

// Crop returns the top-left height x width window of b.
func Crop(b Band, height, width int) Band {
	out := NewBand(height, width)
	for y := 0; y < height; y++ {
		copy(out[y], b[y][:width])
	}
	return out
}

// alignBands reconciles the dimensions of a before/after pair according to
// the policy. With ResizeNearest the after band is resampled onto the before
// grid, keeping the earlier acquisition as the reference frame.
func alignBands(before, after Band, policy ResizePolicy) (Band, Band, error) {
	bh, bw := before.Dims()
	ah, aw := after.Dims()
	if bh == ah && bw == aw {
		return before, after, nil
	}

	switch policy {
	case ResizeReject:
		return nil, nil, fmt.Errorf("%w: before %dx%d, after %dx%d", ErrShapeMismatch, bw, bh, aw, ah)
	case ResizeCrop:
		height := min(bh, ah)
		width := min(bw, aw)
		return Crop(before, height, width), Crop(after, height, width), nil
	case ResizeNearest:
		return before, ResampleNearest(after, bh, bw), nil
	default:
		return nil, nil, fmt.Errorf("unknown resize policy %d", policy)
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
