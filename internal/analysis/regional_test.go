package analysis

import (
	"testing"

	"github.com/sierravision/sierravision-api/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionalBreakdown(t *testing.T) {
	// 2x2 grid over a 4x4 scene. The bottom-right cell halves in intensity,
	// everything else is unchanged.
	before := raster.Band{
		{10, 10, 10, 10},
		{10, 10, 10, 10},
		{10, 10, 20, 20},
		{10, 10, 20, 20},
	}
	after := before.Clone()
	after[2][2], after[2][3], after[3][2], after[3][3] = 10, 10, 10, 10

	cells := RegionalBreakdown(before, after, 2, 2)
	require.Len(t, cells, 4)

	// Cells come back in row-major order.
	assert.Equal(t, CellChange{Row: 0, Col: 0, ChangePercent: 0}, cells[0])
	assert.Equal(t, CellChange{Row: 0, Col: 1, ChangePercent: 0}, cells[1])
	assert.Equal(t, CellChange{Row: 1, Col: 0, ChangePercent: 0}, cells[2])
	assert.Equal(t, 1, cells[3].Row)
	assert.Equal(t, 1, cells[3].Col)
	assert.InDelta(t, -50.0, cells[3].ChangePercent, 1e-9)
}

func TestRegionalBreakdownZeroBeforeMean(t *testing.T) {
	before := raster.NewBand(2, 2)
	after := raster.Band{{5, 5}, {5, 5}}

	cells := RegionalBreakdown(before, after, 1, 1)
	require.Len(t, cells, 1)
	assert.Equal(t, 0.0, cells[0].ChangePercent, "undefined baseline reads as no change")
}

func TestRegionalBreakdownEmptyInput(t *testing.T) {
	assert.Nil(t, RegionalBreakdown(raster.Band{}, raster.Band{}, 2, 2))
	assert.Nil(t, RegionalBreakdown(raster.NewBand(2, 2), raster.NewBand(2, 2), 0, 2))
}
