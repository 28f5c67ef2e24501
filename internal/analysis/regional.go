package analysis

import (
	"runtime"

	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
	"github.com/sierravision/sierravision-api/internal/raster"
)

// CellChange is the mean intensity change of one grid cell, as a percentage
// of the cell's before-value.
type CellChange struct {
	Row           int     `csv:"row" json:"row"`
	Col           int     `csv:"col" json:"col"`
	ChangePercent float64 `csv:"change_percent" json:"change_percent"`
}

// RegionalBreakdown divides the scene into a rows x cols grid and computes
// the percentage change of mean intensity per cell, west-to-east then
// north-to-south. Cells are independent, so they are computed on a worker
// pool.
func RegionalBreakdown(before, after raster.Band, rows, cols int) []CellChange {
	height, width := before.Dims()
	if height == 0 || width == 0 || rows <= 0 || cols <= 0 {
		return nil
	}

	cells := make([]CellChange, rows*cols)
	pool := workerpool.New(runtime.NumCPU())
	progressBar := progressbar.Default(int64(rows*cols), "Regional analysis")

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			i, j := i, j
			pool.Submit(func() {
				defer progressBar.Add(1)

				rowStart, rowEnd := i*height/rows, (i+1)*height/rows
				colStart, colEnd := j*width/cols, (j+1)*width/cols

				beforeMean := cellMean(before, rowStart, rowEnd, colStart, colEnd)
				afterMean := cellMean(after, rowStart, rowEnd, colStart, colEnd)

				change := 0.0
				if beforeMean > 0 {
					change = (afterMean - beforeMean) / beforeMean * 100
				}
				cells[i*cols+j] = CellChange{Row: i, Col: j, ChangePercent: change}
			})
		}
	}
	pool.StopWait()
	progressBar.Finish()

	return cells
}

func cellMean(b raster.Band, rowStart, rowEnd, colStart, colEnd int) float64 {
	count := (rowEnd - rowStart) * (colEnd - colStart)
	if count <= 0 {
		return 0
	}
	var sum float64
	for y := rowStart; y < rowEnd; y++ {
		for x := colStart; x < colEnd; x++ {
			sum += b[y][x]
		}
	}
	return sum / float64(count)
}
