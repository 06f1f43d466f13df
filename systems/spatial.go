// Package systems provides the physics pieces of the SPH solver: the spatial
// grid, kernels, force terms and boundary handling.
package systems

import (
	"math"

	"github.com/pthm-cable/fluid/components"
)

// NeighborCount is the number of cells in a 3x3 neighbour block.
const NeighborCount = 9

// CellCoord is an integer grid coordinate. The zero value is invalid; valid
// coordinates only come from Grid.PositionToCell and Grid.NeighborCells.
type CellCoord struct {
	X, Y  int
	valid bool
}

// InvalidCell is the coordinate for positions outside the grid.
var InvalidCell = CellCoord{}

// Valid reports whether c lies inside the grid it was derived from.
func (c CellCoord) Valid() bool { return c.valid }

// CellIndex is a flattened cell slot. It stores index+1 so the zero value is
// the invalid cell and can never be used as a bucket index by accident.
type CellIndex struct {
	slot int32
}

// NoCell is the invalid cell index.
var NoCell = CellIndex{}

// Get returns the bucket index and whether it is valid.
func (c CellIndex) Get() (int, bool) {
	if c.slot == 0 {
		return 0, false
	}
	return int(c.slot - 1), true
}

// Valid reports whether c addresses a bucket.
func (c CellIndex) Valid() bool { return c.slot != 0 }

// neighborOffsets is the 3x3 raster order with y up: bottom row first.
var neighborOffsets = [NeighborCount][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Grid partitions the bounding box into square cells of the smoothing radius.
// It is rebuilt from scratch every tick.
type Grid struct {
	cellSize float32
	cols     int
	rows     int
	halfCols int
	halfRows int
	cells    [][]int32 // flat grid of particle index lists
}

// NewGrid creates a grid covering [-half.X, half.X] x [-half.Y, half.Y].
func NewGrid(half components.Vec2, cellSize float32) *Grid {
	halfCols := int(math.Ceil(float64(half.X / cellSize)))
	halfRows := int(math.Ceil(float64(half.Y / cellSize)))
	cols := 2*halfCols + 1
	rows := 2*halfRows + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8) // pre-allocate small capacity
	}

	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		halfCols: halfCols,
		halfRows: halfRows,
		cells:    cells,
	}
}

// Cols returns the grid width in cells.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height in cells.
func (g *Grid) Rows() int { return g.rows }

// NumCells returns the number of buckets.
func (g *Grid) NumCells() int { return len(g.cells) }

// CellSize returns the cell edge length.
func (g *Grid) CellSize() float32 { return g.cellSize }

// PositionToCell maps a world position to its cell. Cells are floor-aligned:
// cell column c covers x in [(c-halfCols)*size, (c-halfCols+1)*size), so every
// cell has the same width, including the ones either side of the origin.
// Positions outside the grid and non-finite positions map to InvalidCell.
func (g *Grid) PositionToCell(pos components.Vec2) CellCoord {
	fx := math.Floor(float64(pos.X/g.cellSize)) + float64(g.halfCols)
	fy := math.Floor(float64(pos.Y/g.cellSize)) + float64(g.halfRows)
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return InvalidCell
	}
	if fx < 0 || fx >= float64(g.cols) || fy < 0 || fy >= float64(g.rows) {
		return InvalidCell
	}
	return CellCoord{X: int(fx), Y: int(fy), valid: true}
}

// CellToIndex flattens a coordinate row-major. InvalidCell maps to NoCell.
func (g *Grid) CellToIndex(c CellCoord) CellIndex {
	if !c.valid {
		return NoCell
	}
	return CellIndex{slot: int32(c.Y*g.cols+c.X) + 1}
}

// NeighborCells returns the 3x3 block around c, including c itself. Members
// outside the grid are InvalidCell.
func (g *Grid) NeighborCells(c CellCoord) [NeighborCount]CellCoord {
	var out [NeighborCount]CellCoord
	if !c.valid {
		return out
	}
	for i, off := range neighborOffsets {
		x, y := c.X+off[0], c.Y+off[1]
		if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
			continue
		}
		out[i] = CellCoord{X: x, Y: y, valid: true}
	}
	return out
}

// CellsToIndexes maps each coordinate to its index, keeping invalid entries in
// place so the per-particle stride stays NeighborCount.
func (g *Grid) CellsToIndexes(cells [NeighborCount]CellCoord) [NeighborCount]CellIndex {
	var out [NeighborCount]CellIndex
	for i, c := range cells {
		out[i] = g.CellToIndex(c)
	}
	return out
}

// NeighborIndexes is PositionToCell, NeighborCells and CellsToIndexes in one.
func (g *Grid) NeighborIndexes(pos components.Vec2) [NeighborCount]CellIndex {
	return g.CellsToIndexes(g.NeighborCells(g.PositionToCell(pos)))
}

// Clear removes all particles from the grid.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert appends particle index i to cell c. Invalid cells are skipped.
// Insert is not safe for concurrent use.
func (g *Grid) Insert(i int, c CellIndex) bool {
	idx, ok := c.Get()
	if !ok || idx >= len(g.cells) {
		return false
	}
	g.cells[idx] = append(g.cells[idx], int32(i))
	return true
}

// Build clears the grid and inserts every position by its slice index.
// Returns the number of positions that fell outside the grid.
func (g *Grid) Build(positions []components.Vec2) int {
	g.Clear()
	skipped := 0
	for i, pos := range positions {
		if !g.Insert(i, g.CellToIndex(g.PositionToCell(pos))) {
			skipped++
		}
	}
	return skipped
}

// Cell returns the particle indexes in cell c, or nil for an invalid cell.
func (g *Grid) Cell(c CellIndex) []int32 {
	idx, ok := c.Get()
	if !ok || idx >= len(g.cells) {
		return nil
	}
	return g.cells[idx]
}
