package matrix

import "fmt"

// cell addresses one (row, col) position.
type cell struct {
	row, col int
}

// Grid is a sparse boolean matrix with fixed capacity.
// Only true cells are stored; everything else reads as false.
// Capacity grows by allocating a larger grid and copying into it.
type Grid struct {
	rows, cols int
	rowGrowth  int
	colGrowth  int
	cells      map[cell]struct{}
}

// New creates a grid with the given capacity and growth factors.
// Factors below 2 are raised to 2 so growth always makes progress.
func New(rows, cols, rowGrowth, colGrowth int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if rowGrowth < 2 {
		rowGrowth = 2
	}
	if colGrowth < 2 {
		colGrowth = 2
	}
	return &Grid{
		rows:      rows,
		cols:      cols,
		rowGrowth: rowGrowth,
		colGrowth: colGrowth,
		cells:     make(map[cell]struct{}),
	}
}

// Rows returns the current row capacity.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the current column capacity.
func (g *Grid) Cols() int { return g.cols }

// Len returns the number of true cells.
func (g *Grid) Len() int { return len(g.cells) }

// Get reports the value at (row, col). Out-of-range reads are false.
func (g *Grid) Get(row, col int) bool {
	if row < 0 || col < 0 || row >= g.rows || col >= g.cols {
		return false
	}
	_, ok := g.cells[cell{row, col}]
	return ok
}

// Set stores value at (row, col). Writing outside capacity panics;
// callers must GrowTo first.
func (g *Grid) Set(row, col int, value bool) {
	if row < 0 || col < 0 || row >= g.rows || col >= g.cols {
		panic(fmt.Sprintf("matrix: set (%d,%d) outside %dx%d grid", row, col, g.rows, g.cols))
	}
	if value {
		g.cells[cell{row, col}] = struct{}{}
		return
	}
	delete(g.cells, cell{row, col})
}

// GrowTo makes sure the grid holds at least minRows x minCols.
// Each growth step multiplies both dimensions by their factors, so a
// grid that is only short on columns still gains rows.
// Reports whether a reallocation happened.
func (g *Grid) GrowTo(minRows, minCols int) bool {
	if minRows <= g.rows && minCols <= g.cols {
		return false
	}

	rows, cols := g.rows, g.cols
	for minRows > rows || minCols > cols {
		rows *= g.rowGrowth
		cols *= g.colGrowth
	}

	next := make(map[cell]struct{}, len(g.cells))
	for c := range g.cells {
		next[c] = struct{}{}
	}

	g.cells = next
	g.rows = rows
	g.cols = cols
	return true
}
