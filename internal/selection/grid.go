package selection

// Grid records which point index was drawn into each cell of a character
// plot, so a click resolves to exactly what the viewer saw there.
type Grid struct {
	cols, rows int
	cells      []int
}

// NewGrid returns an empty grid. Non-positive dimensions give a grid with
// no cells.
func NewGrid(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	g := &Grid{cols: cols, rows: rows, cells: make([]int, cols*rows)}
	g.Reset()
	return g
}

// Size returns the grid dimensions.
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// Reset empties every cell.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = -1
	}
}

// Draw records index at (col, row). Later draws overwrite earlier ones.
// Out-of-bounds cells are ignored.
func (g *Grid) Draw(col, row, index int) {
	if !g.inBounds(col, row) {
		return
	}
	g.cells[row*g.cols+col] = index
}

// IndexAt returns the point index drawn at (col, row), or -1.
func (g *Grid) IndexAt(col, row int) int {
	if !g.inBounds(col, row) {
		return -1
	}
	return g.cells[row*g.cols+col]
}

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}
