package tui

import (
	"math"
	"strings"

	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/selection"
	"github.com/perspectr/perspectr/internal/viewport"
)

const (
	otherGlyph = '*'
	selfGlyph  = '@'
)

// Frame is one rendered plot plus the cell-to-index map of what was drawn.
type Frame struct {
	Lines []string
	Grid  *selection.Grid
}

// CellFor maps a data coordinate to a plot cell. ok is false when the point
// lies outside rect or the plot has no cells.
func CellFor(rect viewport.Rect, cols, rows int, x, y float64) (col, row int, ok bool) {
	if cols <= 0 || rows <= 0 || !rect.Contains(x, y) {
		return 0, 0, false
	}
	w, h := rect.Span()
	col = int(math.Round((x - rect.XMin) / w * float64(cols-1)))
	row = int(math.Round((rect.YMax - y) / h * float64(rows-1)))
	return col, row, true
}

// RenderPlot draws nodes into a cols x rows character plot. Nodes are drawn
// in index order, so a later node sharing a cell covers an earlier one.
func RenderPlot(nodes []network.Node, markers []selection.Marker, rect viewport.Rect, selectedID string, cols, rows int) *Frame {
	grid := selection.NewGrid(cols, rows)
	cols, rows = grid.Size()

	for i, n := range nodes {
		if col, row, ok := CellFor(rect, cols, rows, n.X, n.Y); ok {
			grid.Draw(col, row, i)
		}
	}

	lines := make([]string, rows)
	var b strings.Builder
	for row := 0; row < rows; row++ {
		b.Reset()
		for col := 0; col < cols; col++ {
			idx := grid.IndexAt(col, row)
			if idx < 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(glyph(nodes[idx], markers, idx, selectedID))
		}
		lines[row] = b.String()
	}

	return &Frame{Lines: lines, Grid: grid}
}

func glyph(n network.Node, markers []selection.Marker, idx int, selectedID string) string {
	self := idx < len(markers) && markers[idx].Self
	g := string(otherGlyph)
	if self {
		g = string(selfGlyph)
	}
	switch {
	case selectedID != "" && n.ID == selectedID:
		return selectedStyle.Render(g)
	case self:
		return selfStyle.Render(g)
	default:
		return otherStyle.Render(g)
	}
}
