package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-noteroll/display"
)

// Viewport maps terminal cells onto surface pixels. Cell (0,0) has its
// top-left corner at (OriginX, OriginY).
type Viewport struct {
	OriginX    float64
	OriginY    float64
	CellWidth  float64
	CellHeight float64
	Cols       int
	Rows       int
}

// Pixel returns the surface position of the top-left corner of a cell
func (v Viewport) Pixel(col, row int) (x, y float64) {
	return v.OriginX + float64(col)*v.CellWidth, v.OriginY + float64(row)*v.CellHeight
}

// Cell returns the cell containing pixel (x, y). It may lie outside the viewport.
func (v Viewport) Cell(x, y float64) (col, row int) {
	col = int(math.Floor((x - v.OriginX) / v.CellWidth))
	row = int(math.Floor((y - v.OriginY) / v.CellHeight))
	return col, row
}

// Contains reports whether a cell is inside the viewport
func (v Viewport) Contains(col, row int) bool {
	return col >= 0 && col < v.Cols && row >= 0 && row < v.Rows
}

// Span returns the half-open cell ranges a box covers, clipped to the viewport.
// A box narrower than a cell still covers the cell it starts in.
func (v Viewport) Span(r display.Rect) (c0, c1, r0, r1 int) {
	c0 = int(math.Floor((r.Left - v.OriginX) / v.CellWidth))
	c1 = int(math.Ceil((r.Left + r.Width - v.OriginX) / v.CellWidth))
	r0 = int(math.Floor((r.Top - v.OriginY) / v.CellHeight))
	r1 = int(math.Ceil((r.Top + r.Height - v.OriginY) / v.CellHeight))
	if c1 <= c0 {
		c1 = c0 + 1
	}
	if r1 <= r0 {
		r1 = r0 + 1
	}
	return max(c0, 0), min(c1, v.Cols), max(r0, 0), min(r1, v.Rows)
}

// RollBlock is one rectangle to rasterize
type RollBlock struct {
	Rect  display.Rect
	Fill  string
	Glyph rune
}

// Roll rasterizes blocks onto a character grid. Later blocks win on overlap.
type Roll struct {
	View   Viewport
	Blocks []RollBlock

	Empty  rune
	Line   rune
	IsLine func(col int) bool    // draw Line instead of Empty in this column
	Label  func(row int) string // row gutter, fixed width
	Muted  lipgloss.Color
}

// Grid returns the block index covering each cell, -1 for empty
func (r Roll) Grid() [][]int {
	grid := make([][]int, r.View.Rows)
	for row := range grid {
		grid[row] = make([]int, r.View.Cols)
		for col := range grid[row] {
			grid[row][col] = -1
		}
	}
	for i, b := range r.Blocks {
		c0, c1, r0, r1 := r.View.Span(b.Rect)
		for row := r0; row < r1; row++ {
			for col := c0; col < c1; col++ {
				grid[row][col] = i
			}
		}
	}
	return grid
}

func (r Roll) Render() string {
	grid := r.Grid()
	dim := lipgloss.NewStyle().Foreground(r.Muted)

	lines := make([]string, 0, len(grid))
	for row, cells := range grid {
		var line strings.Builder
		if r.Label != nil {
			line.WriteString(dim.Render(r.Label(row)))
		}
		for col, idx := range cells {
			if idx < 0 {
				ch := r.Empty
				if r.IsLine != nil && r.IsLine(col) {
					ch = r.Line
				}
				line.WriteString(dim.Render(string(ch)))
				continue
			}
			b := r.Blocks[idx]
			line.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(b.Fill)).Render(string(b.Glyph)))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
