package render

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var nodeSymbols = []rune{'O', '@', '#', 'X', '*', '+'}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders a terminal preview of the layout, fitted to the canvas"
}

// Render draws the layout on a character grid. The bounding box of the nodes
// is stretched over the canvas; pinned nodes are drawn as 'P'.
func (r *ASCIIRenderer) Render(l *Layout, options *OutputOptions) ([]byte, error) {
	if options == nil {
		options = NewDefaultOptions("ascii")
	}
	width := max(int(options.Width/10), 40)
	height := max(int(options.Height/20), 20)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0], grid[0][width-1] = '+', '+'
	grid[height-1][0], grid[height-1][width-1] = '+', '+'

	// rows 2..height-4 hold nodes; labels go one row below
	fit := newFitter(l, 2, width-3, 2, height-4)

	cells := make(map[string][2]int, len(l.Nodes))
	for _, n := range l.Nodes {
		x, y := fit.cell(n.Position.X, n.Position.Y)
		cells[n.ID] = [2]int{x, y}
	}

	for _, e := range l.ResolvedEdges() {
		a, b := cells[e.Source], cells[e.Target]
		drawLine(grid, a[0], a[1], b[0], b[1])
	}

	for i, n := range l.Nodes {
		c := cells[n.ID]
		x, y := c[0], c[1]
		symbol := nodeSymbols[i%len(nodeSymbols)]
		if n.Pinned {
			symbol = 'P'
		}
		grid[y][x] = symbol

		if options.ShowLabels {
			label := []rune(labelOf(n))
			for j := 0; j < len(label) && x+j < width-1; j++ {
				grid[y+1][x+j] = label[j]
			}
		}
	}

	title := fmt.Sprintf("notegraph - %s - tick %d", l.Name, l.Tick)
	if l.Name == "" {
		title = fmt.Sprintf("notegraph - tick %d", l.Tick)
	}
	writeRow(grid[1], title)

	if options.Timestamp {
		writeRow(grid[height-2], time.Now().Format("2006-01-02 15:04"))
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}
	return []byte(result.String()), nil
}

// fitter maps layout coordinates onto a rectangle of grid cells.
type fitter struct {
	minX, minY, spanX, spanY float64
	x0, x1, y0, y1           int
}

func newFitter(l *Layout, x0, x1, y0, y1 int) fitter {
	f := fitter{x0: x0, x1: x1, y0: y0, y1: y1}
	if len(l.Nodes) == 0 {
		return f
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range l.Nodes {
		minX = math.Min(minX, n.Position.X)
		maxX = math.Max(maxX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxY = math.Max(maxY, n.Position.Y)
	}
	f.minX, f.minY = minX, minY
	f.spanX, f.spanY = maxX-minX, maxY-minY
	return f
}

func (f fitter) cell(x, y float64) (int, int) {
	return f.axis(x, f.minX, f.spanX, f.x0, f.x1), f.axis(y, f.minY, f.spanY, f.y0, f.y1)
}

func (f fitter) axis(v, lo, span float64, c0, c1 int) int {
	if span <= 0 {
		return (c0 + c1) / 2
	}
	c := c0 + int(math.Round((v-lo)/span*float64(c1-c0)))
	return clamp(c, c0, c1)
}

func writeRow(row []rune, text string) {
	for i, c := range []rune(text) {
		if i+2 >= len(row)-1 {
			break
		}
		row[i+2] = c
	}
}

// Clamp a value between lo and hi
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Draw a line on the ASCII grid using Bresenham's algorithm
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) && grid[y1][x1] == ' ' {
			grid[y1][x1] = '.'
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
