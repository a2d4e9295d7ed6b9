package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/plus3/framehost/render"
)

// Cell is one character cell of a Canvas.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Canvas is the texture type of the terminal renderer: a grid of cells.
type Canvas struct {
	Width, Height int
	cells         []Cell
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{Width: width, Height: height, cells: make([]Cell, width*height)}
	c.Fill(tcell.StyleDefault)
	return c
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width && y < c.Height
}

func (c *Canvas) Set(x, y int, r rune, style tcell.Style) {
	if c.inside(x, y) {
		c.cells[y*c.Width+x] = Cell{Rune: r, Style: style}
	}
}

// At returns the cell at x, y, or a zero cell outside the canvas.
func (c *Canvas) At(x, y int) Cell {
	if !c.inside(x, y) {
		return Cell{}
	}
	return c.cells[y*c.Width+x]
}

func (c *Canvas) Fill(style tcell.Style) {
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' ', Style: style}
	}
}

// Text writes s starting at x, y and returns the number of columns used. Wide runes
// take two columns; the second one is padded.
func (c *Canvas) Text(x, y int, s string, style tcell.Style) int {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		c.Set(col, y, r, style)
		if w == 2 {
			c.Set(col+1, y, ' ', style)
		}
		col += w
	}
	return col - x
}

// Blit copies src onto c at the origin, clipped to both canvases.
func (c *Canvas) Blit(src *Canvas) {
	for y := 0; y < min(c.Height, src.Height); y++ {
		for x := 0; x < min(c.Width, src.Width); x++ {
			c.cells[y*c.Width+x] = src.cells[y*src.Width+x]
		}
	}
}

// Present writes the canvas to screen and shows it.
func (c *Canvas) Present(screen tcell.Screen) {
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			cell := c.cells[y*c.Width+x]
			screen.SetContent(x, y, cell.Rune, nil, cell.Style)
		}
	}
	screen.Show()
}

func background(c render.Color) tcell.Style {
	r, g, b, _ := c.RGBA8()
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}
