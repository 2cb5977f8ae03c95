package maze

import (
	"errors"
	"fmt"
	"strings"
)

// CellState is the content of a single grid cell.
type CellState uint8

// Cell states. Wall is the zero value so a fresh grid is solid.
const (
	Wall CellState = iota
	Path
	Start
	Exit
)

const minDimension = 3

var (
	ErrInvalidDimensions = errors.New("maze dimensions must be positive")
	ErrOutOfBounds       = errors.New("grid position out of bounds")
)

// String returns the name of the cell state.
func (s CellState) String() string {
	switch s {
	case Wall:
		return "wall"
	case Path:
		return "path"
	case Start:
		return "start"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("cell(%d)", uint8(s))
	}
}

// Glyph returns the ASCII character used by Grid.String for the state.
func (s CellState) Glyph() byte {
	switch s {
	case Path:
		return ' '
	case Start:
		return 'S'
	case Exit:
		return 'E'
	default:
		return '#'
	}
}

// Position is a cell coordinate on the grid.
type Position struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Grid is a fixed-size, row-major array of cell states.
// Both dimensions are odd so that cells at odd coordinates are maze nodes
// and cells at even coordinates are the walls between them.
type Grid struct {
	width  int
	height int
	cells  []CellState
}

// NewGrid returns an all-wall grid. Each dimension is rounded up to the next
// odd number with a minimum of 3.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	w, h := normalize(width), normalize(height)
	return &Grid{
		width:  w,
		height: h,
		cells:  make([]CellState, w*h),
	}, nil
}

// normalize rounds n up to an odd number no smaller than minDimension.
func normalize(n int) int {
	if n < minDimension {
		return minDimension
	}
	if n%2 == 0 {
		return n + 1
	}
	return n
}

// Width returns the number of columns (x axis).
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows (z axis).
func (g *Grid) Height() int {
	return g.height
}

// InBound reports whether (x, z) addresses a cell of the grid.
func (g *Grid) InBound(x, z int) bool {
	return x >= 0 && x < g.width && z >= 0 && z < g.height
}

// At returns the state of the cell at (x, z).
// It panics when the position is outside the grid.
func (g *Grid) At(x, z int) CellState {
	return g.cells[g.index(x, z)]
}

// Set overwrites the state of the cell at (x, z).
// It panics when the position is outside the grid.
func (g *Grid) Set(x, z int, s CellState) {
	g.cells[g.index(x, z)] = s
}

func (g *Grid) index(x, z int) int {
	if !g.InBound(x, z) {
		panic(fmt.Errorf("%w: (%d, %d) on %dx%d grid", ErrOutOfBounds, x, z, g.width, g.height))
	}
	return z*g.width + x
}

// Fill sets every cell to s.
func (g *Grid) Fill(s CellState) {
	for i := range g.cells {
		g.cells[i] = s
	}
}

// Count returns how many cells hold the given state.
func (g *Grid) Count(s CellState) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Rows returns the grid as ASCII rows, one string per z.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	line := make([]byte, g.width)
	for z := 0; z < g.height; z++ {
		for x := 0; x < g.width; x++ {
			line[x] = g.At(x, z).Glyph()
		}
		rows[z] = string(line)
	}
	return rows
}

// String provides a textual representation of the grid.
func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n") + "\n"
}

// Open reports whether the cell at p can be walked on.
func (g *Grid) Open(p Position) bool {
	return g.InBound(p.X, p.Z) && g.At(p.X, p.Z) != Wall
}
