/*
Package maze builds the labyrinth layout for a level.

A level is a Grid of odd dimensions. Carve turns an all-wall grid into a
perfect maze with a randomized depth-first search (recursive backtracker),
and Locate places the exit at the cell farthest from the start by a
breadth-first search. Generate runs both from a seed so that a level can be
reproduced from its seed and size alone.
*/
package maze

import (
	"math/rand"
)

// CellSize is the edge length of one grid cell in world units.
const CellSize = 2.0

// carveDirs are the node-to-node steps tried while carving, in order +x, +z, -x, -z.
var carveDirs = [4]Position{{X: 2, Z: 0}, {X: 0, Z: 2}, {X: -2, Z: 0}, {X: 0, Z: -2}}

// Generate creates a width x height maze from seed and returns the grid
// together with its start and exit positions.
func Generate(width, height int, seed int64) (*Grid, Position, Position, error) {
	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, Position{}, Position{}, err
	}

	rng := rand.New(rand.NewSource(seed))
	start := Carve(grid, rng)
	exit := Locate(grid, start)
	return grid, start, exit, nil
}

// Carve overwrites grid with a perfect maze and returns the carving origin.
// The outermost ring of cells is never carved.
func Carve(grid *Grid, rng *rand.Rand) Position {
	grid.Fill(Wall)

	origin := Position{
		X: rng.Intn(grid.width/2)*2 + 1,
		Z: rng.Intn(grid.height/2)*2 + 1,
	}
	grid.Set(origin.X, origin.Z, Path)

	stack := []Position{origin}
	candidates := make([]Position, 0, len(carveDirs))
	for len(stack) > 0 {
		curr := stack[len(stack)-1]

		candidates = candidates[:0]
		for _, d := range carveDirs {
			next := Position{X: curr.X + d.X, Z: curr.Z + d.Z}
			if grid.interior(next) && grid.At(next.X, next.Z) == Wall {
				candidates = append(candidates, next)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := candidates[rng.Intn(len(candidates))]
		grid.Set((curr.X+next.X)/2, (curr.Z+next.Z)/2, Path)
		grid.Set(next.X, next.Z, Path)
		stack = append(stack, next)
	}

	return origin
}

// interior reports whether p lies strictly inside the border ring.
func (g *Grid) interior(p Position) bool {
	return p.X > 0 && p.X < g.width-1 && p.Z > 0 && p.Z < g.height-1
}

// ToWorld converts a grid position to world x/z coordinates.
func ToWorld(p Position) (x, z float64) {
	return float64(p.X) * CellSize, float64(p.Z) * CellSize
}
