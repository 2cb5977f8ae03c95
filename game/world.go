package game

import (
	"github.com/beka-birhanu/vinom-labyrinth/game/maze"
	"github.com/beka-birhanu/vinom-labyrinth/game/motion"
)

// Level geometry in world units.
const (
	WallHeight     = 3.0
	slabThickness  = 0.1
	exitMarkerLift = 0.05
)

// FloorTop is the height of the walkable surface. With +Y down the floor
// sits one cell below the wall centres.
const FloorTop = maze.CellSize

// CeilingBottom is the underside of the ceiling slab. It rests on the wall
// tops, so no jump lifts the agent over a wall.
const CeilingBottom = -WallHeight / 2

// BuildWorld turns a finished grid into collision geometry: one box per wall
// cell, a floor and a ceiling slab on the wall tops covering the grid plus a one cell margin,
// and a marker on every exit cell.
func BuildWorld(grid *maze.Grid) motion.World {
	var world motion.World

	for z := 0; z < grid.Height(); z++ {
		for x := 0; x < grid.Width(); x++ {
			cx, cz := maze.ToWorld(maze.Position{X: x, Z: z})
			switch grid.At(x, z) {
			case maze.Wall:
				world.Walls = append(world.Walls,
					motion.BoxAround(motion.Vec3{X: cx, Y: 0, Z: cz}, maze.CellSize, WallHeight, maze.CellSize))
			case maze.Exit:
				world.Exits = append(world.Exits, motion.Marker{
					ID:       len(world.Exits),
					Position: motion.Vec3{X: cx, Y: FloorTop - exitMarkerLift, Z: cz},
				})
			}
		}
	}

	minX, minZ := -1.5*maze.CellSize, -1.5*maze.CellSize
	maxX := (float64(grid.Width()) + 0.5) * maze.CellSize
	maxZ := (float64(grid.Height()) + 0.5) * maze.CellSize

	world.Floors = []motion.Box{{
		Min: motion.Vec3{X: minX, Y: FloorTop, Z: minZ},
		Max: motion.Vec3{X: maxX, Y: FloorTop + slabThickness, Z: maxZ},
	}}
	world.Ceilings = []motion.Box{{
		Min: motion.Vec3{X: minX, Y: CeilingBottom - slabThickness, Z: minZ},
		Max: motion.Vec3{X: maxX, Y: CeilingBottom, Z: maxZ},
	}}
	return world
}

// SpawnPoint returns where an agent stands on cell p: the cell centre at floor height.
func SpawnPoint(p maze.Position) motion.Vec3 {
	x, z := maze.ToWorld(p)
	return motion.Vec3{X: x, Y: FloorTop, Z: z}
}
