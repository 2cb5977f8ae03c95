package maze

// stepDirs are the 1-cell BFS steps, in order +x, +z, -x, -z.
var stepDirs = [4]Position{{X: 1, Z: 0}, {X: 0, Z: 1}, {X: -1, Z: 0}, {X: 0, Z: -1}}

// Locate picks the exit as the Path cell with the greatest shortest-path
// distance from start, tags start as Start and the exit as Exit, and
// returns the exit position.
//
// Ties keep the first cell discovered in BFS order, so the result depends
// on the direction order of stepDirs. In a single-node maze the exit is the
// start itself and the cell ends up tagged Exit.
func Locate(grid *Grid, start Position) Position {
	exit := start
	maxDist := 0

	bfs(grid, start, func(p Position, dist int) {
		if dist > maxDist && grid.At(p.X, p.Z) == Path {
			maxDist = dist
			exit = p
		}
	})

	grid.Set(start.X, start.Z, Start)
	grid.Set(exit.X, exit.Z, Exit)
	return exit
}

// Distances returns the BFS distance from `from` to every reachable open cell.
func Distances(grid *Grid, from Position) map[Position]int {
	dist := make(map[Position]int)
	bfs(grid, from, func(p Position, d int) {
		dist[p] = d
	})
	return dist
}

// bfs walks the open cells reachable from start in FIFO order and calls
// visit once per cell with its distance from start.
func bfs(grid *Grid, start Position, visit func(Position, int)) {
	if !grid.Open(start) {
		return
	}

	visited := make([]bool, grid.width*grid.height)
	distance := make([]int, grid.width*grid.height)
	visited[start.Z*grid.width+start.X] = true

	queue := []Position{start}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		d := distance[curr.Z*grid.width+curr.X]
		visit(curr, d)

		for _, step := range stepDirs {
			next := Position{X: curr.X + step.X, Z: curr.Z + step.Z}
			if !grid.Open(next) {
				continue
			}
			i := next.Z*grid.width + next.X
			if visited[i] {
				continue
			}
			visited[i] = true
			distance[i] = d + 1
			queue = append(queue, next)
		}
	}
}
