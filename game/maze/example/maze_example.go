package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/game/maze"
)

func main() {
	width := flag.Int("width", 20, "maze width, rounded up to an odd number")
	height := flag.Int("height", 20, "maze height, rounded up to an odd number")
	seed := flag.Int64("seed", time.Now().UnixNano(), "generation seed")
	flag.Parse()

	grid, start, exit, err := maze.Generate(*width, *height, *seed)
	if err != nil {
		fmt.Printf("error while generating maze: %s\n", err)
		os.Exit(1)
	}

	fmt.Print(grid)
	fmt.Printf("seed: %d\n", *seed)
	fmt.Printf("size: %dx%d\n", grid.Width(), grid.Height())
	fmt.Printf("start: (%d,%d) exit: (%d,%d) path length: %d\n",
		start.X, start.Z, exit.X, exit.Z, maze.Distances(grid, start)[exit])
}
