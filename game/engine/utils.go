package engine

import "math"

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Coord) int {
	return abs(from.X-to.X) + abs(from.Z-to.Z)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// CountCellKind counts the cells of a specific kind in a grid snapshot
func CountCellKind(grid [][]Cell, kind CellKind) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// FindNearestKind finds the closest cell of the given kind and returns its
// position and distance
func FindNearestKind(grid [][]Cell, from Coord, kind CellKind) (Coord, int, bool) {
	minDistance := -1
	var nearest Coord
	found := false

	for z := 0; z < len(grid); z++ {
		for x := 0; x < len(grid[z]); x++ {
			if grid[z][x].Kind != kind {
				continue
			}
			pos := Coord{X: x, Z: z}
			distance := ManhattanDistance(from, pos)
			if minDistance == -1 || distance < minDistance {
				minDistance = distance
				nearest = pos
				found = true
			}
		}
	}

	return nearest, minDistance, found
}

// StartCorners returns the start cells for n players: opposite corners first,
// then the remaining two
func StartCorners(width, height, n int) []Coord {
	corners := []Coord{
		{X: 0, Z: 0},
		{X: width - 1, Z: height - 1},
		{X: 0, Z: height - 1},
		{X: width - 1, Z: 0},
	}
	if n > len(corners) {
		n = len(corners)
	}
	return corners[:n]
}

// AssessDanger describes how risky the cells a player can reach are, based
// on their health and the landmines in range
func AssessDanger(state *GameState, id PlayerID) string {
	if id < 0 || int(id) >= len(state.Players) {
		return "UNKNOWN: no such player"
	}
	p := state.Players[id]
	if !p.Alive {
		return "ELIMINATED"
	}

	_, mineDistance, found := FindNearestKind(state.Grid, p.Position, Landmine)
	if !found {
		return "SAFE: No landmines left on the board"
	}

	hitsToKill := math.MaxInt
	if dmg := state.LandmineDamage; dmg > 0 {
		hitsToKill = (p.Health + dmg - 1) / dmg
	}

	switch {
	case hitsToKill <= 1 && mineDistance <= state.Turn.RemainingMoves:
		return "CRITICAL: One landmine within reach would eliminate this player"
	case hitsToKill <= 1:
		return "DANGER: One more landmine would eliminate this player"
	case mineDistance <= 1:
		return "CAUTION: Landmine adjacent"
	}
	return "SAFE: Health sufficient"
}
