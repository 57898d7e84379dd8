package game

import "quoridor/internal/shared"

// CanReachGoal runs a breadth-first search from pos and reports whether any
// cell on goalRow is reachable without crossing a wall. Pawns do not block.
func CanReachGoal(pos Position, goalRow int, walls []Wall) bool {
	_, ok := ShortestPath(pos, goalRow, walls)
	return ok
}

// ShortestPath returns the number of steps from pos to the nearest cell on
// goalRow, ignoring pawns and jumps.
func ShortestPath(pos Position, goalRow int, walls []Wall) (int, bool) {
	if !shared.InBounds(pos) {
		return 0, false
	}

	var visited CellSet
	visited = visited.Add(pos)
	frontier := []Position{pos}
	for dist := 0; len(frontier) > 0; dist++ {
		var next []Position
		for _, cur := range frontier {
			if cur.Row == goalRow {
				return dist, true
			}
			for _, n := range shared.Neighbors(cur, walls) {
				if visited.Has(n) {
					continue
				}
				visited = visited.Add(n)
				next = append(next, n)
			}
		}
		frontier = next
	}
	return 0, false
}
