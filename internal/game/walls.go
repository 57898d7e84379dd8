package game

import "quoridor/internal/shared"

// Overlaps reports whether two walls cannot both be on the board.
//
// Perpendicular walls conflict only when they share an anchor, i.e. they
// cross at the same intersection. Perpendicular walls that touch without a
// shared anchor are allowed; that is the rule variant this engine plays.
// Parallel walls conflict when their two-cell spans touch or overlap on the
// same line.
func Overlaps(a, b Wall) bool {
	if a.Dir != b.Dir {
		return a.Row == b.Row && a.Col == b.Col
	}
	if a.Dir == Horizontal {
		return a.Row == b.Row && abs(a.Col-b.Col) <= 1
	}
	return a.Col == b.Col && abs(a.Row-b.Row) <= 1
}

// CheckWall validates a wall placement against bounds, overlap and
// connectivity, in that order. It returns nil when the wall is legal.
// Connectivity is searched from scratch on every call since one wall can
// change reachability far from where it lands.
func CheckWall(s State, w Wall) error {
	if !shared.WallInBounds(w) || (w.Dir != Horizontal && w.Dir != Vertical) {
		return rejectf(ReasonOutOfBounds, "wall %s outside the board", w)
	}
	for _, existing := range s.Walls {
		if Overlaps(existing, w) {
			return rejectf(ReasonOverlap, "wall %s overlaps %s", w, existing)
		}
	}

	walls := make([]Wall, len(s.Walls), len(s.Walls)+1)
	copy(walls, s.Walls)
	walls = append(walls, w)
	for _, side := range []Side{First, Second} {
		if !CanReachGoal(s.Players.Get(side).Pos, side.GoalRow(), walls) {
			return rejectf(ReasonDisconnects, "wall %s cuts %s off from row %d", w, side, side.GoalRow())
		}
	}
	return nil
}

// IsLegalWall is the boolean form of CheckWall.
func IsLegalWall(s State, w Wall) bool {
	return CheckWall(s, w) == nil
}

// LegalWalls enumerates every wall the side could place right now. It is
// expensive (one pair of searches per candidate) and meant for previews and
// tests, not for hot paths.
func LegalWalls(s State, side Side) []Wall {
	if s.Players.Get(side).Walls <= 0 {
		return nil
	}
	var out []Wall
	for row := 0; row < shared.WallSlots; row++ {
		for col := 0; col < shared.WallSlots; col++ {
			for _, dir := range []Orientation{Horizontal, Vertical} {
				w := Wall{Row: row, Col: col, Dir: dir}
				if IsLegalWall(s, w) {
					out = append(out, w)
				}
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
