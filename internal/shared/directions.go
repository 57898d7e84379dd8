package shared

// Direction is one of the four orthogonal steps a pawn can take.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the orthogonal steps in generation order.
var Directions = [4]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "?"
	}
}

func (d Direction) Delta() (dr, dc int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	default:
		return 0, 0
	}
}

// Perpendicular returns the two directions at right angles to d.
func (d Direction) Perpendicular() [2]Direction {
	if d == Up || d == Down {
		return [2]Direction{Right, Left}
	}
	return [2]Direction{Down, Up}
}

// Step returns the cell one step from p in direction d. The result may be
// off the board; callers check InBounds.
func Step(p Position, d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func WallInBounds(w Wall) bool {
	return w.Row >= 0 && w.Row < WallSlots && w.Col >= 0 && w.Col < WallSlots
}

// IsBlocked reports whether a pawn cannot cross directly from one cell to
// another. Cells that are not orthogonally adjacent are never directly
// connected, so they always count as blocked.
func IsBlocked(from, to Position, walls []Wall) bool {
	if from.Row == to.Row && abs(from.Col-to.Col) == 1 {
		leftCol := min(from.Col, to.Col)
		for _, w := range walls {
			if w.Dir == Vertical && w.Col == leftCol && (w.Row == from.Row || w.Row == from.Row-1) {
				return true
			}
		}
		return false
	}

	if from.Col == to.Col && abs(from.Row-to.Row) == 1 {
		topRow := min(from.Row, to.Row)
		for _, w := range walls {
			if w.Dir == Horizontal && w.Row == topRow && (w.Col == from.Col || w.Col == from.Col-1) {
				return true
			}
		}
		return false
	}

	return true
}

// Neighbors returns the in-bounds cells reachable from p in one unblocked step.
func Neighbors(p Position, walls []Wall) []Position {
	out := make([]Position, 0, len(Directions))
	for _, d := range Directions {
		n := Step(p, d)
		if !InBounds(n) || IsBlocked(p, n, walls) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
